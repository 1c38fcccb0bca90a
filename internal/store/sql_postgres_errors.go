package store

import (
	"github.com/jackc/pgerrcode"
)

// ErrorClassification tells WithTx whether a failed transaction may be rerun.
type ErrorClassification int

const (
	// NonRetryable is the default: constraint violations, bad SQL and
	// anything unrecognised.
	NonRetryable ErrorClassification = iota
	// Retryable marks transient failures such as a lost connection or a
	// transaction rolled back by the server.
	Retryable
)

// retryablePgCodes are the PostgreSQL codes worth rerunning a cache write for.
// Class 08 is connection loss, class 40 is rollback by serialization or
// deadlock, 57P03 is a server still starting up.
var retryablePgCodes = map[string]struct{}{
	pgerrcode.ConnectionException:    {},
	pgerrcode.ConnectionDoesNotExist: {},
	pgerrcode.ConnectionFailure:      {},
	pgerrcode.TransactionRollback:    {},
	pgerrcode.SerializationFailure:   {},
	pgerrcode.DeadlockDetected:       {},
	pgerrcode.CannotConnectNow:       {},
}

// PostgresErrorClassifier implements [ErrorClassificator] over pgconn errors.
type PostgresErrorClassifier struct{}

func NewPostgresErrorClassifier() *PostgresErrorClassifier {
	return &PostgresErrorClassifier{}
}

// Classify reports Retryable only for the codes in retryablePgCodes.
// A nil or non-postgres error is NonRetryable.
func (c *PostgresErrorClassifier) Classify(err error) ErrorClassification {
	if _, ok := retryablePgCodes[postgresError(err)]; ok {
		return Retryable
	}
	return NonRetryable
}
