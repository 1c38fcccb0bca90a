// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/MKhiriev/go-psafe-cache/internal/config"
	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/MKhiriev/go-psafe-cache/migrations"
	"github.com/sethvargo/go-retry"
)

// ErrorClassificator decides whether a failed database operation may be
// retried.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

// DBTX is the subset of *sql.DB and *sql.Tx used by the repositories, so the
// same query code runs inside and outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB is the cache store connection shared by all repositories.
type DB struct {
	*sql.DB
	driver             string
	placeholder        sq.PlaceholderFormat
	errorClassificator ErrorClassificator
	retryBase          time.Duration
	retryAttempts      uint64
	logger             *logger.Logger
}

// NewConnect opens the database selected by cfg.Driver.
func NewConnect(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return NewConnectPostgres(ctx, cfg, log)
	case config.DriverSQLite:
		return NewConnectSQLite(ctx, cfg, log)
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// Driver returns the name of the dialect the connection speaks.
func (db *DB) Driver() string {
	return db.driver
}

// Migrate brings the schema up to date.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.driver)
}

func (db *DB) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(db.placeholder)
}

// WithTx runs fn inside one transaction. The transaction is committed when
// fn returns nil and rolled back otherwise. Failures the classifier marks as
// retryable (serialization, deadlock, lost connection, busy database) rerun
// the whole unit with exponential backoff.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	backoff := retry.WithMaxRetries(db.retryAttempts, retry.NewExponential(db.retryBase))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := db.runTx(ctx, fn)
		if err != nil && db.errorClassificator != nil && db.errorClassificator.Classify(err) == Retryable {
			logger.FromContext(ctx).Warn().Err(err).Str("func", "DB.WithTx").Msg("retrying transaction")
			return retry.RetryableError(err)
		}
		return err
	})
}

func (db *DB) runTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	log := logger.FromContext(ctx)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "DB.runTx").Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Err(err).Str("func", "DB.runTx").Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}
	return nil
}

func newDB(conn *sql.DB, driver string, log *logger.Logger) *DB {
	db := &DB{
		DB:            conn,
		driver:        driver,
		placeholder:   sq.Question,
		retryBase:     20 * time.Millisecond,
		retryAttempts: 3,
		logger:        log,
	}
	switch driver {
	case config.DriverPostgres:
		db.placeholder = sq.Dollar
		db.errorClassificator = NewPostgresErrorClassifier()
	case config.DriverSQLite:
		db.errorClassificator = NewSQLiteErrorClassifier()
	}
	return db
}
