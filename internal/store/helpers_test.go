package store

import (
	"context"
	"database/sql/driver"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/go-psafe-cache/internal/config"
	"github.com/MKhiriev/go-psafe-cache/internal/logger"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

// newMockDB returns a postgres-flavoured DB over sqlmock.
func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db := newDB(conn, config.DriverPostgres, logger.Nop())
	db.retryBase = time.Millisecond
	return db, mock
}

// newSQLiteDB returns a migrated database in a temp dir.
func newSQLiteDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewConnectSQLite(testContext(), config.DB{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "cache.db"),
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())
	return db
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

func sqlmockResult() driver.Result {
	return sqlmock.NewResult(0, 1)
}
