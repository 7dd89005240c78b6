package dbx

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// SQLSTATE codes Postgres reports for a unique index clash and for a value
// that does not fit its VARCHAR column.
const (
	pgUniqueViolation = "23505"
	pgValueTooLong    = "22001"
)

var ErrUnsupportedDriver = errors.New("unsupported database driver")

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Open connects to the database behind dsn and verifies the connection.
//
// SQLite DSNs get foreign key enforcement and a busy timeout, and the pool is
// limited to a single connection because SQLite serializes writers anyway.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres:
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func sqliteDSN(dsn string) string {
	params := []string{"_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)"}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// IsUniqueViolation reports whether err was caused by a unique constraint on
// either supported driver.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	return false
}

// IsValueTooLong reports whether Postgres rejected a value for exceeding its
// column length. SQLite does not enforce VARCHAR limits.
func IsValueTooLong(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgValueTooLong
}
