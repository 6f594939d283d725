package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
)

// DB is a connection pool paired with the SQL dialect its queries are written for.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewDB opens a connection pool for the named driver ("mysql" or "postgres").
// A failed ping is logged, not returned, so the process can start before the database.
func NewDB(ctx context.Context, driver, dsn string) (*DB, error) {
	dialect, err := ParseDialect(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", dialect, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Warn().Err(err).Str("driver", dialect.String()).Msg("database ping failed, continuing")
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

// withTx runs fn inside a transaction, committing on success and rolling back on any error.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

// insert runs an INSERT and returns the generated id column.
func (db *DB) insert(ctx context.Context, q querier, query string, args ...any) (int64, error) {
	if db.Dialect == Postgres {
		var id int64
		err := q.QueryRowContext(ctx, db.Dialect.Rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}

	result, err := q.ExecContext(ctx, db.Dialect.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}
