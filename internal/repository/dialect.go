package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// Dialect selects placeholder syntax and error classification for a SQL backend.
// Queries are written with '?' placeholders and rebound per dialect.
type Dialect int

const (
	MySQL Dialect = iota
	Postgres
)

const (
	mysqlDuplicateEntry = 1062
	pgUniqueViolation   = "23505"
)

// ParseDialect maps a configured driver name to a Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "mysql", "":
		return MySQL, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	default:
		return 0, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "mysql"
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "mysql"
}

// Rebind rewrites '?' placeholders to $1..$n for Postgres.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// IsUniqueViolation reports whether err is a duplicate-key error from either driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	return false
}
