package repository

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	mysqlmigrate "github.com/golang-migrate/migrate/v4/database/mysql"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// MigrateUp applies all pending migrations for the pool's dialect.
// The migrator takes ownership of db and closes it when done.
func MigrateUp(db *DB) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// MigrateDown rolls back the given number of migrations.
func MigrateDown(db *DB, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("migrate down: steps must be > 0")
	}

	m, err := newMigrator(db)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// migrationsDir is the embedded directory holding the dialect's migration files.
func migrationsDir(d Dialect) string {
	return "migrations/" + d.String()
}

func newMigrator(db *DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, migrationsDir(db.Dialect))
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}

	var driver database.Driver
	switch db.Dialect {
	case Postgres:
		driver, err = pgxmigrate.WithInstance(db.DB, &pgxmigrate.Config{})
	default:
		driver, err = mysqlmigrate.WithInstance(db.DB, &mysqlmigrate.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("init %s migration driver: %w", db.Dialect, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, db.Dialect.String(), driver)
	if err != nil {
		return nil, fmt.Errorf("init migrator: %w", err)
	}
	return m, nil
}
