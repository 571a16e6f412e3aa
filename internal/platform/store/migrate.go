package store

import (
	"database/sql"
	"errors"

	"ghcensus/internal/platform/logger"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file" // file:// source
	_ "github.com/jackc/pgx/v5/stdlib"                   // database/sql driver "pgx"
)

// Migrate applies all pending migrations from dir against the database at url.
// No-op when the schema is already current
func Migrate(url, dir string, log logger.Logger) error {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	drv, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "pgx5", drv)
	if err != nil {
		return err
	}
	m.Log = migrateLogger{log: log}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// migrateLogger adapts the project logger to migrate.Logger
type migrateLogger struct{ log logger.Logger }

func (l migrateLogger) Printf(format string, v ...any) {
	l.log.Info().Msgf("migrate: "+format, v...)
}

func (l migrateLogger) Verbose() bool { return false }
