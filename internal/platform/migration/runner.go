// Copyright (c) 2026 Taskora. All rights reserved.

// Package migration applies the SQL schema migrations during startup,
// before the server accepts traffic. The applied-version history lives in
// the database itself, so repeated startups are no-ops.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers the "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// file source reads .sql files from disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunUp applies every pending up migration from migrationsPath.
//
// A dirty history (a previous run died mid-migration) is a fatal startup
// error requiring manual repair: serving traffic on a half-applied schema
// would corrupt the account and task tables the migrations guard.
func RunUp(dsn, migrationsPath string, logger *slog.Logger) error {
	migrator, err := migrate.New("file://"+migrationsPath, pgxURL(dsn))
	if err != nil {
		return fmt.Errorf("migration: failed to initialize: %w", err)
	}
	defer closeMigrator(migrator, logger)

	migrator.Log = &slogBridge{logger: logger}

	version, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: failed to read schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("migration: schema history is dirty at version %d (manual repair required)", version)
	}

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("schema_up_to_date", slog.Int("version", int(version)))
			return nil
		}
		return fmt.Errorf("migration: up failed: %w", err)
	}

	applied, _, _ := migrator.Version()
	logger.Info("schema_migrated",
		slog.Int("from_version", int(version)),
		slog.Int("to_version", int(applied)),
	)

	return nil
}

// pgxURL rewrites a postgres:// or postgresql:// DSN to the pgx5:// scheme
// the golang-migrate pgx/v5 driver expects.
func pgxURL(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, scheme) {
			return "pgx5://" + strings.TrimPrefix(dsn, scheme)
		}
	}
	return dsn
}

// closeMigrator releases both migrator halves, logging rather than failing:
// by this point the schema work has already succeeded or failed on its own.
func closeMigrator(migrator *migrate.Migrate, logger *slog.Logger) {
	sourceErr, databaseErr := migrator.Close()
	if sourceErr != nil {
		logger.Error("migration_source_close_failed", slog.Any("error", sourceErr))
	}
	if databaseErr != nil {
		logger.Error("migration_database_close_failed", slog.Any("error", databaseErr))
	}
}

// slogBridge adapts golang-migrate's logger interface to slog.
type slogBridge struct {
	logger *slog.Logger
}

// Printf implements migrate.Logger.
func (bridge *slogBridge) Printf(format string, args ...any) {
	bridge.logger.Debug(fmt.Sprintf(format, args...))
}

// Verbose implements migrate.Logger.
func (bridge *slogBridge) Verbose() bool {
	return false
}
