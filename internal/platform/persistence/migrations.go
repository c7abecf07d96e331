package persistence

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/register-pos/internal/config"
)

// ErrDirtySchema means an earlier migration stopped half way and needs a manual fix
var ErrDirtySchema = errors.New("database schema is dirty")

// RunMigrations brings the transactions, register_balance and transaction_outbox
// tables up to the latest version in cfg.MigrationsPath
func RunMigrations(logger *slog.Logger, cfg *config.PostgresConfig) error {
	if cfg.MigrationsPath == "" {
		return errors.New("migrations path cannot be empty")
	}
	if cfg.URL == "" {
		return errors.New("database URL cannot be empty")
	}

	m, err := migrate.New(migrationSourceURL(cfg.MigrationsPath), cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			logger.Warn("Failed to release migration resources", "source_error", sourceErr, "database_error", dbErr)
		}
	}()

	if _, dirty, err := m.Version(); err == nil && dirty {
		return ErrDirtySchema
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("Database schema is up to date")
	case err != nil:
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	if version, _, err := m.Version(); err == nil {
		logger.Info("Database schema version", "version", version)
	}
	return nil
}

// migrationSourceURL accepts a plain directory or a file:// URL
func migrationSourceURL(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	return "file://" + path
}
