package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes config.toml from the embedded template when missing, then migrates the configured database.
//
// Non-SQL storage drivers need no migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("using existing config file", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		config, err := shared.ResolveConfig(configPath)
		if err != nil {
			return err
		}
		r.config = config
		r.writePlain("✓ Config written to %s\n", configPath)
	}

	storage := r.config.Storage
	driver := strings.ToLower(storage.Driver)
	if driver == "" {
		driver = shared.DriverSQLite
	}
	if !shared.IsSQLDriver(driver) {
		r.logger.Info("storage driver needs no migrations", "driver", driver)
		r.writePlain("✓ Storage driver %q is ready\n", driver)
		return nil
	}

	r.logger.Info("initializing database", "driver", driver, "dsn", redactDSN(storage.DSN))

	db, err := shared.NewDatabase(driver, storage.DSN)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, storage.MaxOpenConns, storage.MaxIdleConns)

	migrator := shared.NewMigrator(db, driver)
	r.logger.Info("running database migrations")
	if err := migrator.Up(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := migrator.CurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", redactDSN(storage.DSN))
	r.writePlain("✓ Database ready (schema version %d)\n", version)
	return nil
}

// redactDSN hides credentials carried in libsql and postgres DSNs.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return dsn
	}
	if u.RawQuery != "" {
		u.RawQuery = "redacted"
	}
	return u.Redacted()
}
