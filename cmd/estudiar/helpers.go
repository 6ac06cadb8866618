package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/Tlatoani315/estudiar-ipn/internal/bootstrap"
	"github.com/Tlatoani315/estudiar-ipn/internal/config"
	"github.com/Tlatoani315/estudiar-ipn/internal/database"
	"github.com/Tlatoani315/estudiar-ipn/internal/study"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// runWithDB opens the configured database for the duration of run and closes it afterwards.
func runWithDB(ctx context.Context, run func(ctx context.Context, cfg *config.Config, db *sqlx.DB) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app := bootstrap.New()
	return app.Run(ctx, func(ctx context.Context) error {
		db, err := database.Open(cfg.Database)
		if err != nil {
			return fmt.Errorf("database.Open() > %w", err)
		}
		app.AddShutdownHook(func(context.Context) error {
			return db.Close()
		})
		if err := database.Ping(ctx, db, cfg.Database.ConnectAttempts); err != nil {
			return fmt.Errorf("database.Ping() > %w", err)
		}
		return run(ctx, cfg, db)
	})
}

// runWithStore is runWithDB for commands that only need the record store.
// A SQLite file is migrated on first use; MySQL requires the migrate command.
func runWithStore(ctx context.Context, run func(ctx context.Context, cfg *config.Config, store *study.DBRepository) error) error {
	return runWithDB(ctx, func(ctx context.Context, cfg *config.Config, db *sqlx.DB) error {
		if cfg.Database.Driver == database.DriverSQLite {
			applied, err := database.NewMigrator(db, cfg.Database.Driver).Up(ctx)
			if err != nil {
				return fmt.Errorf("migrator.Up() > %w", err)
			}
			if len(applied) > 0 {
				slog.Default().Debug("migrated sqlite database", "path", cfg.Database.Path, "versions", applied)
			}
		}
		return run(ctx, cfg, study.NewDBRepository(db))
	})
}
