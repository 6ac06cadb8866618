package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"

	"github.com/jmoiron/sqlx"

	"github.com/Tlatoani315/estudiar-ipn/schemas"
)

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (version VARCHAR(255) NOT NULL PRIMARY KEY)`

// Migrator applies the embedded SQL files of one driver in lexical order.
// Applied versions are tracked in schema_migrations.
type Migrator struct {
	db     *sqlx.DB
	driver string
	files  fs.FS
}

// NewMigrator creates a Migrator reading from the embedded schemas.
func NewMigrator(db *sqlx.DB, driver string) *Migrator {
	return &Migrator{db: db, driver: driver, files: schemas.Migrations}
}

// Pending lists migration versions that have not been applied yet.
func (m *Migrator) Pending(ctx context.Context) ([]string, error) {
	versions, err := m.versions()
	if err != nil {
		return nil, err
	}
	if _, err := m.db.ExecContext(ctx, createMigrationsTable); err != nil {
		return nil, fmt.Errorf("db.ExecContext(schema_migrations) > %w", err)
	}

	var applied []string
	if err := m.db.SelectContext(ctx, &applied, "SELECT version FROM schema_migrations"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(schema_migrations) > %w", err)
	}

	var pending []string
	for _, v := range versions {
		if !slices.Contains(applied, v) {
			pending = append(pending, v)
		}
	}
	return pending, nil
}

// Up applies every pending migration, each in its own transaction, and returns the applied versions.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	pending, err := m.Pending(ctx)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, version := range pending {
		if err := m.apply(ctx, version); err != nil {
			return applied, err
		}
		slog.Default().Info("applied migration", "driver", m.driver, "version", version)
		applied = append(applied, version)
	}
	return applied, nil
}

func (m *Migrator) apply(ctx context.Context, version string) error {
	content, err := fs.ReadFile(m.files, path.Join(m.dir(), version))
	if err != nil {
		return fmt.Errorf("fs.ReadFile(%s) > %w", version, err)
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTxx() > %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("tx.ExecContext(%s) > %w", version, err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind("INSERT INTO schema_migrations (version) VALUES (?)"), version); err != nil {
		return fmt.Errorf("tx.ExecContext(schema_migrations) > %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit() > %w", err)
	}
	return nil
}

func (m *Migrator) dir() string {
	return path.Join("migrations", m.driver)
}

func (m *Migrator) versions() ([]string, error) {
	entries, err := fs.ReadDir(m.files, m.dir())
	if err != nil {
		return nil, fmt.Errorf("unsupported database driver %q: %w", m.driver, err)
	}

	var versions []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".sql" {
			versions = append(versions, e.Name())
		}
	}
	slices.Sort(versions)
	return versions, nil
}
