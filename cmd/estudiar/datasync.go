package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/Tlatoani315/estudiar-ipn/internal/config"
	"github.com/Tlatoani315/estudiar-ipn/internal/database"
	"github.com/Tlatoani315/estudiar-ipn/internal/datasync"
	"github.com/Tlatoani315/estudiar-ipn/internal/study"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDB(cmd.Context(), func(ctx context.Context, cfg *config.Config, db *sqlx.DB) error {
				applied, err := database.NewMigrator(db, cfg.Database.Driver).Up(ctx)
				for _, version := range applied {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Applied %s\n", version)
				}
				if err != nil {
					return fmt.Errorf("migrator.Up() > %w", err)
				}
				if len(applied) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Database schema is up to date")
				}
				return nil
			})
		},
	}
}

func newExportCommand() *cobra.Command {
	var outputDir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every study record to YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, store *study.DBRepository) error {
				dir := outputDir
				if dir == "" {
					dir = cfg.Outputs.ExportDirectory
				}
				path, err := datasync.NewExporter(store, dir).Export(ctx)
				if err != nil {
					return fmt.Errorf("exporter.Export() > %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&outputDir, "dir", "", "output directory (default outputs.export_directory)")
	return cmd
}

func newImportCommand() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import study records from an exported YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStore(cmd.Context(), func(ctx context.Context, _ *config.Config, store *study.DBRepository) error {
				out := cmd.OutOrStdout()
				result, err := datasync.NewImporter(store, out).Import(ctx, args[0], datasync.ImportOptions{DryRun: dryRun})
				if err != nil {
					return fmt.Errorf("importer.Import() > %w", err)
				}
				prefix := ""
				if dryRun {
					prefix = "[dry run] "
				}
				_, _ = fmt.Fprintf(out, "%snew: %d, skipped: %d, invalid: %d\n", prefix, result.New, result.Skipped, result.Invalid)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be imported without writing")
	return cmd
}
