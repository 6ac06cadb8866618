package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tlatoani315/estudiar-ipn/internal/cli"
	"github.com/Tlatoani315/estudiar-ipn/internal/config"
	"github.com/Tlatoani315/estudiar-ipn/internal/progress"
	"github.com/Tlatoani315/estudiar-ipn/internal/report"
	"github.com/Tlatoani315/estudiar-ipn/internal/scheduler"
	"github.com/Tlatoani315/estudiar-ipn/internal/statistics"
	"github.com/Tlatoani315/estudiar-ipn/internal/study"
)

func newMetricsCommand() *cobra.Command {
	metricsCmd := &cobra.Command{
		Use:   "metrics",
		Short: "Progress metrics",
	}
	metricsCmd.AddCommand(
		&cobra.Command{
			Use:   "global",
			Short: "Pending, in review and mastered counts across all subjects",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWithStore(cmd.Context(), func(ctx context.Context, _ *config.Config, store *study.DBRepository) error {
					global, err := progress.NewAggregator(store).GlobalMetrics(ctx)
					if err != nil {
						return fmt.Errorf("aggregator.GlobalMetrics() > %w", err)
					}
					cli.NewPrinter(cmd.OutOrStdout()).PrintGlobal(global)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "subjects",
			Short: "Seen subtopics and topics per subject",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWithStore(cmd.Context(), func(ctx context.Context, _ *config.Config, store *study.DBRepository) error {
					metrics, err := progress.NewAggregator(store).PerSubjectMetrics(ctx)
					if err != nil {
						return fmt.Errorf("aggregator.PerSubjectMetrics() > %w", err)
					}
					cli.NewPrinter(cmd.OutOrStdout()).PrintSubjects(metrics)
					return nil
				})
			},
		},
		newMetricsHistoryCommand(),
	)
	return metricsCmd
}

func newMetricsHistoryCommand() *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show new items and reviews studied per month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if month != 0 && year == 0 {
				return fmt.Errorf("--month requires --year to be specified")
			}
			if month < 0 || month > 12 {
				return fmt.Errorf("--month must be between 1 and 12")
			}

			return runWithStore(cmd.Context(), func(ctx context.Context, _ *config.Config, store *study.DBRepository) error {
				logs, err := store.Select(ctx, study.KindIs(study.KindStudied))
				if err != nil {
					return fmt.Errorf("store.Select(studied) > %w", err)
				}
				cli.NewPrinter(cmd.OutOrStdout()).PrintStatistics(statistics.Calculate(logs, year, month))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Filter by year (e.g., 2026)")
	cmd.Flags().IntVar(&month, "month", 0, "Filter by month (1-12), requires --year")

	return cmd
}

func newOutlineCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "outline <subject>",
		Short: "Show the topics of a subject with the state of each subtopic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject := strings.Join(args, " ")
			return runWithStore(cmd.Context(), func(ctx context.Context, _ *config.Config, store *study.DBRepository) error {
				outline, err := progress.NewAggregator(store).TopicOutline(ctx, subject)
				if err != nil {
					return fmt.Errorf("aggregator.TopicOutline() > %w", err)
				}
				cli.NewPrinter(cmd.OutOrStdout()).PrintOutline(subject, outline)
				return nil
			})
		},
	}
}

func newTimelineCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "timeline",
		Short: "Show past studies and scheduled reviews by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStore(cmd.Context(), func(ctx context.Context, _ *config.Config, store *study.DBRepository) error {
				timeline, err := progress.NewAggregator(store).FullTimeline(ctx)
				if err != nil {
					return fmt.Errorf("aggregator.FullTimeline() > %w", err)
				}
				cli.NewPrinter(cmd.OutOrStdout()).PrintTimeline(timeline)
				return nil
			})
		},
	}
}

func newReportCommand() *cobra.Command {
	var withPDF bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a Markdown progress report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, store *study.DBRepository) error {
				generator := report.NewGenerator(progress.NewAggregator(store), cfg.Outputs.ReportDirectory)
				paths, err := generator.Generate(ctx, scheduler.NewEngine(store).Today(), withPDF)
				for _, path := range paths {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
				}
				if err != nil {
					return fmt.Errorf("generator.Generate() > %w", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&withPDF, "pdf", false, "also render the report as PDF")
	return cmd
}
