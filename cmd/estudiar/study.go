package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tlatoani315/estudiar-ipn/internal/cli"
	"github.com/Tlatoani315/estudiar-ipn/internal/config"
	"github.com/Tlatoani315/estudiar-ipn/internal/scheduler"
	"github.com/Tlatoani315/estudiar-ipn/internal/study"
)

func newAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add [file]",
		Short: "Add Subject/Topic/Subtopic lines as pending items",
		Long: "Add study items from a file or, without a file, from stdin.\n" +
			"Each line is Subject/Topic/Subtopic; extra slashes belong to the subtopic.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("os.Open(%s) > %w", args[0], err)
				}
				defer func() { _ = f.Close() }()
				input = f
			}

			items, malformed, err := cli.ParseItemLines(input)
			if err != nil {
				return err
			}
			return runWithStore(cmd.Context(), func(ctx context.Context, _ *config.Config, store *study.DBRepository) error {
				result, err := scheduler.NewEngine(store).AddItems(ctx, items)
				if err != nil {
					return fmt.Errorf("engine.AddItems() > %w", err)
				}
				cli.NewPrinter(cmd.OutOrStdout()).PrintAddResult(result, malformed)
				return nil
			})
		},
	}
}

func newStudyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "study <subtopic>[, <subtopic>...]",
		Short: "Record that subtopics were studied today",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := cli.SplitNames(args)
			if len(names) == 0 {
				return fmt.Errorf("no subtopic given")
			}
			return runWithStore(cmd.Context(), func(ctx context.Context, _ *config.Config, store *study.DBRepository) error {
				outcomes := scheduler.NewEngine(store).StudyBatch(ctx, names)
				printer := cli.NewPrinter(cmd.OutOrStdout())
				printer.PrintOutcomes(outcomes)
				printer.PrintStudyFollowUp(scheduler.Succeeded(outcomes))
				return nil
			})
		},
	}
}

func newMasteredCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mastered <subtopic>[, <subtopic>...]",
		Short: "Retire subtopics as mastered",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := cli.SplitNames(args)
			if len(names) == 0 {
				return fmt.Errorf("no subtopic given")
			}
			return runWithStore(cmd.Context(), func(ctx context.Context, _ *config.Config, store *study.DBRepository) error {
				cli.NewPrinter(cmd.OutOrStdout()).PrintOutcomes(scheduler.NewEngine(store).MasterBatch(ctx, names))
				return nil
			})
		},
	}
}

func newSuggestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <subject> <count>",
		Short: "Pick random pending items of a subject",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, count, err := cli.ParseSuggestArgs(args)
			if err != nil {
				return err
			}
			return runWithStore(cmd.Context(), func(ctx context.Context, _ *config.Config, store *study.DBRepository) error {
				suggestions, err := scheduler.NewEngine(store).SuggestNewItems(ctx, subject, count)
				if err != nil {
					return fmt.Errorf("engine.SuggestNewItems() > %w", err)
				}
				cli.NewPrinter(cmd.OutOrStdout()).PrintSuggestions(subject, suggestions)
				return nil
			})
		},
	}
}

func newReviewCommand() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "review",
		Short: "List the reviews due today or on a given date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStore(cmd.Context(), func(ctx context.Context, _ *config.Config, store *study.DBRepository) error {
				engine := scheduler.NewEngine(store)
				day, err := resolveDate(engine, date)
				if err != nil {
					return err
				}
				due, err := engine.DueReviews(ctx, day)
				if err != nil {
					return fmt.Errorf("engine.DueReviews() > %w", err)
				}
				cli.NewPrinter(cmd.OutOrStdout()).PrintDueReviews(day, due)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date to check, YYYY-MM-DD (default today)")
	return cmd
}

func newRemoveCommand() *cobra.Command {
	target := cli.RemoveSubtopic
	cmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Delete every record of a subtopic or a subject",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args, " "))
			return runWithStore(cmd.Context(), func(ctx context.Context, _ *config.Config, store *study.DBRepository) error {
				engine := scheduler.NewEngine(store)
				var err error
				switch target {
				case cli.RemoveSubject:
					err = engine.RemoveSubject(ctx, name)
				default:
					err = engine.RemoveSubtopic(ctx, name)
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %q\n", target.String(), name)
				return nil
			})
		},
	}
	cmd.Flags().Var(&target, "by", `what the name refers to: "subtopic" or "subject"`)
	return cmd
}

// resolveDate validates a YYYY-MM-DD flag value, defaulting to the engine's today.
func resolveDate(engine *scheduler.Engine, date string) (string, error) {
	if date == "" {
		return engine.Today(), nil
	}
	if _, err := study.AddDays(date, 0); err != nil {
		return "", fmt.Errorf("invalid --date %q: %w", date, err)
	}
	return date, nil
}
