package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tlatoani315/estudiar-ipn/internal/config"
	"github.com/Tlatoani315/estudiar-ipn/internal/notify"
	"github.com/Tlatoani315/estudiar-ipn/internal/scheduler"
	"github.com/Tlatoani315/estudiar-ipn/internal/study"
)

func newRemindCommand() *cobra.Command {
	var (
		date       string
		sendAlways bool
	)
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send the due reviews to Telegram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStore(cmd.Context(), func(ctx context.Context, cfg *config.Config, store *study.DBRepository) error {
				notifier, err := notify.NewTelegramNotifier(cfg.Telegram)
				if err != nil {
					return err
				}
				return remind(ctx, cmd.OutOrStdout(), scheduler.NewEngine(store), notifier, date, sendAlways)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date to check, YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&sendAlways, "always", false, "send a message even when nothing is due")
	return cmd
}

func remind(ctx context.Context, out io.Writer, engine *scheduler.Engine, notifier notify.Notifier, date string, sendAlways bool) error {
	day, err := resolveDate(engine, date)
	if err != nil {
		return err
	}
	due, err := engine.DueReviews(ctx, day)
	if err != nil {
		return fmt.Errorf("engine.DueReviews() > %w", err)
	}
	if len(due) == 0 && !sendAlways {
		_, _ = fmt.Fprintf(out, "No reviews due on %s; nothing sent\n", day)
		return nil
	}

	if err := notifier.Send(ctx, notify.FormatDueReviews(day, due)); err != nil {
		return fmt.Errorf("notifier.Send() > %w", err)
	}
	_, _ = fmt.Fprintf(out, "Sent %d due reviews\n", len(due))
	return nil
}
