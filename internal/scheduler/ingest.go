package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Tlatoani315/estudiar-ipn/internal/study"
)

// Item is a subtopic to be added to the plan as pending.
type Item struct {
	Subject  string `validate:"required"`
	Topic    string `validate:"required"`
	Subtopic string `validate:"required"`
}

// AddResult counts the outcome of AddItems.
type AddResult struct {
	Added   int
	Skipped int
	Invalid int
}

var itemValidator = validator.New()

// AddItems inserts each new item as pending. An item is skipped when its subtopic
// already exists in any state under any subject, matched the way lookups match it.
func (e *Engine) AddItems(ctx context.Context, items []Item) (AddResult, error) {
	var result AddResult
	for _, item := range items {
		item = Item{
			Subject:  strings.TrimSpace(item.Subject),
			Topic:    strings.TrimSpace(item.Topic),
			Subtopic: strings.TrimSpace(item.Subtopic),
		}
		if err := itemValidator.Struct(item); err != nil {
			slog.Default().Debug("invalid item", "item", item, "error", err)
			result.Invalid++
			continue
		}

		added, err := e.addItem(ctx, item)
		if err != nil {
			return result, err
		}
		if added {
			result.Added++
		} else {
			result.Skipped++
		}
	}
	return result, nil
}

func (e *Engine) addItem(ctx context.Context, item Item) (bool, error) {
	var added bool
	err := e.transact(ctx, func(ctx context.Context, store study.RecordStore) error {
		existing, err := store.Select(ctx, study.IEq(study.FieldSubtopic, item.Subtopic))
		if err != nil {
			return fmt.Errorf("store.Select(%s) > %w", item.Subtopic, err)
		}
		if len(existing) > 0 {
			if first := existing[0]; !strings.EqualFold(first.Subject, item.Subject) || !strings.EqualFold(first.Topic, item.Topic) {
				slog.Default().Warn("subtopic already exists elsewhere, skipping",
					"subtopic", item.Subtopic,
					"subject", item.Subject,
					"existingSubject", first.Subject,
					"existingTopic", first.Topic)
			}
			return nil
		}
		if err := store.Insert(ctx, &study.Record{
			Subject:  item.Subject,
			Topic:    item.Topic,
			Subtopic: item.Subtopic,
			Kind:     study.KindPending,
		}); err != nil {
			return fmt.Errorf("insert pending > %w", err)
		}
		added = true
		return nil
	})
	return added, err
}
