// Package scheduler moves study items through their lifecycle and computes review due dates.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/Tlatoani315/estudiar-ipn/internal/study"
)

var (
	// ErrNotFound is returned when a subtopic has no pending or review-scheduled row.
	ErrNotFound = errors.New("subtopic not found in pending or review state")
	// ErrNotActive is returned by batch mastering when there is nothing left to master.
	ErrNotActive = errors.New("subtopic not found or already mastered")
)

// Status describes which transition ProcessStudy performed.
type Status string

const (
	StatusReviewCompleted Status = "Review completed"
	StatusNewTopicStudied Status = "New topic studied"
	StatusMastered        Status = "Mastered"
)

// Engine runs the study state machine against a record store.
type Engine struct {
	store study.RecordStore
	now   func() time.Time
	rand  *rand.Rand
}

type Option func(*Engine)

// WithClock sets the source of "today".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithRand sets the random source used by SuggestNewItems.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		e.rand = r
	}
}

// NewEngine creates an Engine. When store implements study.Transactor each
// transition runs in a single transaction.
func NewEngine(store study.RecordStore, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) today() string {
	return study.FormatDate(e.now())
}

func (e *Engine) transact(ctx context.Context, fn func(ctx context.Context, store study.RecordStore) error) error {
	// Without a transaction a failure between the delete and the inserts leaves
	// the subtopic without any active row.
	return study.RunInTx(ctx, e.store, fn)
}

// ProcessStudy records that subtopic was studied today.
// A review-scheduled item is logged and rescheduled; a pending item is logged and
// gets its first review tomorrow. It returns the record that was replaced.
func (e *Engine) ProcessStudy(ctx context.Context, subtopic string) (Status, study.Record, error) {
	today := e.today()

	var status Status
	var original study.Record
	err := e.transact(ctx, func(ctx context.Context, store study.RecordStore) error {
		review, err := findFirst(ctx, store, subtopic, study.KindReviewScheduled)
		if err != nil {
			return err
		}
		if review != nil {
			status, original = StatusReviewCompleted, *review
			return completeReview(ctx, store, *review, today)
		}

		pending, err := findFirst(ctx, store, subtopic, study.KindPending)
		if err != nil {
			return err
		}
		if pending != nil {
			status, original = StatusNewTopicStudied, *pending
			return startStudying(ctx, store, *pending, today)
		}
		return fmt.Errorf("%w: %s", ErrNotFound, subtopic)
	})
	if err != nil {
		return "", study.Record{}, err
	}

	slog.Default().Debug("study processed",
		"subtopic", original.Subtopic,
		"subject", original.Subject,
		"status", status,
		"reviewCount", original.ReviewCount)
	return status, original, nil
}

func completeReview(ctx context.Context, store study.RecordStore, review study.Record, today string) error {
	if err := store.Insert(ctx, studiedLog(review, today)); err != nil {
		return fmt.Errorf("insert studied log > %w", err)
	}
	if err := store.DeleteByID(ctx, review.ID); err != nil {
		return fmt.Errorf("delete review %d > %w", review.ID, err)
	}
	if review.ReviewCount >= MaxReviewCount {
		return nil
	}

	base := review.Date
	if base == "" {
		base = today
	}
	due, err := NextDueDate(review.ReviewCount, base)
	if err != nil {
		return err
	}
	next := &study.Record{
		Subject:     review.Subject,
		Topic:       review.Topic,
		Subtopic:    review.Subtopic,
		Kind:        study.KindReviewScheduled,
		Date:        due,
		ReviewCount: review.ReviewCount + 1,
	}
	if err := store.Insert(ctx, next); err != nil {
		return fmt.Errorf("insert next review > %w", err)
	}
	return nil
}

func startStudying(ctx context.Context, store study.RecordStore, pending study.Record, today string) error {
	if err := store.DeleteByID(ctx, pending.ID); err != nil {
		return fmt.Errorf("delete pending %d > %w", pending.ID, err)
	}
	if err := store.Insert(ctx, studiedLog(pending, today)); err != nil {
		return fmt.Errorf("insert studied log > %w", err)
	}

	due, err := study.AddDays(today, FirstReviewOffsetDays)
	if err != nil {
		return err
	}
	first := &study.Record{
		Subject:     pending.Subject,
		Topic:       pending.Topic,
		Subtopic:    pending.Subtopic,
		Kind:        study.KindReviewScheduled,
		Date:        due,
		ReviewCount: 1,
	}
	if err := store.Insert(ctx, first); err != nil {
		return fmt.Errorf("insert first review > %w", err)
	}
	return nil
}

func studiedLog(r study.Record, date string) *study.Record {
	return &study.Record{
		Subject:  r.Subject,
		Topic:    r.Topic,
		Subtopic: r.Subtopic,
		Kind:     study.KindStudied,
		Date:     date,
	}
}

// findFirst returns the lowest-id row of one of kinds matching subtopic, or nil.
func findFirst(ctx context.Context, store study.RecordStore, subtopic string, kinds ...study.Kind) (*study.Record, error) {
	rows, err := store.Select(ctx, study.KindIs(kinds...), study.IEq(study.FieldSubtopic, subtopic))
	if err != nil {
		return nil, fmt.Errorf("store.Select(%s) > %w", subtopic, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if len(rows) > 1 {
		slog.Default().Warn("subtopic matches several records, using the first",
			"subtopic", subtopic,
			"matches", len(rows),
			"subject", rows[0].Subject)
	}
	return &rows[0], nil
}

// MarkMastered retires subtopic from scheduling. Its pending and review-scheduled
// rows are replaced by one mastered row dated today.
// It returns false, without changes, when neither kind matches. An item that
// finished its review ladder only has studied logs and stays that way.
func (e *Engine) MarkMastered(ctx context.Context, subtopic string) (bool, error) {
	today := e.today()

	var mastered bool
	err := e.transact(ctx, func(ctx context.Context, store study.RecordStore) error {
		active, err := store.Select(ctx,
			study.KindIs(study.KindPending, study.KindReviewScheduled),
			study.IEq(study.FieldSubtopic, subtopic))
		if err != nil {
			return fmt.Errorf("store.Select(active %s) > %w", subtopic, err)
		}

		if len(active) == 0 {
			return nil
		}
		source := active[0]
		for _, r := range active {
			if err := store.DeleteByID(ctx, r.ID); err != nil {
				return fmt.Errorf("delete %d > %w", r.ID, err)
			}
		}

		if err := store.Insert(ctx, &study.Record{
			Subject:  source.Subject,
			Topic:    source.Topic,
			Subtopic: source.Subtopic,
			Kind:     study.KindMastered,
			Date:     today,
		}); err != nil {
			return fmt.Errorf("insert mastered > %w", err)
		}
		mastered = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return mastered, nil
}

// SuggestNewItems returns up to count pending items of subject in random order.
func (e *Engine) SuggestNewItems(ctx context.Context, subject string, count int) ([]study.Record, error) {
	if count <= 0 {
		return []study.Record{}, nil
	}
	pending, err := e.store.Select(ctx,
		study.KindIs(study.KindPending),
		study.IEq(study.FieldSubject, subject))
	if err != nil {
		return nil, fmt.Errorf("store.Select(pending %s) > %w", subject, err)
	}

	var perm []int
	if e.rand != nil {
		perm = e.rand.Perm(len(pending))
	} else {
		perm = rand.Perm(len(pending))
	}

	n := min(count, len(pending))
	result := make([]study.Record, 0, n)
	for _, i := range perm[:n] {
		result = append(result, pending[i])
	}
	return result, nil
}

// DueReviews returns the review-scheduled items due on or before date.
func (e *Engine) DueReviews(ctx context.Context, date string) ([]study.Record, error) {
	rows, err := e.store.Select(ctx,
		study.KindIs(study.KindReviewScheduled),
		study.Lte(study.FieldDate, date))
	if err != nil {
		return nil, fmt.Errorf("store.Select(due %s) > %w", date, err)
	}
	return rows, nil
}

// Today returns the engine's current date.
func (e *Engine) Today() string {
	return e.today()
}

// RemoveSubject deletes every record of subject.
func (e *Engine) RemoveSubject(ctx context.Context, subject string) error {
	if err := e.store.DeleteByField(ctx, study.FieldSubject, subject); err != nil {
		return fmt.Errorf("store.DeleteByField(subject) > %w", err)
	}
	return nil
}

// RemoveSubtopic deletes every record of subtopic, history included.
func (e *Engine) RemoveSubtopic(ctx context.Context, subtopic string) error {
	if err := e.store.DeleteByField(ctx, study.FieldSubtopic, subtopic); err != nil {
		return fmt.Errorf("store.DeleteByField(subtopic) > %w", err)
	}
	return nil
}
