// Package study provides the study record model and the record store contract
// shared by the scheduler and the progress aggregator.
package study

import (
	"context"
	"fmt"
	"time"
)

// Kind is the lifecycle tag of a study record.
type Kind string

const (
	KindPending         Kind = "pending"
	KindStudied         Kind = "studied"
	KindReviewScheduled Kind = "review-scheduled"
	KindMastered        Kind = "mastered"
)

// ActiveKinds are the kinds that represent the current state of a subtopic.
// Studied rows are history only.
var ActiveKinds = []Kind{KindPending, KindReviewScheduled, KindMastered}

// IsActive reports whether k represents a current state rather than a log entry.
func (k Kind) IsActive() bool {
	return k == KindPending || k == KindReviewScheduled || k == KindMastered
}

// Record is a single row of the study table.
//
// Date is the due date of a review-scheduled row and the event date of studied
// and mastered rows. It is empty for pending rows.
// ReviewCount is only meaningful on review-scheduled rows.
type Record struct {
	ID          int64  `db:"id" yaml:"id"`
	Subject     string `db:"subject" yaml:"subject"`
	Topic       string `db:"topic" yaml:"topic"`
	Subtopic    string `db:"subtopic" yaml:"subtopic"`
	Kind        Kind   `db:"kind" yaml:"kind"`
	Date        string `db:"date" yaml:"date,omitempty"`
	ReviewCount int    `db:"review_count" yaml:"review_count,omitempty"`
}

//go:generate mockgen -source=record.go -destination=../mocks/study/mock_store.go -package=mock_study

// RecordStore is the persistence contract consumed by the scheduler and the aggregator.
type RecordStore interface {
	// Insert appends a row and assigns its ID.
	Insert(ctx context.Context, record *Record) error
	DeleteByID(ctx context.Context, id int64) error
	// DeleteByField deletes every row whose field equals value exactly.
	DeleteByField(ctx context.Context, field Field, value string) error
	// Select returns the rows matching all predicates, ordered by ID.
	Select(ctx context.Context, preds ...Predicate) ([]Record, error)
}

// Transactor is implemented by stores that can run several operations atomically.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, store RecordStore) error) error
}

// RunInTx runs fn in a transaction when store is a Transactor and directly otherwise.
func RunInTx(ctx context.Context, store RecordStore, fn func(ctx context.Context, store RecordStore) error) error {
	if tx, ok := store.(Transactor); ok {
		return tx.RunInTx(ctx, fn)
	}
	return fn(ctx, store)
}

// StoreError reports a failed store operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s > %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// DateLayout is the ISO calendar date format used for every date column.
const DateLayout = "2006-01-02"

// FormatDate formats t as an ISO calendar date in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays returns the ISO date days after date.
func AddDays(date string, days int) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("time.Parse(%s) > %w", date, err)
	}
	return FormatDate(t.AddDate(0, 0, days)), nil
}
