// Package progress derives completion metrics, outlines and timelines from study records.
package progress

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/Tlatoani315/estudiar-ipn/internal/study"
)

// Aggregator computes read-only views over a record store.
type Aggregator struct {
	store study.RecordStore
}

// NewAggregator creates a new Aggregator.
func NewAggregator(store study.RecordStore) *Aggregator {
	return &Aggregator{store: store}
}

// Global holds the counts of active rows across all subjects.
type Global struct {
	Pending     int
	InReview    int
	Mastered    int
	TotalActive int
}

// Progress is the number of active items that have been studied at least once.
func (g Global) Progress() int {
	return g.TotalActive - g.Pending
}

// Percent returns n as a percentage of TotalActive, or 0 when there are no items.
func (g Global) Percent(n int) float64 {
	if g.TotalActive == 0 {
		return 0
	}
	return float64(n) * 100 / float64(g.TotalActive)
}

// SubjectMetrics holds per-subject counts of active rows.
type SubjectMetrics struct {
	Total      int
	Seen       int
	Topics     int
	TopicsSeen int
}

// OutlineEntry is a subtopic with its state marker.
type OutlineEntry struct {
	Subtopic string
	Marker   string
}

// TimelineEvent is a past study or a scheduled review on a date.
type TimelineEvent struct {
	Subject  string
	Topic    string
	Subtopic string
	// Done is true for studied logs and false for scheduled reviews.
	Done bool
}

// Marker returns the short outline marker of a kind.
func Marker(kind study.Kind) string {
	switch kind {
	case study.KindPending:
		return "p"
	case study.KindReviewScheduled:
		return "e"
	case study.KindMastered:
		return "d"
	default:
		return "?"
	}
}

func (a *Aggregator) activeRows(ctx context.Context, preds ...study.Predicate) ([]study.Record, error) {
	preds = append(preds, study.KindIs(study.ActiveKinds...))
	rows, err := a.store.Select(ctx, preds...)
	if err != nil {
		return nil, fmt.Errorf("store.Select(active) > %w", err)
	}
	return rows, nil
}

// GlobalMetrics counts pending, in-review and mastered rows. Studied logs are ignored.
func (a *Aggregator) GlobalMetrics(ctx context.Context) (Global, error) {
	rows, err := a.activeRows(ctx)
	if err != nil {
		return Global{}, err
	}

	var g Global
	for _, r := range rows {
		switch r.Kind {
		case study.KindPending:
			g.Pending++
		case study.KindReviewScheduled:
			g.InReview++
		case study.KindMastered:
			g.Mastered++
		}
	}
	g.TotalActive = g.Pending + g.InReview + g.Mastered
	return g, nil
}

// PerSubjectMetrics returns, per subject, the number of active rows and how many
// of them have been seen (review-scheduled or mastered), plus the same for topics:
// a topic counts as seen once none of its rows is pending.
func (a *Aggregator) PerSubjectMetrics(ctx context.Context) (map[string]SubjectMetrics, error) {
	rows, err := a.activeRows(ctx)
	if err != nil {
		return nil, err
	}

	metrics := make(map[string]SubjectMetrics)
	topics := make(map[string]map[string]bool)
	for _, r := range rows {
		m := metrics[r.Subject]
		m.Total++
		if r.Kind != study.KindPending {
			m.Seen++
		}
		metrics[r.Subject] = m

		if topics[r.Subject] == nil {
			topics[r.Subject] = make(map[string]bool)
		}
		if _, ok := topics[r.Subject][r.Topic]; !ok {
			topics[r.Subject][r.Topic] = true
		}
		if r.Kind == study.KindPending {
			topics[r.Subject][r.Topic] = false
		}
	}

	for subject, seen := range topics {
		m := metrics[subject]
		m.Topics = len(seen)
		for _, ok := range seen {
			if ok {
				m.TopicsSeen++
			}
		}
		metrics[subject] = m
	}
	return metrics, nil
}

// TopicOutline groups the active rows of subject by topic with subtopics sorted by name.
func (a *Aggregator) TopicOutline(ctx context.Context, subject string) (map[string][]OutlineEntry, error) {
	rows, err := a.activeRows(ctx, study.IEq(study.FieldSubject, subject))
	if err != nil {
		return nil, err
	}

	outline := make(map[string][]OutlineEntry)
	for _, r := range rows {
		outline[r.Topic] = append(outline[r.Topic], OutlineEntry{
			Subtopic: r.Subtopic,
			Marker:   Marker(r.Kind),
		})
	}
	for _, entries := range outline {
		slices.SortFunc(entries, func(x, y OutlineEntry) int {
			return cmp.Or(cmp.Compare(x.Subtopic, y.Subtopic), cmp.Compare(x.Marker, y.Marker))
		})
	}
	return outline, nil
}

// FullTimeline groups studied logs and scheduled reviews by date.
// Within a date, done events come first, then by subject and subtopic.
func (a *Aggregator) FullTimeline(ctx context.Context) (map[string][]TimelineEvent, error) {
	rows, err := a.store.Select(ctx, study.KindIs(study.KindStudied, study.KindReviewScheduled))
	if err != nil {
		return nil, fmt.Errorf("store.Select(timeline) > %w", err)
	}

	timeline := make(map[string][]TimelineEvent)
	for _, r := range rows {
		timeline[r.Date] = append(timeline[r.Date], TimelineEvent{
			Subject:  r.Subject,
			Topic:    r.Topic,
			Subtopic: r.Subtopic,
			Done:     r.Kind == study.KindStudied,
		})
	}
	for _, events := range timeline {
		slices.SortStableFunc(events, compareEvents)
	}
	return timeline, nil
}

func compareEvents(x, y TimelineEvent) int {
	if x.Done != y.Done {
		if x.Done {
			return -1
		}
		return 1
	}
	return cmp.Or(
		cmp.Compare(x.Subject, y.Subject),
		cmp.Compare(x.Subtopic, y.Subtopic),
	)
}

// SortedKeys returns the keys of m in lexicographic order.
func SortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
