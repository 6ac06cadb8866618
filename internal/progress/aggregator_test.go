package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_study "github.com/Tlatoani315/estudiar-ipn/internal/mocks/study"
	"github.com/Tlatoani315/estudiar-ipn/internal/study"
)

func sampleStore() *study.MemoryStore {
	return study.NewMemoryStore(
		study.Record{Subject: "Math", Topic: "Algebra", Subtopic: "Factoring", Kind: study.KindStudied, Date: "2026-03-01"},
		study.Record{Subject: "Math", Topic: "Algebra", Subtopic: "Factoring", Kind: study.KindReviewScheduled, Date: "2026-03-02", ReviewCount: 1},
		study.Record{Subject: "Math", Topic: "Algebra", Subtopic: "Exponents", Kind: study.KindPending},
		study.Record{Subject: "Math", Topic: "Calculus", Subtopic: "Limits", Kind: study.KindMastered, Date: "2026-02-20"},
		study.Record{Subject: "Math", Topic: "Calculus", Subtopic: "Derivatives", Kind: study.KindStudied, Date: "2026-03-02"},
		study.Record{Subject: "Math", Topic: "Calculus", Subtopic: "Derivatives", Kind: study.KindReviewScheduled, Date: "2026-03-05", ReviewCount: 2},
		study.Record{Subject: "Physics", Topic: "Optics", Subtopic: "Lenses", Kind: study.KindPending},
		study.Record{Subject: "Physics", Topic: "Optics", Subtopic: "Mirrors", Kind: study.KindPending},
		study.Record{Subject: "Physics", Topic: "Waves", Subtopic: "Doppler", Kind: "archived"},
	)
}

func TestAggregator_GlobalMetrics(t *testing.T) {
	tests := []struct {
		name  string
		store *study.MemoryStore
		want  Global
	}{
		{
			name:  "empty store",
			store: study.NewMemoryStore(),
			want:  Global{},
		},
		{
			name:  "studied logs are not counted",
			store: sampleStore(),
			want:  Global{Pending: 3, InReview: 2, Mastered: 1, TotalActive: 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewAggregator(tt.store).GlobalMetrics(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGlobal_Percent(t *testing.T) {
	assert.Equal(t, 0.0, Global{}.Percent(0))
	assert.Equal(t, 0, Global{}.Progress())

	g := Global{Pending: 3, InReview: 2, Mastered: 1, TotalActive: 6}
	assert.Equal(t, 50.0, g.Percent(g.Pending))
	assert.Equal(t, 3, g.Progress())
}

func TestAggregator_PerSubjectMetrics(t *testing.T) {
	aggregator := NewAggregator(sampleStore())

	got, err := aggregator.PerSubjectMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]SubjectMetrics{
		"Math":    {Total: 4, Seen: 3, Topics: 2, TopicsSeen: 1},
		"Physics": {Total: 2, Seen: 0, Topics: 1, TopicsSeen: 0},
	}, got)

	again, err := aggregator.PerSubjectMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestAggregator_TopicOutline(t *testing.T) {
	aggregator := NewAggregator(sampleStore())

	tests := []struct {
		name    string
		subject string
		want    map[string][]OutlineEntry
	}{
		{
			name:    "groups and sorts subtopics",
			subject: "math",
			want: map[string][]OutlineEntry{
				"Algebra": {
					{Subtopic: "Exponents", Marker: "p"},
					{Subtopic: "Factoring", Marker: "e"},
				},
				"Calculus": {
					{Subtopic: "Derivatives", Marker: "e"},
					{Subtopic: "Limits", Marker: "d"},
				},
			},
		},
		{
			name:    "unknown subject",
			subject: "History",
			want:    map[string][]OutlineEntry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := aggregator.TopicOutline(context.Background(), tt.subject)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := aggregator.TopicOutline(context.Background(), tt.subject)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}

	assert.Equal(t, []string{"Algebra", "Calculus"}, SortedKeys(map[string][]OutlineEntry{"Calculus": nil, "Algebra": nil}))
}

func TestMarker(t *testing.T) {
	assert.Equal(t, "p", Marker(study.KindPending))
	assert.Equal(t, "e", Marker(study.KindReviewScheduled))
	assert.Equal(t, "d", Marker(study.KindMastered))
	assert.Equal(t, "?", Marker(study.KindStudied))
}

func TestAggregator_FullTimeline(t *testing.T) {
	got, err := NewAggregator(sampleStore()).FullTimeline(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string][]TimelineEvent{
		"2026-03-01": {
			{Subject: "Math", Topic: "Algebra", Subtopic: "Factoring", Done: true},
		},
		"2026-03-02": {
			{Subject: "Math", Topic: "Calculus", Subtopic: "Derivatives", Done: true},
			{Subject: "Math", Topic: "Algebra", Subtopic: "Factoring", Done: false},
		},
		"2026-03-05": {
			{Subject: "Math", Topic: "Calculus", Subtopic: "Derivatives", Done: false},
		},
	}, got)
	assert.Equal(t, []string{"2026-03-01", "2026-03-02", "2026-03-05"}, SortedKeys(got))
}

func TestAggregator_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_study.NewMockRecordStore(ctrl)
	boom := errors.New("unavailable")
	store.EXPECT().Select(gomock.Any(), gomock.Any()).Return(nil, boom).Times(4)

	aggregator := NewAggregator(store)
	ctx := context.Background()

	_, err := aggregator.GlobalMetrics(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = aggregator.PerSubjectMetrics(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = aggregator.TopicOutline(ctx, "Math")
	assert.ErrorIs(t, err, boom)
	_, err = aggregator.FullTimeline(ctx)
	assert.ErrorIs(t, err, boom)
}
