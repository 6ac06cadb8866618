package datasync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_study "github.com/Tlatoani315/estudiar-ipn/internal/mocks/study"
	"github.com/Tlatoani315/estudiar-ipn/internal/study"
)

func TestExporter_Export(t *testing.T) {
	tests := []struct {
		name     string
		records  []study.Record
		wantYAML string
	}{
		{
			name: "records use snake_case field names",
			records: []study.Record{
				{Subject: "Math", Topic: "Algebra", Subtopic: "Factoring", Kind: study.KindStudied, Date: "2026-03-01"},
				{Subject: "Math", Topic: "Algebra", Subtopic: "Factoring", Kind: study.KindReviewScheduled, Date: "2026-03-02", ReviewCount: 1},
				{Subject: "Physics", Topic: "Optics", Subtopic: "Lenses", Kind: study.KindPending},
			},
			wantYAML: `- id: 1
  subject: Math
  topic: Algebra
  subtopic: Factoring
  kind: studied
  date: "2026-03-01"
  review_count: 0
- id: 2
  subject: Math
  topic: Algebra
  subtopic: Factoring
  kind: review-scheduled
  date: "2026-03-02"
  review_count: 1
- id: 3
  subject: Physics
  topic: Optics
  subtopic: Lenses
  kind: pending
  date: ""
  review_count: 0
`,
		},
		{
			name:     "empty store",
			wantYAML: "[]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "export")
			exporter := NewExporter(study.NewMemoryStore(tt.records...), dir)

			path, err := exporter.Export(context.Background())
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, RecordsFileName), path)

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantYAML, string(got))
		})
	}
}

func TestExporter_Export_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_study.NewMockRecordStore(ctrl)
	boom := errors.New("unavailable")
	store.EXPECT().Select(gomock.Any()).Return(nil, boom)

	dir := t.TempDir()
	_, err := NewExporter(store, dir).Export(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.NoFileExists(t, filepath.Join(dir, RecordsFileName))
}
