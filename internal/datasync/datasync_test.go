package datasync

import (
	"bytes"
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

const importYAML = `- id: 10
  subject: Math
  topic: Algebra
  subtopic: Factoring
  kind: review-scheduled
  date: "2026-03-02"
  review_count: 1
- id: 11
  subject: Math
  topic: Algebra
  subtopic: Exponents
  kind: pending
- id: 12
  subject: Math
  topic: ""
  subtopic: Orphan
  kind: pending
- id: 13
  subject: Math
  topic: Calculus
  subtopic: Limits
  kind: archived
- id: 14
  subject: Math
  topic: Algebra
  subtopic: Exponents
  kind: pending
`

func writeImportFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), RecordsFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImporter_Import(t *testing.T) {
	existing := study.Record{Subject: "Math", Topic: "Algebra", Subtopic: "Factoring", Kind: study.KindReviewScheduled, Date: "2026-03-02", ReviewCount: 1}

	tests := []struct {
		name      string
		opts      ImportOptions
		want      *ImportResult
		wantRows  int
		wantLines []string
	}{
		{
			name:      "inserts new records and skips existing ones",
			want:      &ImportResult{New: 1, Skipped: 2, Invalid: 2},
			wantRows:  2,
			wantLines: []string{"[NEW]  Math/Algebra/Exponents (pending)", "[SKIP]  Math/Algebra/Factoring", "[INVALID]  Math//Orphan"},
		},
		{
			name:     "dry run does not write",
			opts:     ImportOptions{DryRun: true},
			want:     &ImportResult{New: 1, Skipped: 2, Invalid: 2},
			wantRows: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := study.NewMemoryStore(existing)
			var out bytes.Buffer

			got, err := NewImporter(store, &out).Import(context.Background(), writeImportFile(t, importYAML), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, store.All(), tt.wantRows)
			for _, line := range tt.wantLines {
				assert.Contains(t, out.String(), line)
			}
		})
	}
}

func TestImporter_Import_RoundTrip(t *testing.T) {
	ctx := context.Background()
	source := study.NewMemoryStore(
		study.Record{Subject: "Math", Topic: "Algebra", Subtopic: "Factoring", Kind: study.KindStudied, Date: "2026-03-01"},
		study.Record{Subject: "Math", Topic: "Algebra", Subtopic: "Factoring", Kind: study.KindReviewScheduled, Date: "2026-03-02", ReviewCount: 1},
	)
	path, err := NewExporter(source, t.TempDir()).Export(ctx)
	require.NoError(t, err)

	target := study.NewMemoryStore()
	importer := NewImporter(target, &bytes.Buffer{})
	result, err := importer.Import(ctx, path, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{New: 2}, result)
	assert.Equal(t, source.All(), target.All())

	result, err = importer.Import(ctx, path, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Skipped: 2}, result)
}

func TestImporter_Import_StaleExportKeepsOneActiveRow(t *testing.T) {
	ctx := context.Background()
	source := study.NewMemoryStore(
		study.Record{Subject: "Math", Topic: "Algebra", Subtopic: "Factoring", Kind: study.KindPending},
		study.Record{Subject: "Física", Topic: "Ondas", Subtopic: "Óptica", Kind: study.KindReviewScheduled, Date: "2026-03-02", ReviewCount: 1},
	)
	path, err := NewExporter(source, t.TempDir()).Export(ctx)
	require.NoError(t, err)

	// Both items were studied after the export.
	target := study.NewMemoryStore(
		study.Record{Subject: "Math", Topic: "Algebra", Subtopic: "factoring", Kind: study.KindStudied, Date: "2026-03-10"},
		study.Record{Subject: "Math", Topic: "Algebra", Subtopic: "factoring", Kind: study.KindReviewScheduled, Date: "2026-03-11", ReviewCount: 1},
		study.Record{Subject: "Física", Topic: "Ondas", Subtopic: "ÓPTICA", Kind: study.KindStudied, Date: "2026-03-02"},
		study.Record{Subject: "Física", Topic: "Ondas", Subtopic: "ÓPTICA", Kind: study.KindReviewScheduled, Date: "2026-03-05", ReviewCount: 2},
	)
	before := target.All()
	var out bytes.Buffer

	result, err := NewImporter(target, &out).Import(ctx, path, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Skipped: 2}, result)
	assert.Equal(t, before, target.All())
	assert.Contains(t, out.String(), "[SKIP]  Math/Algebra/Factoring (pending, subtopic already active)")
	assert.Contains(t, out.String(), "[SKIP]  Física/Ondas/Óptica (review-scheduled, subtopic already active)")
}

func TestImporter_Import_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewImporter(study.NewMemoryStore(), &bytes.Buffer{}).
			Import(context.Background(), filepath.Join(t.TempDir(), "missing.yml"), ImportOptions{})
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := NewImporter(study.NewMemoryStore(), &bytes.Buffer{}).
			Import(context.Background(), writeImportFile(t, "- id: [1\n"), ImportOptions{})
		assert.ErrorContains(t, err, "yaml.Unmarshal")
	})

	t.Run("insert failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := mock_study.NewMockRecordStore(ctrl)
		boom := errors.New("disk full")
		store.EXPECT().Select(gomock.Any()).Return(nil, nil)
		store.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(boom)

		_, err := NewImporter(store, &bytes.Buffer{}).
			Import(context.Background(), writeImportFile(t, importYAML), ImportOptions{})
		assert.ErrorIs(t, err, boom)
	})
}
