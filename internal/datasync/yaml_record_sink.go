package datasync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Tlatoani315/estudiar-ipn/internal/study"
)

// RecordsFileName is the name of the exported YAML file.
const RecordsFileName = "study_records.yml"

type exportRecord struct {
	ID          int64  `yaml:"id"`
	Subject     string `yaml:"subject" validate:"required"`
	Topic       string `yaml:"topic" validate:"required"`
	Subtopic    string `yaml:"subtopic" validate:"required"`
	Kind        string `yaml:"kind" validate:"oneof=pending studied review-scheduled mastered"`
	Date        string `yaml:"date" validate:"omitempty,datetime=2006-01-02"`
	ReviewCount int    `yaml:"review_count" validate:"min=0,max=4"`
}

func newExportRecord(r study.Record) exportRecord {
	return exportRecord{
		ID:          r.ID,
		Subject:     r.Subject,
		Topic:       r.Topic,
		Subtopic:    r.Subtopic,
		Kind:        string(r.Kind),
		Date:        r.Date,
		ReviewCount: r.ReviewCount,
	}
}

func (r exportRecord) toRecord() study.Record {
	return study.Record{
		Subject:     r.Subject,
		Topic:       r.Topic,
		Subtopic:    r.Subtopic,
		Kind:        study.Kind(r.Kind),
		Date:        r.Date,
		ReviewCount: r.ReviewCount,
	}
}

// Exporter writes every study record to a YAML file.
type Exporter struct {
	store     study.RecordStore
	outputDir string
}

// NewExporter creates a new Exporter.
func NewExporter(store study.RecordStore, outputDir string) *Exporter {
	return &Exporter{store: store, outputDir: outputDir}
}

// Export writes study_records.yml and returns its path.
func (e *Exporter) Export(ctx context.Context) (string, error) {
	records, err := e.store.Select(ctx)
	if err != nil {
		return "", fmt.Errorf("store.Select() > %w", err)
	}

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	out := make([]exportRecord, len(records))
	for i, r := range records {
		out[i] = newExportRecord(r)
	}

	path := filepath.Join(e.outputDir, RecordsFileName)
	if err := writeYAML(path, out); err != nil {
		return "", fmt.Errorf("write %s: %w", RecordsFileName, err)
	}
	return path, nil
}

func writeYAML(path string, data any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := yaml.NewEncoder(f)
	defer func() { _ = enc.Close() }()
	return enc.Encode(data)
}
