// Package datasync provides import/export orchestration between YAML files and the record store.
package datasync

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Tlatoani315/estudiar-ipn/internal/study"
)

// recordKey identifies a row by content; IDs are not portable between stores.
type recordKey struct {
	subject, topic, subtopic string
	kind                     study.Kind
	date                     string
	reviewCount              int
}

func keyOf(r study.Record) recordKey {
	return recordKey{r.Subject, r.Topic, r.Subtopic, r.Kind, r.Date, r.ReviewCount}
}

// ImportResult tracks counts for each import operation.
type ImportResult struct {
	New     int
	Skipped int
	Invalid int
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun bool
}

// Importer reads exported YAML records and writes the missing ones to the store.
type Importer struct {
	store     study.RecordStore
	writer    io.Writer
	validator *validator.Validate
}

// NewImporter creates a new Importer.
func NewImporter(store study.RecordStore, writer io.Writer) *Importer {
	return &Importer{
		store:     store,
		writer:    writer,
		validator: validator.New(),
	}
}

// Import inserts the records of path that are not already stored.
// A pending, review-scheduled or mastered record is also skipped when its
// subtopic already has one of those rows, so a subtopic keeps one active row.
// All inserts run in one transaction when the store supports it.
func (imp *Importer) Import(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}
	var source []exportRecord
	if err := yaml.Unmarshal(content, &source); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal(%s) > %w", path, err)
	}

	var result ImportResult
	err = study.RunInTx(ctx, imp.store, func(ctx context.Context, store study.RecordStore) error {
		existing, err := store.Select(ctx)
		if err != nil {
			return fmt.Errorf("load existing records: %w", err)
		}
		seen := make(map[recordKey]bool, len(existing))
		active := make(map[string]bool)
		for _, r := range existing {
			seen[keyOf(r)] = true
			if r.Kind.IsActive() {
				active[study.Normalize(r.Subtopic)] = true
			}
		}

		for _, src := range source {
			if err := imp.validator.Struct(src); err != nil {
				_, _ = fmt.Fprintf(imp.writer, "  [INVALID]  %s/%s/%s: %v\n", src.Subject, src.Topic, src.Subtopic, err)
				result.Invalid++
				continue
			}

			record := src.toRecord()
			key := keyOf(record)
			if seen[key] {
				_, _ = fmt.Fprintf(imp.writer, "  [SKIP]  %s/%s/%s (%s)\n", record.Subject, record.Topic, record.Subtopic, record.Kind)
				result.Skipped++
				continue
			}
			seen[key] = true
			if record.Kind.IsActive() {
				subtopic := study.Normalize(record.Subtopic)
				if active[subtopic] {
					_, _ = fmt.Fprintf(imp.writer, "  [SKIP]  %s/%s/%s (%s, subtopic already active)\n", record.Subject, record.Topic, record.Subtopic, record.Kind)
					result.Skipped++
					continue
				}
				active[subtopic] = true
			}

			_, _ = fmt.Fprintf(imp.writer, "  [NEW]  %s/%s/%s (%s)\n", record.Subject, record.Topic, record.Subtopic, record.Kind)
			result.New++
			if opts.DryRun {
				continue
			}
			if err := store.Insert(ctx, &record); err != nil {
				return fmt.Errorf("store.Insert() > %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
