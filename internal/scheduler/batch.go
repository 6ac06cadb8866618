package scheduler

import (
	"context"
	"fmt"

	"github.com/Tlatoani315/estudiar-ipn/internal/study"
)

// Outcome is the result of one item in a batch.
type Outcome struct {
	Name   string
	Status Status
	Record study.Record
	Err    error
}

// StudyBatch runs ProcessStudy for each name. A failing item never stops the others.
func (e *Engine) StudyBatch(ctx context.Context, names []string) []Outcome {
	outcomes := make([]Outcome, 0, len(names))
	for _, name := range names {
		status, record, err := e.ProcessStudy(ctx, name)
		outcomes = append(outcomes, Outcome{Name: name, Status: status, Record: record, Err: err})
	}
	return outcomes
}

// MasterBatch runs MarkMastered for each name. A failing item never stops the others.
func (e *Engine) MasterBatch(ctx context.Context, names []string) []Outcome {
	outcomes := make([]Outcome, 0, len(names))
	for _, name := range names {
		outcome := Outcome{Name: name}
		mastered, err := e.MarkMastered(ctx, name)
		switch {
		case err != nil:
			outcome.Err = err
		case !mastered:
			outcome.Err = fmt.Errorf("%w: %s", ErrNotActive, name)
		default:
			outcome.Status = StatusMastered
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// Succeeded returns the records of the successful outcomes.
func Succeeded(outcomes []Outcome) []study.Record {
	var records []study.Record
	for _, o := range outcomes {
		if o.Err == nil && o.Record.ID != 0 {
			records = append(records, o.Record)
		}
	}
	return records
}
