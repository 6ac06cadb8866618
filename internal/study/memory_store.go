package study

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryStore is an in-process RecordStore.
// All operations are serialized by a single mutex, including transactions.
type MemoryStore struct {
	mu   sync.Mutex
	data memoryData
}

type memoryData struct {
	rows   []Record
	nextID int64
}

// NewMemoryStore creates a MemoryStore seeded with rows. Seeded rows without an ID get one.
func NewMemoryStore(rows ...Record) *MemoryStore {
	s := &MemoryStore{data: memoryData{nextID: 1}}
	for _, r := range rows {
		if r.ID == 0 {
			r.ID = s.data.nextID
		}
		if r.ID >= s.data.nextID {
			s.data.nextID = r.ID + 1
		}
		s.data.rows = append(s.data.rows, r)
	}
	slices.SortFunc(s.data.rows, func(a, b Record) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return s
}

func (s *MemoryStore) Insert(ctx context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.insert(record)
}

func (s *MemoryStore) DeleteByID(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.deleteByID(id)
	return nil
}

func (s *MemoryStore) DeleteByField(ctx context.Context, field Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.deleteByField(field, value)
}

func (s *MemoryStore) Select(ctx context.Context, preds ...Predicate) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.selectRows(preds)
}

// All returns a copy of every row, ordered by ID.
func (s *MemoryStore) All() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.rows)
}

// RunInTx runs fn while holding the store lock and restores the previous rows if fn fails.
func (s *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, store RecordStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := memoryData{rows: slices.Clone(s.data.rows), nextID: s.data.nextID}
	if err := fn(ctx, &memoryTx{data: &s.data}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// memoryTx operates on the store data while the store lock is already held.
type memoryTx struct {
	data *memoryData
}

func (tx *memoryTx) Insert(ctx context.Context, record *Record) error {
	return tx.data.insert(record)
}

func (tx *memoryTx) DeleteByID(ctx context.Context, id int64) error {
	tx.data.deleteByID(id)
	return nil
}

func (tx *memoryTx) DeleteByField(ctx context.Context, field Field, value string) error {
	return tx.data.deleteByField(field, value)
}

func (tx *memoryTx) Select(ctx context.Context, preds ...Predicate) ([]Record, error) {
	return tx.data.selectRows(preds)
}

func (d *memoryData) insert(record *Record) error {
	if record == nil {
		return fmt.Errorf("nil record")
	}
	record.ID = d.nextID
	d.nextID++
	d.rows = append(d.rows, *record)
	return nil
}

func (d *memoryData) deleteByID(id int64) {
	d.rows = slices.DeleteFunc(d.rows, func(r Record) bool {
		return r.ID == id
	})
}

func (d *memoryData) deleteByField(field Field, value string) error {
	pred := Eq(field, value)
	if err := pred.Validate(); err != nil {
		return err
	}
	d.rows = slices.DeleteFunc(d.rows, pred.Match)
	return nil
}

func (d *memoryData) selectRows(preds []Predicate) ([]Record, error) {
	for _, p := range preds {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	var result []Record
	for _, r := range d.rows {
		if matchAll(r, preds) {
			result = append(result, r)
		}
	}
	return result, nil
}

func matchAll(r Record, preds []Predicate) bool {
	for _, p := range preds {
		if !p.Match(r) {
			return false
		}
	}
	return true
}

var (
	_ RecordStore = (*MemoryStore)(nil)
	_ Transactor  = (*MemoryStore)(nil)
	_ RecordStore = (*memoryTx)(nil)
)
