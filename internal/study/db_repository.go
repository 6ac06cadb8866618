package study

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

const selectColumns = "id, subject, topic, subtopic, kind, date, review_count"

// DBRepository implements RecordStore on the study_records table.
// It works with any sqlx driver using ? placeholders after Rebind (MySQL, SQLite).
type DBRepository struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db, ext: db}
}

// Insert inserts a record and sets its ID.
func (r *DBRepository) Insert(ctx context.Context, record *Record) error {
	result, err := r.ext.ExecContext(ctx,
		r.ext.Rebind(`INSERT INTO study_records (subject, topic, subtopic, kind, date, review_count)
		VALUES (?, ?, ?, ?, ?, ?)`),
		record.Subject, record.Topic, record.Subtopic, string(record.Kind), record.Date, record.ReviewCount)
	if err != nil {
		return &StoreError{Op: "db.ExecContext(insert study_record)", Err: err}
	}
	id, err := result.LastInsertId()
	if err != nil {
		return &StoreError{Op: "result.LastInsertId()", Err: err}
	}
	record.ID = id
	return nil
}

// DeleteByID deletes the record with the given ID.
func (r *DBRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.ext.ExecContext(ctx, r.ext.Rebind("DELETE FROM study_records WHERE id = ?"), id); err != nil {
		return &StoreError{Op: "db.ExecContext(delete study_record)", Err: err}
	}
	return nil
}

// DeleteByField deletes every record whose field equals value.
func (r *DBRepository) DeleteByField(ctx context.Context, field Field, value string) error {
	if !field.valid() {
		return fmt.Errorf("unknown field %q", field)
	}
	query := fmt.Sprintf("DELETE FROM study_records WHERE %s = ?", field)
	if _, err := r.ext.ExecContext(ctx, r.ext.Rebind(query), value); err != nil {
		return &StoreError{Op: fmt.Sprintf("db.ExecContext(delete study_records by %s)", field), Err: err}
	}
	return nil
}

// Select returns the records matching all predicates, ordered by ID.
func (r *DBRepository) Select(ctx context.Context, preds ...Predicate) ([]Record, error) {
	where, args, err := buildWhere(preds)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + selectColumns + " FROM study_records"
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY id"

	if len(args) > 0 {
		query, args, err = sqlx.In(query, args...)
		if err != nil {
			return nil, fmt.Errorf("sqlx.In() > %w", err)
		}
	}

	var records []Record
	if err := sqlx.SelectContext(ctx, r.ext, &records, r.ext.Rebind(query), args...); err != nil {
		return nil, &StoreError{Op: "db.SelectContext(study_records)", Err: err}
	}
	return records, nil
}

// RunInTx runs fn inside a database transaction. Calls made on a repository that is
// already inside a transaction join it.
func (r *DBRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, store RecordStore) error) error {
	if r.db == nil {
		return fn(ctx, r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return &StoreError{Op: "db.BeginTxx()", Err: err}
	}
	if err := fn(ctx, &DBRepository{ext: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return &StoreError{Op: "tx.Commit()", Err: err}
	}
	return nil
}

func buildWhere(preds []Predicate) (string, []any, error) {
	var clauses []string
	var args []any
	for _, p := range preds {
		if err := p.Validate(); err != nil {
			return "", nil, err
		}
		column := string(p.Field)
		switch p.Op {
		case OpEq:
			clauses = append(clauses, column+" = ?")
			args = append(args, p.Values[0])
		case OpLte:
			clauses = append(clauses, column+" <= ?")
			args = append(args, p.Values[0])
		case OpIEq:
			clauses = append(clauses, "LOWER(TRIM("+column+")) = ?")
			args = append(args, Normalize(p.Values[0]))
		case OpIn:
			if len(p.Values) == 0 {
				clauses = append(clauses, "1 = 0")
				continue
			}
			clauses = append(clauses, column+" IN (?)")
			args = append(args, p.Values)
		}
	}
	return strings.Join(clauses, " AND "), args, nil
}

var (
	_ RecordStore = (*DBRepository)(nil)
	_ Transactor  = (*DBRepository)(nil)
)
