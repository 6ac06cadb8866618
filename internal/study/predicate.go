package study

import (
	"fmt"
	"strings"
)

// Field names a filterable column.
type Field string

const (
	FieldSubject  Field = "subject"
	FieldTopic    Field = "topic"
	FieldSubtopic Field = "subtopic"
	FieldKind     Field = "kind"
	FieldDate     Field = "date"
)

func (f Field) valid() bool {
	switch f {
	case FieldSubject, FieldTopic, FieldSubtopic, FieldKind, FieldDate:
		return true
	}
	return false
}

// Operator is a comparison used by a Predicate.
type Operator int

const (
	OpEq Operator = iota
	// OpLte compares strings lexicographically, which orders ISO dates correctly.
	OpLte
	// OpIEq is equality after folding case. The stored value loses its
	// surrounding spaces and the queried value all surrounding whitespace.
	OpIEq
	OpIn
)

// Predicate is a single filter condition on a record field.
type Predicate struct {
	Field  Field
	Op     Operator
	Values []string
}

func Eq(field Field, value string) Predicate {
	return Predicate{Field: field, Op: OpEq, Values: []string{value}}
}

func Lte(field Field, value string) Predicate {
	return Predicate{Field: field, Op: OpLte, Values: []string{value}}
}

func IEq(field Field, value string) Predicate {
	return Predicate{Field: field, Op: OpIEq, Values: []string{value}}
}

func In(field Field, values ...string) Predicate {
	return Predicate{Field: field, Op: OpIn, Values: values}
}

// KindIs matches rows of any of the given kinds.
func KindIs(kinds ...Kind) Predicate {
	values := make([]string, len(kinds))
	for i, k := range kinds {
		values[i] = string(k)
	}
	if len(values) == 1 {
		return Eq(FieldKind, values[0])
	}
	return In(FieldKind, values...)
}

// Validate checks the field name and the number of values.
func (p Predicate) Validate() error {
	if !p.Field.valid() {
		return fmt.Errorf("unknown field %q", p.Field)
	}
	switch p.Op {
	case OpEq, OpLte, OpIEq:
		if len(p.Values) != 1 {
			return fmt.Errorf("predicate on %s needs exactly one value, got %d", p.Field, len(p.Values))
		}
	case OpIn:
	default:
		return fmt.Errorf("unknown operator %d", p.Op)
	}
	return nil
}

// Match evaluates the predicate against a record.
func (p Predicate) Match(r Record) bool {
	got := r.value(p.Field)
	switch p.Op {
	case OpEq:
		return got == p.Values[0]
	case OpLte:
		return got <= p.Values[0]
	case OpIEq:
		return foldStored(got) == Normalize(p.Values[0])
	case OpIn:
		for _, v := range p.Values {
			if got == v {
				return true
			}
		}
	}
	return false
}

// Normalize returns the form used for case-insensitive subtopic matching.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// foldStored matches LOWER(TRIM(column)) in SQL, where TRIM strips spaces only.
func foldStored(s string) string {
	return strings.ToLower(strings.Trim(s, " "))
}

func (r Record) value(f Field) string {
	switch f {
	case FieldSubject:
		return r.Subject
	case FieldTopic:
		return r.Topic
	case FieldSubtopic:
		return r.Subtopic
	case FieldKind:
		return string(r.Kind)
	case FieldDate:
		return r.Date
	}
	return ""
}
