package demo

import (
	"context"

	"github.com/lukehollis/sync-physics/internal/concept"
	"github.com/lukehollis/sync-physics/internal/ir"
)

// Logger appends values to an in-memory list.
//
// Actions:
//
//	record(value) -> {count}
//
// Queries:
//
//	entries() -> [{index, value}...]
type Logger struct {
	entries []ir.IRValue
}

// NewLogger creates an empty logger.
func NewLogger() *Logger {
	return &Logger{}
}

// Entries returns the recorded values. Direct accessor for tests.
func (l *Logger) Entries() []ir.IRValue {
	out := make([]ir.IRValue, len(l.entries))
	copy(out, l.entries)
	return out
}

// Concept builds the registrable concept.
func (l *Logger) Concept() *concept.Concept {
	return concept.New("Logger").
		Action("record", l.record).
		Query("entries", l.queryEntries)
}

func (l *Logger) record(_ context.Context, input ir.IRObject) (ir.IRObject, error) {
	value, ok := input["value"]
	if !ok {
		value = ir.IRString("")
	}
	l.entries = append(l.entries, value)
	return ir.IRObject{"count": ir.IRInt(int64(len(l.entries)))}, nil
}

func (l *Logger) queryEntries(_ context.Context, _ ir.IRObject) ([]ir.IRObject, error) {
	rows := make([]ir.IRObject, len(l.entries))
	for i, v := range l.entries {
		rows[i] = ir.IRObject{"index": ir.IRInt(int64(i)), "value": v}
	}
	return rows, nil
}
