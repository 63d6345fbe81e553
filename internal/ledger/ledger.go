package ledger

import (
	"errors"
	"fmt"

	"github.com/lukehollis/sync-physics/internal/ir"
)

var (
	// ErrDuplicateID is returned when appending a record whose id is
	// already present in the ledger.
	ErrDuplicateID = errors.New("duplicate record id")

	// ErrNotFound is returned when completing a record id the ledger has
	// never seen. This indicates runtime/ledger desync and is not
	// recoverable by the caller.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyCompleted is returned when completing a record twice.
	ErrAlreadyCompleted = errors.New("record already completed")
)

// Ledger is the in-memory append-only log of action records.
type Ledger struct {
	byID   map[string]*ir.ActionRecord
	byFlow map[string][]*ir.ActionRecord
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		byID:   make(map[string]*ir.ActionRecord),
		byFlow: make(map[string][]*ir.ActionRecord),
	}
}

// Append registers a pending record. The record's Output must be nil.
// Returns ErrDuplicateID if a record with the same id already exists.
func (l *Ledger) Append(rec *ir.ActionRecord) error {
	if rec.Output != nil {
		return fmt.Errorf("append %s: record already has an output", rec.ID)
	}
	if _, exists := l.byID[rec.ID]; exists {
		return fmt.Errorf("append %s: %w", rec.ID, ErrDuplicateID)
	}

	l.byID[rec.ID] = rec
	l.byFlow[rec.Flow] = append(l.byFlow[rec.Flow], rec)
	return nil
}

// MarkCompleted attaches an output to a pending record. A nil output is
// stored as an empty object so the record still reads as completed.
// Returns ErrNotFound for unknown ids and ErrAlreadyCompleted if the
// record already has an output.
func (l *Ledger) MarkCompleted(id string, output ir.IRObject, completedSeq int64) error {
	rec, ok := l.byID[id]
	if !ok {
		return fmt.Errorf("complete %s: %w", id, ErrNotFound)
	}
	if rec.Completed() {
		return fmt.Errorf("complete %s: %w", id, ErrAlreadyCompleted)
	}

	if output == nil {
		output = ir.IRObject{}
	}
	rec.Output = output
	rec.CompletedSeq = completedSeq
	return nil
}

// ByID returns the record with the given id, or false if absent.
func (l *Ledger) ByID(id string) (*ir.ActionRecord, bool) {
	rec, ok := l.byID[id]
	return rec, ok
}

// ByFlow returns all records for a flow in append order. The returned
// slice is a copy; the records it points to are live.
func (l *Ledger) ByFlow(flow string) []*ir.ActionRecord {
	recs := l.byFlow[flow]
	out := make([]*ir.ActionRecord, len(recs))
	copy(out, recs)
	return out
}

// Len returns the total number of records across all flows.
func (l *Ledger) Len() int {
	return len(l.byID)
}

// DropFlow removes every record belonging to a flow. Used to bound memory
// once a flow has settled and its trace has been persisted.
func (l *Ledger) DropFlow(flow string) {
	for _, rec := range l.byFlow[flow] {
		delete(l.byID, rec.ID)
	}
	delete(l.byFlow, flow)
}
