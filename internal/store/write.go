package store

import (
	"context"
	"fmt"

	"github.com/lukehollis/sync-physics/internal/ir"
)

// RecordInvocation inserts the pending side of a record. Implements
// engine.Sink.
//
// ON CONFLICT(id) DO NOTHING makes the write idempotent: re-running a
// scenario against the same database never duplicates rows.
func (s *Store) RecordInvocation(ctx context.Context, rec *ir.ActionRecord) error {
	inputJSON, err := ir.MarshalCanonical(rec.Input)
	if err != nil {
		return fmt.Errorf("write invocation %s: %w", rec.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invocations (id, flow_token, action_ref, input, seq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.Flow,
		string(rec.Action),
		string(inputJSON),
		rec.Seq,
	)
	if err != nil {
		return fmt.Errorf("write invocation %s: %w", rec.ID, err)
	}
	return nil
}

// RecordCompletion inserts the completed side of a record. Implements
// engine.Sink.
//
// Each invocation has at most one completion (primary key on
// invocation_id); duplicate writes are silently ignored. The referenced
// invocation must exist.
func (s *Store) RecordCompletion(ctx context.Context, rec *ir.ActionRecord) error {
	if !rec.Completed() {
		return fmt.Errorf("write completion %s: record is still pending", rec.ID)
	}

	outputJSON, err := ir.MarshalCanonical(rec.Output)
	if err != nil {
		return fmt.Errorf("write completion %s: %w", rec.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO completions (invocation_id, output, seq)
		VALUES (?, ?, ?)
		ON CONFLICT(invocation_id) DO NOTHING
	`,
		rec.ID,
		string(outputJSON),
		rec.CompletedSeq,
	)
	if err != nil {
		return fmt.Errorf("write completion %s: %w", rec.ID, err)
	}
	return nil
}
