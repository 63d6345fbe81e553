package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lukehollis/sync-physics/internal/ir"
)

// ReadFlow reconstructs a flow's action records in deterministic order:
// seq ascending, id as a binary tiebreaker. Records without a stored
// completion come back pending (nil Output).
//
// Returns an empty slice for an unknown flow.
func (s *Store) ReadFlow(ctx context.Context, flow string) ([]*ir.ActionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.flow_token, i.action_ref, i.input, i.seq, c.output, c.seq
		FROM invocations i
		LEFT JOIN completions c ON c.invocation_id = i.id
		WHERE i.flow_token = ?
		ORDER BY i.seq ASC, i.id COLLATE BINARY ASC
	`, flow)
	if err != nil {
		return nil, fmt.Errorf("query flow %s: %w", flow, err)
	}
	defer rows.Close()

	recs := []*ir.ActionRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flow %s: %w", flow, err)
	}

	return recs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*ir.ActionRecord, error) {
	var (
		rec          ir.ActionRecord
		action       string
		inputJSON    string
		outputJSON   *string
		completedSeq *int64
	)

	if err := row.Scan(&rec.ID, &rec.Flow, &action, &inputJSON, &rec.Seq, &outputJSON, &completedSeq); err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}
	rec.Action = ir.ActionRef(action)

	if err := json.Unmarshal([]byte(inputJSON), &rec.Input); err != nil {
		return nil, fmt.Errorf("unmarshal input for %s: %w", rec.ID, err)
	}

	if outputJSON != nil {
		if err := json.Unmarshal([]byte(*outputJSON), &rec.Output); err != nil {
			return nil, fmt.Errorf("unmarshal output for %s: %w", rec.ID, err)
		}
		// A stored empty output must read back as completed, not pending.
		if rec.Output == nil {
			rec.Output = ir.IRObject{}
		}
		if completedSeq != nil {
			rec.CompletedSeq = *completedSeq
		}
	}

	return &rec, nil
}
