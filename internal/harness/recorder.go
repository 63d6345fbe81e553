package harness

import (
	"context"
	"sync"

	"github.com/lukehollis/sync-physics/internal/ir"
)

// Event kinds in a recorded trace.
const (
	EventInvoke   = "invoke"
	EventComplete = "complete"
)

// TraceEvent is one recorded ledger event. Invocations carry the input;
// completions additionally carry the output.
type TraceEvent struct {
	Kind   string
	Action ir.ActionRef
	Flow   string
	Seq    int64
	Input  ir.IRObject
	Output ir.IRObject
}

// Recorder is an in-memory trace sink. It records every invocation and
// completion the runtime emits, in emission order.
type Recorder struct {
	mu     sync.Mutex
	events []TraceEvent
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordInvocation implements engine.Sink.
func (r *Recorder) RecordInvocation(_ context.Context, rec *ir.ActionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, TraceEvent{
		Kind:   EventInvoke,
		Action: rec.Action,
		Flow:   rec.Flow,
		Seq:    rec.Seq,
		Input:  rec.Input,
	})
	return nil
}

// RecordCompletion implements engine.Sink.
func (r *Recorder) RecordCompletion(_ context.Context, rec *ir.ActionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, TraceEvent{
		Kind:   EventComplete,
		Action: rec.Action,
		Flow:   rec.Flow,
		Seq:    rec.CompletedSeq,
		Input:  rec.Input,
		Output: rec.Output,
	})
	return nil
}

// Events returns a copy of the recorded trace.
func (r *Recorder) Events() []TraceEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TraceEvent, len(r.events))
	copy(out, r.events)
	return out
}
