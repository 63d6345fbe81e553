package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukehollis/sync-physics/internal/ir"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Kind: EventInvoke, Action: "Counter.increment", Flow: "f", Seq: 1,
			Input: ir.IRObject{"by": ir.IRInt(5)}},
		{Kind: EventComplete, Action: "Counter.increment", Flow: "f", Seq: 2,
			Input: ir.IRObject{"by": ir.IRInt(5)}, Output: ir.IRObject{"total": ir.IRInt(5)}},
		{Kind: EventInvoke, Action: "Logger.record", Flow: "f", Seq: 3,
			Input: ir.IRObject{"value": ir.IRInt(5), "extra": ir.IRBool(true)}},
		{Kind: EventComplete, Action: "Logger.record", Flow: "f", Seq: 4,
			Input: ir.IRObject{"value": ir.IRInt(5), "extra": ir.IRBool(true)},
			Output: ir.IRObject{"count": ir.IRInt(1)}},
	}
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	assert.Empty(t, EvaluateAssertions(trace, []Assertion{
		{Type: AssertTraceContains, Action: "Counter.increment", Args: map[string]any{"by": 5}},
	}))

	// Subset match ignores extra input fields.
	assert.Empty(t, EvaluateAssertions(trace, []Assertion{
		{Type: AssertTraceContains, Action: "Logger.record", Args: map[string]any{"value": 5}},
	}))

	// No args matches any invocation of the action.
	assert.Empty(t, EvaluateAssertions(trace, []Assertion{
		{Type: AssertTraceContains, Action: "Logger.record"},
	}))

	failures := EvaluateAssertions(trace, []Assertion{
		{Type: AssertTraceContains, Action: "Logger.record", Args: map[string]any{"value": 6}},
	})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "trace_contains")
	assert.Contains(t, failures[0], "not found")
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.Empty(t, EvaluateAssertions(trace, []Assertion{
		{Type: AssertTraceOrder, Actions: []string{"Counter.increment", "Logger.record"}},
	}))

	failures := EvaluateAssertions(trace, []Assertion{
		{Type: AssertTraceOrder, Actions: []string{"Logger.record", "Counter.increment"}},
	})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "should come before")

	failures = EvaluateAssertions(trace, []Assertion{
		{Type: AssertTraceOrder, Actions: []string{"Counter.increment", "Counter.reset"}},
	})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "missing action Counter.reset")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.Empty(t, EvaluateAssertions(trace, []Assertion{
		{Type: AssertTraceCount, Action: "Logger.record", Count: 1},
	}))

	// Completions do not count as invocations.
	failures := EvaluateAssertions(trace, []Assertion{
		{Type: AssertTraceCount, Action: "Logger.record", Count: 2},
	})
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "1 invocations")

	assert.Empty(t, EvaluateAssertions(trace, []Assertion{
		{Type: AssertTraceCount, Action: "Counter.reset", Count: 0},
	}))
}

func TestEvaluateAssertions_CollectsAllFailures(t *testing.T) {
	trace := sampleTrace()
	failures := EvaluateAssertions(trace, []Assertion{
		{Type: AssertTraceCount, Action: "Logger.record", Count: 9},
		{Type: AssertTraceContains, Action: "Counter.reset"},
		{Type: AssertTraceCount, Action: "Counter.increment", Count: 1},
	})
	assert.Len(t, failures, 2)
}
