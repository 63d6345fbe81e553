package harness

import (
	"fmt"
	"strings"

	"github.com/lukehollis/sync-physics/internal/ir"
)

// AssertionError reports one failed assertion with enough of the trace
// to see what actually happened.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

func (e *AssertionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "assertion failed: %s\n", e.Type)
	fmt.Fprintf(&b, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&b, "  actual:   %s\n", e.Actual)
	b.WriteString("trace:\n")
	for i, ev := range e.Trace {
		if ev.Kind != EventInvoke {
			continue
		}
		input, err := ir.MarshalCanonical(ev.Input)
		if err != nil {
			input = []byte("<unprintable>")
		}
		fmt.Fprintf(&b, "  [%d] %s %s\n", i, ev.Action, input)
	}
	return b.String()
}

// EvaluateAssertions checks every assertion against the trace and
// returns the failure messages.
func EvaluateAssertions(trace []TraceEvent, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(trace, a)
		case AssertTraceCount:
			err = assertTraceCount(trace, a)
		default:
			err = fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
		if err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

// assertTraceContains looks for an invocation of the action whose input
// contains the expected args as a subset.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	want, err := ir.ObjectFromGo(a.Args)
	if err != nil {
		return fmt.Errorf("trace_contains args: %w", err)
	}

	for _, ev := range trace {
		if ev.Kind == EventInvoke && string(ev.Action) == a.Action && inputContains(ev.Input, want) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("invocation of %s with args %v", a.Action, a.Args),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the first occurrence of each action comes
// after the first occurrence of the previous one.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	positions := make(map[string]int)
	for i, ev := range trace {
		if ev.Kind != EventInvoke {
			continue
		}
		if _, seen := positions[string(ev.Action)]; !seen {
			positions[string(ev.Action)] = i + 1
		}
	}

	for _, action := range a.Actions {
		if positions[action] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all actions present: %v", a.Actions),
				Actual:   fmt.Sprintf("missing action %s", action),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(a.Actions); i++ {
		prev, curr := a.Actions[i-1], a.Actions[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("actions in order: %v", a.Actions),
				Actual: fmt.Sprintf("%s (pos %d) should come before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks the exact number of invocations of an action.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if ev.Kind == EventInvoke && string(ev.Action) == a.Action {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d invocations of %s", a.Count, a.Action),
			Actual:   fmt.Sprintf("%d invocations", count),
			Trace:    trace,
		}
	}
	return nil
}

// inputContains reports whether every expected field is present in the
// input with an equal value. Extra input fields are ignored.
func inputContains(input, want ir.IRObject) bool {
	for k, wv := range want {
		iv, ok := input[k]
		if !ok || !ir.Equal(iv, wv) {
			return false
		}
	}
	return true
}
