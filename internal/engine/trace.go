package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/lukehollis/sync-physics/internal/ir"
)

// TraceLevel controls how much the runtime logs. Levels only affect
// logging output, never results.
type TraceLevel int

const (
	// TraceOff logs nothing beyond errors.
	TraceOff TraceLevel = iota

	// TraceActions logs one line per action: ref, input, output, flow.
	TraceActions

	// TraceVerbose additionally dumps intermediate frame sets during
	// rule evaluation.
	TraceVerbose
)

// String implements fmt.Stringer for log output and flag parsing.
func (l TraceLevel) String() string {
	switch l {
	case TraceOff:
		return "off"
	case TraceActions:
		return "actions"
	case TraceVerbose:
		return "verbose"
	default:
		return fmt.Sprintf("TraceLevel(%d)", int(l))
	}
}

// ParseTraceLevel converts a flag value to a TraceLevel.
func ParseTraceLevel(s string) (TraceLevel, error) {
	switch s {
	case "off", "":
		return TraceOff, nil
	case "actions", "trace":
		return TraceActions, nil
	case "verbose":
		return TraceVerbose, nil
	default:
		return TraceOff, fmt.Errorf("unknown trace level %q (want off, actions, or verbose)", s)
	}
}

// Sink receives ledger events as they happen. Implemented by the SQLite
// trace store and by in-memory test recorders. Sinks are passive: they
// never sit on the matching path, and a sink failure is logged without
// affecting the invocation.
type Sink interface {
	// RecordInvocation is called once per record, while it is pending.
	RecordInvocation(ctx context.Context, rec *ir.ActionRecord) error

	// RecordCompletion is called once per record, after its output is
	// attached.
	RecordCompletion(ctx context.Context, rec *ir.ActionRecord) error
}

// renderPayload renders an action input or output for trace lines.
func renderPayload(obj ir.IRObject) string {
	data, err := ir.MarshalIRValue(obj)
	if err != nil {
		return "<unprintable>"
	}
	return string(data)
}

// frameSummary renders a frame's bindings using the rule's display names.
// Only used for verbose trace output.
func frameSummary(rule *Rule, f *Frame) string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for i := 0; i < rule.Vars.Len(); i++ {
		v, ok := f.Lookup(Var(i))
		if !ok {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		data, err := ir.MarshalIRValue(v)
		if err != nil {
			data = []byte("<unprintable>")
		}
		fmt.Fprintf(&b, "%s=%s", rule.Vars.Name(Var(i)), data)
	}
	b.WriteByte('}')
	return b.String()
}
