package engine

import "github.com/lukehollis/sync-physics/internal/ir"

// Frame is one consistent assignment of a rule's pattern variables,
// together with the ledger record ids that produced it (one per when
// position, in clause order).
type Frame struct {
	flow   string
	values map[Var]ir.IRValue
	causes []string
}

func newFrame(flow string) *Frame {
	return &Frame{flow: flow, values: make(map[Var]ir.IRValue)}
}

// Flow returns the flow token the frame was matched in.
func (f *Frame) Flow() string {
	return f.flow
}

// Lookup returns the value bound to a variable, or false if unbound.
func (f *Frame) Lookup(x Var) (ir.IRValue, bool) {
	v, ok := f.values[x]
	return v, ok
}

// CauseIDs returns the record ids matched at each when position.
func (f *Frame) CauseIDs() []string {
	out := make([]string, len(f.causes))
	copy(out, f.causes)
	return out
}

// With returns a copy of the frame with the variable set, overwriting any
// existing binding. Intended for Map stages; matching itself never
// overwrites.
func (f *Frame) With(x Var, v ir.IRValue) *Frame {
	g := f.clone()
	g.values[x] = v
	return g
}

func (f *Frame) clone() *Frame {
	g := &Frame{
		flow:   f.flow,
		values: make(map[Var]ir.IRValue, len(f.values)),
		causes: make([]string, len(f.causes)),
	}
	for k, v := range f.values {
		g.values[k] = v
	}
	copy(g.causes, f.causes)
	return g
}

// bind sets a variable if unbound, or checks agreement with the existing
// binding. Returns false on disagreement; the frame is unchanged in that
// case only if the caller discards it (bind mutates on success).
func (f *Frame) bind(x Var, v ir.IRValue) bool {
	if existing, ok := f.values[x]; ok {
		return ir.Equal(existing, v)
	}
	f.values[x] = v
	return true
}
