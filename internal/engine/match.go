package engine

import "github.com/lukehollis/sync-physics/internal/ir"

// MatchFlow evaluates a rule's when clauses over a flow's record history.
//
// The match is a nested-loop join: start from a single empty frame, and
// for each when pattern in declaration order try every record in the
// history against every frame produced so far. Literal fields compare by
// structural equality; variable fields bind fresh or must agree with the
// frame's existing binding. A disagreement discards the candidate frame.
//
// Fan-out is complete: every consistent combination of records yields its
// own frame, there is no first-match-wins. Records are scanned in append
// order and frames extended in creation order, so a fixed history always
// produces the same frame sequence.
//
// Exported for offline replay, which runs matching over stored histories
// without a live runtime.
func MatchFlow(rule *Rule, recs []*ir.ActionRecord, flow string) []*Frame {
	frames := []*Frame{newFrame(flow)}

	for i := range rule.When {
		wp := &rule.When[i]
		var next []*Frame
		for _, f := range frames {
			for _, rec := range recs {
				if g := matchRecord(wp, rec, f); g != nil {
					next = append(next, g)
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		frames = next
	}

	return frames
}

// matchRecord tries one record against one when pattern under an existing
// frame. Returns the extended frame, or nil if the record does not match.
func matchRecord(wp *WhenPattern, rec *ir.ActionRecord, f *Frame) *Frame {
	if rec.Action != wp.Action {
		return nil
	}
	// A non-nil output pattern only matches completed records.
	if wp.Output != nil && !rec.Completed() {
		return nil
	}

	g := f.clone()
	if !matchPattern(wp.Input, rec.Input, g) {
		return nil
	}
	if wp.Output != nil && !matchPattern(wp.Output, rec.Output, g) {
		return nil
	}

	g.causes = append(g.causes, rec.ID)
	return g
}

// matchPattern matches every pattern field against the object, binding
// variables into the frame. A field named in the pattern must be present
// in the object. Mutates the frame; callers pass a clone they are
// prepared to discard.
func matchPattern(p Pattern, obj ir.IRObject, f *Frame) bool {
	for field, term := range p {
		val, ok := obj[field]
		if !ok {
			return false
		}
		if term.isVar {
			if !f.bind(term.v, val) {
				return false
			}
		} else if !ir.Equal(term.lit, val) {
			return false
		}
	}
	return true
}
