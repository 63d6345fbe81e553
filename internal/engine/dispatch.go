package engine

import (
	"context"

	"github.com/lukehollis/sync-physics/internal/ir"
)

// dispatch evaluates every rule indexed under the completed record's
// action against the record's flow. Callers must hold r.mu.
//
// Rules run in declaration order. For each rule the flow history is
// re-read, so firings by earlier rules are visible to later ones. Each
// surviving frame fires at most once per flow (cycle guard), and each
// firing settles fully before the next frame is considered.
//
// Failures here never propagate to the caller that completed the
// triggering record: a failed firing is logged and evaluation continues
// with the next frame.
func (r *Runtime) dispatch(ctx context.Context, trigger *ir.ActionRecord) {
	for _, rule := range r.byAction[trigger.Action] {
		r.evaluateRule(ctx, rule, trigger.Flow)
	}
}

func (r *Runtime) evaluateRule(ctx context.Context, rule *Rule, flow string) {
	frames := MatchFlow(rule, r.ledger.ByFlow(flow), flow)
	if r.level >= TraceVerbose {
		r.logFrames(rule, flow, "matched", frames)
	}
	if len(frames) == 0 {
		// Zero frames is the normal no-match outcome, not an error.
		return
	}

	frames, err := applyWhere(ctx, r.registry, rule, frames)
	if err != nil {
		r.logger.Error("where stage failed",
			"flow", flow, "rule", rule.Name, "error", err)
		return
	}
	if r.level >= TraceVerbose {
		r.logFrames(rule, flow, "after where", frames)
	}

	for _, frame := range frames {
		key, err := FiringKey(rule.Name, frame.causes)
		if err != nil {
			r.logger.Error("firing key failed",
				"flow", flow, "rule", rule.Name, "error", err)
			continue
		}
		if r.guard.WouldCycle(flow, key) {
			if r.level >= TraceVerbose {
				r.logger.Debug("refire suppressed",
					"flow", flow, "rule", rule.Name, "frame", frameSummary(rule, frame))
			}
			continue
		}
		// Record before firing so re-entrant matching during the firing
		// sees it.
		r.guard.Record(flow, key)
		r.fire(ctx, rule, frame)
	}
}

// fire resolves the rule's then templates against the frame and invokes
// them in declaration order. Each invocation settles fully, including
// everything it transitively triggers, before the next starts.
//
// A failure aborts the remaining then actions of this firing only; other
// firings are unaffected.
func (r *Runtime) fire(ctx context.Context, rule *Rule, frame *Frame) {
	if r.level >= TraceVerbose {
		r.logger.Debug("rule fired",
			"flow", frame.flow, "rule", rule.Name, "frame", frameSummary(rule, frame))
	}

	for _, tmpl := range rule.Then {
		input, err := resolvePattern(rule, "then", tmpl.Input, frame)
		if err != nil {
			r.logger.Error("then template failed",
				"flow", frame.flow, "rule", rule.Name, "action", string(tmpl.Action), "error", err)
			return
		}

		if _, err := r.invoke(ctx, tmpl.Action, input, invokeConfig{flow: frame.flow}); err != nil {
			r.logger.Error("then action failed",
				"flow", frame.flow, "rule", rule.Name, "action", string(tmpl.Action), "error", err)
			return
		}
	}
}

func (r *Runtime) logFrames(rule *Rule, flow, stage string, frames []*Frame) {
	summaries := make([]string, len(frames))
	for i, f := range frames {
		summaries[i] = frameSummary(rule, f)
	}
	r.logger.Debug("frame set",
		"flow", flow, "rule", rule.Name, "stage", stage, "frames", summaries)
}
