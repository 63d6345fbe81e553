package engine

import (
	"context"

	"github.com/lukehollis/sync-physics/internal/concept"
	"github.com/lukehollis/sync-physics/internal/ir"
)

// WhereStage transforms a frame set between matching and firing. Stages
// run in declaration order; the pipeline's output is complete only when
// every frame has been processed by every stage.
type WhereStage interface {
	apply(ctx context.Context, reg *concept.Registry, rule *Rule, frames []*Frame) ([]*Frame, error)
}

// Query builds a stage that joins each frame against a concept query.
//
// Per frame: the input pattern is resolved against the frame (a variable
// that is not yet bound is a rule-authoring error), the query is called,
// and each returned row is matched against the output pattern with
// bind-or-agree semantics. A frame flat-maps into one frame per agreeing
// row; rows that conflict with existing bindings contribute nothing, and
// a query returning zero rows drops the frame.
//
// Queries must be pure; they run as ordinary blocking calls and never
// appear in the ledger.
func Query(query ir.QueryRef, input, output Pattern) WhereStage {
	return &queryStage{query: query, input: input, output: output}
}

// Filter builds a stage keeping only frames the predicate accepts.
func Filter(fn func(*Frame) bool) WhereStage {
	return filterStage(fn)
}

// Map builds a stage transforming each frame. Returning nil drops the
// frame.
func Map(fn func(*Frame) *Frame) WhereStage {
	return mapStage(fn)
}

// applyWhere runs the rule's where pipeline over the matched frames.
func applyWhere(ctx context.Context, reg *concept.Registry, rule *Rule, frames []*Frame) ([]*Frame, error) {
	var err error
	for _, stage := range rule.Where {
		if len(frames) == 0 {
			return nil, nil
		}
		frames, err = stage.apply(ctx, reg, rule, frames)
		if err != nil {
			return nil, err
		}
	}
	return frames, nil
}

type queryStage struct {
	query  ir.QueryRef
	input  Pattern
	output Pattern
}

func (s *queryStage) apply(ctx context.Context, reg *concept.Registry, rule *Rule, frames []*Frame) ([]*Frame, error) {
	fn, err := reg.Query(s.query)
	if err != nil {
		return nil, &RuleError{Rule: rule.Name, Stage: "where", Message: err.Error()}
	}

	var out []*Frame
	for _, f := range frames {
		input, err := resolvePattern(rule, "where", s.input, f)
		if err != nil {
			return nil, err
		}

		rows, err := fn(ctx, input)
		if err != nil {
			return nil, err
		}

		for _, row := range rows {
			g := f.clone()
			if matchPattern(s.output, row, g) {
				out = append(out, g)
			}
		}
	}
	return out, nil
}

type filterStage func(*Frame) bool

func (s filterStage) apply(_ context.Context, _ *concept.Registry, _ *Rule, frames []*Frame) ([]*Frame, error) {
	var out []*Frame
	for _, f := range frames {
		if s(f) {
			out = append(out, f)
		}
	}
	return out, nil
}

type mapStage func(*Frame) *Frame

func (s mapStage) apply(_ context.Context, _ *concept.Registry, _ *Rule, frames []*Frame) ([]*Frame, error) {
	var out []*Frame
	for _, f := range frames {
		if g := s(f); g != nil {
			out = append(out, g)
		}
	}
	return out, nil
}

// resolvePattern instantiates a pattern against a frame, producing a
// concrete object. Every variable must be bound.
func resolvePattern(rule *Rule, stage string, p Pattern, f *Frame) (ir.IRObject, error) {
	out := make(ir.IRObject, len(p))
	for field, term := range p {
		if term.isVar {
			v, ok := f.Lookup(term.v)
			if !ok {
				return nil, unboundVarError(rule, stage, term.v)
			}
			out[field] = v
		} else {
			out[field] = term.lit
		}
	}
	return out, nil
}
