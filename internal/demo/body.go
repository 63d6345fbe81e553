package demo

import (
	"context"
	"fmt"

	"github.com/lukehollis/sync-physics/internal/concept"
	"github.com/lukehollis/sync-physics/internal/ir"
)

// Body is a one-dimensional point mass under constant acceleration,
// integrated with explicit Euler. It exists to exercise float values end
// to end (ledger, matching, canonical hashing).
//
// Actions:
//
//	step(dt) -> {x, v}
//
// Queries:
//
//	state() -> [{x, v}]
type Body struct {
	x, v, a float64
}

// NewBody creates a body at rest at the origin with the given constant
// acceleration.
func NewBody(accel float64) *Body {
	return &Body{a: accel}
}

// Concept builds the registrable concept.
func (b *Body) Concept() *concept.Concept {
	return concept.New("Body").
		Action("step", b.step).
		Query("state", b.state)
}

func (b *Body) step(_ context.Context, input ir.IRObject) (ir.IRObject, error) {
	dt, ok := input["dt"].(ir.IRFloat)
	if !ok {
		return nil, fmt.Errorf("Body.step: field \"dt\" must be a float, got %T", input["dt"])
	}
	b.v += b.a * float64(dt)
	b.x += b.v * float64(dt)
	return ir.IRObject{"x": ir.IRFloat(b.x), "v": ir.IRFloat(b.v)}, nil
}

func (b *Body) state(_ context.Context, _ ir.IRObject) ([]ir.IRObject, error) {
	return []ir.IRObject{{"x": ir.IRFloat(b.x), "v": ir.IRFloat(b.v)}}, nil
}
