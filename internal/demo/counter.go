package demo

import (
	"context"
	"fmt"

	"github.com/lukehollis/sync-physics/internal/concept"
	"github.com/lukehollis/sync-physics/internal/ir"
)

// Counter accumulates an integer total.
//
// Actions:
//
//	increment(by) -> {total}
//	reset() -> {total}
//
// Queries:
//
//	current() -> [{total}]
type Counter struct {
	total int64
}

// NewCounter creates a counter at zero.
func NewCounter() *Counter {
	return &Counter{}
}

// Total returns the current total. Direct accessor for tests.
func (c *Counter) Total() int64 {
	return c.total
}

// Concept builds the registrable concept.
func (c *Counter) Concept() *concept.Concept {
	return concept.New("Counter").
		Action("increment", c.increment).
		Action("reset", c.reset).
		Query("current", c.current)
}

func (c *Counter) increment(_ context.Context, input ir.IRObject) (ir.IRObject, error) {
	by, ok := input["by"].(ir.IRInt)
	if !ok {
		return nil, fmt.Errorf("Counter.increment: field \"by\" must be an integer, got %T", input["by"])
	}
	c.total += int64(by)
	return ir.IRObject{"total": ir.IRInt(c.total)}, nil
}

func (c *Counter) reset(_ context.Context, _ ir.IRObject) (ir.IRObject, error) {
	c.total = 0
	return ir.IRObject{"total": ir.IRInt(0)}, nil
}

func (c *Counter) current(_ context.Context, _ ir.IRObject) ([]ir.IRObject, error) {
	return []ir.IRObject{{"total": ir.IRInt(c.total)}}, nil
}
