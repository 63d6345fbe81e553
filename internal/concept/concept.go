package concept

import (
	"context"
	"fmt"

	"github.com/lukehollis/sync-physics/internal/ir"
)

// ActionFunc executes a state-mutating concept action.
// Input and output are flat objects of ir values.
type ActionFunc func(ctx context.Context, input ir.IRObject) (ir.IRObject, error)

// QueryFunc executes a pure concept query, returning zero or more rows.
// Queries must not mutate concept state.
type QueryFunc func(ctx context.Context, input ir.IRObject) ([]ir.IRObject, error)

// Concept is a named bundle of actions and queries.
type Concept struct {
	name    string
	actions map[string]ActionFunc
	queries map[string]QueryFunc
}

// New starts building a concept. Registration mistakes (empty or duplicate
// names, nil funcs) panic: they are programmer errors caught at startup,
// not runtime conditions.
func New(name string) *Concept {
	if name == "" {
		panic("concept: empty name")
	}
	return &Concept{
		name:    name,
		actions: make(map[string]ActionFunc),
		queries: make(map[string]QueryFunc),
	}
}

// Name returns the concept name.
func (c *Concept) Name() string { return c.name }

// Action registers an action and returns the concept for chaining.
func (c *Concept) Action(name string, fn ActionFunc) *Concept {
	if name == "" || fn == nil {
		panic(fmt.Sprintf("concept %s: invalid action registration %q", c.name, name))
	}
	if _, dup := c.actions[name]; dup {
		panic(fmt.Sprintf("concept %s: duplicate action %q", c.name, name))
	}
	c.actions[name] = fn
	return c
}

// Query registers a query and returns the concept for chaining.
func (c *Concept) Query(name string, fn QueryFunc) *Concept {
	if name == "" || fn == nil {
		panic(fmt.Sprintf("concept %s: invalid query registration %q", c.name, name))
	}
	if _, dup := c.queries[name]; dup {
		panic(fmt.Sprintf("concept %s: duplicate query %q", c.name, name))
	}
	c.queries[name] = fn
	return c
}

// Registry resolves action and query refs to registered functions.
type Registry struct {
	concepts map[string]*Concept
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{concepts: make(map[string]*Concept)}
}

// Register adds a concept. Returns an error if the name is taken.
func (r *Registry) Register(c *Concept) error {
	if _, dup := r.concepts[c.name]; dup {
		return fmt.Errorf("concept %q already registered", c.name)
	}
	r.concepts[c.name] = c
	return nil
}

// Action resolves an action ref.
func (r *Registry) Action(ref ir.ActionRef) (ActionFunc, error) {
	conceptName, actionName, err := ref.Split()
	if err != nil {
		return nil, err
	}
	c, ok := r.concepts[conceptName]
	if !ok {
		return nil, fmt.Errorf("unknown concept %q in ref %q", conceptName, ref)
	}
	fn, ok := c.actions[actionName]
	if !ok {
		return nil, fmt.Errorf("concept %q has no action %q", conceptName, actionName)
	}
	return fn, nil
}

// Query resolves a query ref.
func (r *Registry) Query(ref ir.QueryRef) (QueryFunc, error) {
	conceptName, queryName, err := ref.Split()
	if err != nil {
		return nil, err
	}
	c, ok := r.concepts[conceptName]
	if !ok {
		return nil, fmt.Errorf("unknown concept %q in ref %q", conceptName, ref)
	}
	fn, ok := c.queries[queryName]
	if !ok {
		return nil, fmt.Errorf("concept %q has no query %q", conceptName, queryName)
	}
	return fn, nil
}
