package engine

import "fmt"

// Var is an opaque handle to a pattern variable. Handles are allocated
// per rule from a Vars allocator; two handles are the same variable iff
// they are equal. Display names exist only for diagnostics.
type Var int

// Vars allocates variable handles for a single rule. Each registered rule
// gets a fresh allocator, so handles never collide across rules.
type Vars struct {
	names []string
}

// NewVars returns an empty allocator.
func NewVars() *Vars {
	return &Vars{}
}

// New allocates a fresh variable with a display name.
func (vs *Vars) New(name string) Var {
	vs.names = append(vs.names, name)
	return Var(len(vs.names) - 1)
}

// Name returns the display name of a variable.
func (vs *Vars) Name(x Var) string {
	if int(x) < 0 || int(x) >= len(vs.names) {
		return fmt.Sprintf("var#%d", int(x))
	}
	return vs.names[x]
}

// Len returns the number of allocated variables.
func (vs *Vars) Len() int {
	return len(vs.names)
}
