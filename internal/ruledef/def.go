package ruledef

import "github.com/lukehollis/sync-physics/internal/ir"

// Field is one pattern slot: a variable reference or a literal value.
type Field struct {
	Var string // variable name, empty for literals
	Lit ir.IRValue
}

// IsVar reports whether the field is a variable reference.
func (f Field) IsVar() bool {
	return f.Var != ""
}

// PatternDef maps field names to pattern slots.
type PatternDef map[string]Field

// WhenDef is one when clause. A nil Output matches pending and
// completed records alike; a non-nil Output (even empty) requires
// completion.
type WhenDef struct {
	Action string
	Input  PatternDef
	Output PatternDef
}

// WhereDef is one query join step.
type WhereDef struct {
	Query  string
	Input  PatternDef
	Output PatternDef
}

// ThenDef is one action invocation template.
type ThenDef struct {
	Action string
	Input  PatternDef
}

// RuleDef is a compiled rule file entry, ready to bind against a
// runtime.
type RuleDef struct {
	Name  string
	When  []WhenDef
	Where []WhereDef
	Then  []ThenDef
}
