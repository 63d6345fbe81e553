package engine

import "github.com/lukehollis/sync-physics/internal/ir"

// Term is one slot in a pattern: either a literal value or a variable.
type Term struct {
	isVar bool
	v     Var
	lit   ir.IRValue
}

// Lit builds a literal term. Literals match by structural equality.
func Lit(v ir.IRValue) Term {
	return Term{lit: v}
}

// V builds a variable term. On match the variable binds fresh or must
// agree with its existing binding.
func V(x Var) Term {
	return Term{isVar: true, v: x}
}

// Pattern maps field names to terms. Fields absent from the pattern are
// unconstrained; a field named in the pattern must exist in the matched
// object.
type Pattern map[string]Term

// WhenPattern matches ledger records of one action.
//
// A nil Output pattern matches pending and completed records alike. A
// non-nil Output (even an empty one) requires a completed record.
type WhenPattern struct {
	Action ir.ActionRef
	Input  Pattern
	Output Pattern
}

// ThenTemplate describes one action to invoke when a rule fires. Every
// variable in Input must be bound by the frame at fire time; an unbound
// variable is a rule-authoring error that aborts the firing.
type ThenTemplate struct {
	Action ir.ActionRef
	Input  Pattern
}

// Rule is a compiled synchronization rule. Name and Vars are stamped by
// Runtime.Register.
type Rule struct {
	Name  string
	Vars  *Vars
	When  []WhenPattern
	Where []WhereStage
	Then  []ThenTemplate
}

// RuleFunc builds a rule against a fresh variable allocator. This is the
// programmatic registration contract:
//
//	rt.Register("log-increment", func(v *engine.Vars) engine.Rule {
//		total := v.New("total")
//		return engine.Rule{
//			When: []engine.WhenPattern{{
//				Action: "Counter.increment",
//				Output: engine.Pattern{"total": engine.V(total)},
//			}},
//			Then: []engine.ThenTemplate{{
//				Action: "Logger.record",
//				Input:  engine.Pattern{"value": engine.V(total)},
//			}},
//		}
//	})
type RuleFunc func(v *Vars) Rule
