package ruledef

import (
	"github.com/lukehollis/sync-physics/internal/engine"
	"github.com/lukehollis/sync-physics/internal/ir"
)

// Bind converts a compiled definition into the programmatic rule
// contract. Variable names are resolved to fresh handles from the
// allocator the runtime supplies at registration; the same name always
// maps to the same handle within one rule.
func Bind(def *RuleDef) engine.RuleFunc {
	return func(v *engine.Vars) engine.Rule {
		b := &binder{vars: v, byName: make(map[string]engine.Var)}

		rule := engine.Rule{}
		for _, clause := range def.When {
			rule.When = append(rule.When, engine.WhenPattern{
				Action: ir.ActionRef(clause.Action),
				Input:  b.pattern(clause.Input),
				Output: b.pattern(clause.Output),
			})
		}
		for _, step := range def.Where {
			rule.Where = append(rule.Where, engine.Query(
				ir.QueryRef(step.Query),
				b.pattern(step.Input),
				b.pattern(step.Output),
			))
		}
		for _, tmpl := range def.Then {
			rule.Then = append(rule.Then, engine.ThenTemplate{
				Action: ir.ActionRef(tmpl.Action),
				Input:  b.pattern(tmpl.Input),
			})
		}
		return rule
	}
}

// RegisterAll binds and registers every definition in order.
func RegisterAll(rt *engine.Runtime, defs []*RuleDef) error {
	for _, def := range defs {
		if err := rt.Register(def.Name, Bind(def)); err != nil {
			return err
		}
	}
	return nil
}

type binder struct {
	vars   *engine.Vars
	byName map[string]engine.Var
}

func (b *binder) pattern(def PatternDef) engine.Pattern {
	if def == nil {
		return nil
	}
	p := engine.Pattern{}
	for name, field := range def {
		if field.IsVar() {
			p[name] = engine.V(b.handle(field.Var))
		} else {
			p[name] = engine.Lit(field.Lit)
		}
	}
	return p
}

func (b *binder) handle(name string) engine.Var {
	if x, ok := b.byName[name]; ok {
		return x
	}
	x := b.vars.New(name)
	b.byName[name] = x
	return x
}
