package ruledef

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/lukehollis/sync-physics/internal/ir"
)

// CompileError is a rule file compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadDir loads every .cue file in a directory as one CUE instance and
// compiles the rules declared under the top-level "rule" struct, in
// declaration order.
func LoadDir(dir string) ([]*RuleDef, error) {
	ctx := cuecontext.New()
	// Package "_" selects files without a package clause, which cue
	// v0.11+ loads by default but v0.9 excludes.
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir, Package: "_"})
	if len(instances) == 0 {
		return nil, &CompileError{Field: "rule", Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	return Compile(value)
}

// CompileString compiles rules from CUE source text. Used by tests.
func CompileString(src string) ([]*RuleDef, error) {
	value := cuecontext.New().CompileString(src)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return Compile(value)
}

// Compile extracts rule definitions from a built CUE value.
func Compile(value cue.Value) ([]*RuleDef, error) {
	rulesVal := value.LookupPath(cue.ParsePath("rule"))
	if !rulesVal.Exists() {
		return nil, &CompileError{
			Field:   "rule",
			Message: "no top-level \"rule\" struct found",
			Pos:     value.Pos(),
		}
	}

	iter, err := rulesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var defs []*RuleDef
	for iter.Next() {
		name := strings.Trim(iter.Selector().String(), `"`)
		def, err := compileRule(name, iter.Value())
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	if len(defs) == 0 {
		return nil, &CompileError{
			Field:   "rule",
			Message: "rule struct is empty",
			Pos:     rulesVal.Pos(),
		}
	}
	return defs, nil
}

func compileRule(name string, v cue.Value) (*RuleDef, error) {
	def := &RuleDef{Name: name}

	whenVal := v.LookupPath(cue.ParsePath("when"))
	if !whenVal.Exists() {
		return nil, &CompileError{
			Field:   name + ".when",
			Message: "when clause list is required",
			Pos:     v.Pos(),
		}
	}
	if err := forEachListItem(whenVal, name+".when", func(field string, item cue.Value) error {
		clause, err := compileWhen(field, item)
		if err != nil {
			return err
		}
		def.When = append(def.When, clause)
		return nil
	}); err != nil {
		return nil, err
	}
	if len(def.When) == 0 {
		return nil, &CompileError{
			Field:   name + ".when",
			Message: "at least one when clause is required",
			Pos:     whenVal.Pos(),
		}
	}

	whereVal := v.LookupPath(cue.ParsePath("where"))
	if whereVal.Exists() {
		if err := forEachListItem(whereVal, name+".where", func(field string, item cue.Value) error {
			step, err := compileWhere(field, item)
			if err != nil {
				return err
			}
			def.Where = append(def.Where, step)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	thenVal := v.LookupPath(cue.ParsePath("then"))
	if !thenVal.Exists() {
		return nil, &CompileError{
			Field:   name + ".then",
			Message: "then clause list is required",
			Pos:     v.Pos(),
		}
	}
	if err := forEachListItem(thenVal, name+".then", func(field string, item cue.Value) error {
		tmpl, err := compileThen(field, item)
		if err != nil {
			return err
		}
		def.Then = append(def.Then, tmpl)
		return nil
	}); err != nil {
		return nil, err
	}

	return def, nil
}

func forEachListItem(v cue.Value, field string, fn func(field string, item cue.Value) error) error {
	iter, err := v.List()
	if err != nil {
		return &CompileError{Field: field, Message: "must be a list", Pos: v.Pos()}
	}
	i := 0
	for iter.Next() {
		if err := fn(fmt.Sprintf("%s[%d]", field, i), iter.Value()); err != nil {
			return err
		}
		i++
	}
	return nil
}

func compileWhen(field string, v cue.Value) (WhenDef, error) {
	action, err := requiredRef(v, field, "action")
	if err != nil {
		return WhenDef{}, err
	}

	clause := WhenDef{Action: action}
	if clause.Input, err = optionalPattern(v, field, "input"); err != nil {
		return WhenDef{}, err
	}
	if clause.Output, err = optionalPattern(v, field, "output"); err != nil {
		return WhenDef{}, err
	}
	return clause, nil
}

func compileWhere(field string, v cue.Value) (WhereDef, error) {
	query, err := requiredRef(v, field, "query")
	if err != nil {
		return WhereDef{}, err
	}

	step := WhereDef{Query: query}
	if step.Input, err = optionalPattern(v, field, "input"); err != nil {
		return WhereDef{}, err
	}
	if step.Output, err = optionalPattern(v, field, "output"); err != nil {
		return WhereDef{}, err
	}
	if step.Input == nil {
		step.Input = PatternDef{}
	}
	if step.Output == nil {
		step.Output = PatternDef{}
	}
	return step, nil
}

func compileThen(field string, v cue.Value) (ThenDef, error) {
	action, err := requiredRef(v, field, "action")
	if err != nil {
		return ThenDef{}, err
	}

	tmpl := ThenDef{Action: action}
	input, err := optionalPattern(v, field, "input")
	if err != nil {
		return ThenDef{}, err
	}
	if input == nil {
		input = PatternDef{}
	}
	tmpl.Input = input
	return tmpl, nil
}

// requiredRef reads a "Concept.name" string field and validates its
// shape.
func requiredRef(v cue.Value, field, key string) (string, error) {
	refVal := v.LookupPath(cue.ParsePath(key))
	if !refVal.Exists() {
		return "", &CompileError{
			Field:   field + "." + key,
			Message: fmt.Sprintf("%s is required", key),
			Pos:     v.Pos(),
		}
	}
	ref, err := refVal.String()
	if err != nil {
		return "", &CompileError{
			Field:   field + "." + key,
			Message: "must be a string",
			Pos:     refVal.Pos(),
		}
	}
	if _, _, err := ir.ActionRef(ref).Split(); err != nil {
		return "", &CompileError{
			Field:   field + "." + key,
			Message: err.Error(),
			Pos:     refVal.Pos(),
		}
	}
	return ref, nil
}

// optionalPattern reads a pattern struct. Absent returns nil, which the
// caller may interpret (a when clause's nil output matches pending
// records).
func optionalPattern(v cue.Value, field, key string) (PatternDef, error) {
	patVal := v.LookupPath(cue.ParsePath(key))
	if !patVal.Exists() {
		return nil, nil
	}

	iter, err := patVal.Fields()
	if err != nil {
		return nil, &CompileError{
			Field:   field + "." + key,
			Message: "must be a struct",
			Pos:     patVal.Pos(),
		}
	}

	pat := PatternDef{}
	for iter.Next() {
		name := strings.Trim(iter.Selector().String(), `"`)
		slot, err := compileField(field+"."+key+"."+name, iter.Value())
		if err != nil {
			return nil, err
		}
		pat[name] = slot
	}
	return pat, nil
}

// compileField converts one pattern slot: "?name" strings become
// variables, "??..." unescapes to a literal "?...", everything else is
// a literal value.
func compileField(field string, v cue.Value) (Field, error) {
	if v.Kind() == cue.StringKind {
		s, err := v.String()
		if err != nil {
			return Field{}, formatCUEError(err)
		}
		if strings.HasPrefix(s, "??") {
			return Field{Lit: ir.IRString(s[1:])}, nil
		}
		if strings.HasPrefix(s, "?") {
			varName := s[1:]
			if varName == "" {
				return Field{}, &CompileError{
					Field:   field,
					Message: "empty variable name",
					Pos:     v.Pos(),
				}
			}
			return Field{Var: varName}, nil
		}
		return Field{Lit: ir.IRString(s)}, nil
	}

	lit, err := literalValue(field, v)
	if err != nil {
		return Field{}, err
	}
	return Field{Lit: lit}, nil
}

// literalValue converts a concrete CUE value to an ir value. Variables
// are only recognized at the top level of a pattern slot; nested
// strings are always literal.
func literalValue(field string, v cue.Value) (ir.IRValue, error) {
	switch v.Kind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRString(s), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRInt(n), nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRFloat(f), nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.IRBool(b), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var arr ir.IRArray
		i := 0
		for iter.Next() {
			elem, err := literalValue(fmt.Sprintf("%s[%d]", field, i), iter.Value())
			if err != nil {
				return nil, err
			}
			arr = append(arr, elem)
			i++
		}
		return arr, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		obj := ir.IRObject{}
		for iter.Next() {
			name := strings.Trim(iter.Selector().String(), `"`)
			elem, err := literalValue(field+"."+name, iter.Value())
			if err != nil {
				return nil, err
			}
			obj[name] = elem
		}
		return obj, nil
	case cue.NullKind:
		return nil, &CompileError{
			Field:   field,
			Message: "null is not a valid pattern value",
			Pos:     v.Pos(),
		}
	default:
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unsupported value kind %v", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
