package engine

import (
	"errors"
	"fmt"
)

// RuleError is a rule-authoring mistake detected while evaluating a rule:
// a where query whose input pattern references an unbound variable, or a
// then template that a matching frame cannot fill. It is fatal for the
// firing it occurs in and is never retried.
type RuleError struct {
	Rule    string // rule name
	Stage   string // "where" or "then"
	Message string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %s: %s: %s", e.Rule, e.Stage, e.Message)
}

// IsRuleError reports whether err is (or wraps) a RuleError.
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}

func unboundVarError(rule *Rule, stage string, x Var) *RuleError {
	return &RuleError{
		Rule:    rule.Name,
		Stage:   stage,
		Message: fmt.Sprintf("variable %q is not bound", rule.Vars.Name(x)),
	}
}
