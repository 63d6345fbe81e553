package engine

import (
	"errors"
	"fmt"
)

// QuotaEnforcer bounds the number of action invocations in one flow.
//
// The cycle guard catches exact refires; the quota catches linear
// explosions where every firing produces fresh causes. Together they
// guarantee every flow terminates.
type QuotaEnforcer struct {
	maxSteps int
	current  int
}

// NewQuotaEnforcer creates an enforcer with the given limit.
// Typical default: 1000 (configurable via WithMaxSteps).
func NewQuotaEnforcer(maxSteps int) *QuotaEnforcer {
	return &QuotaEnforcer{maxSteps: maxSteps}
}

// Check counts one step and validates against the limit. Called once per
// invocation before the action runs.
func (q *QuotaEnforcer) Check(flow string) error {
	q.current++
	if q.current > q.maxSteps {
		return &StepsExceededError{
			Flow:  flow,
			Steps: q.current,
			Limit: q.maxSteps,
		}
	}
	return nil
}

// Current returns the step count so far.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// StepsExceededError is returned when a flow exceeds its max-steps quota.
// The invocation that crossed the limit fails; its record is never
// appended to the ledger.
type StepsExceededError struct {
	Flow  string
	Steps int
	Limit int
}

func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("flow %s exceeded max steps quota: %d steps > %d limit",
		e.Flow, e.Steps, e.Limit)
}

// IsStepsExceededError reports whether err is (or wraps) a
// StepsExceededError.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
