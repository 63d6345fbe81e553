package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is one declarative harness run.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what behavior the scenario pins down.
	Description string `yaml:"description"`

	// Rules is the directory of CUE rule files, relative to the
	// scenario file. Empty means no rules are registered.
	Rules string `yaml:"rules,omitempty"`

	// FlowToken seeds the flow generator. Empty defaults to
	// "test-flow-default" so golden traces stay stable.
	FlowToken string `yaml:"flow_token,omitempty"`

	// MaxSteps overrides the runtime's per-flow quota. Zero keeps the
	// default.
	MaxSteps int `yaml:"max_steps,omitempty"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the recorded trace after all steps ran.
	Assertions []Assertion `yaml:"assertions"`
}

// Step invokes one action.
type Step struct {
	// Invoke is the "Concept.action" reference.
	Invoke string `yaml:"invoke"`

	// Args are the action input fields. YAML scalars convert to ir
	// values; null is rejected.
	Args map[string]any `yaml:"args"`

	// Flow pins the step to an explicit flow token instead of drawing a
	// fresh one from the generator.
	Flow string `yaml:"flow,omitempty"`
}

// Assertion validates the trace.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count.
	Type string `yaml:"type"`

	// Action is the action reference (trace_contains, trace_count).
	Action string `yaml:"action,omitempty"`

	// Args narrows trace_contains to invocations whose input contains
	// these fields. Subset match; extra input fields are ignored.
	Args map[string]any `yaml:"args,omitempty"`

	// Count is the exact number of invocations (trace_count).
	Count int `yaml:"count,omitempty"`

	// Actions is the expected relative order of first occurrences
	// (trace_order). Intervening actions are allowed.
	Actions []string `yaml:"actions,omitempty"`
}

const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
)

// LoadScenario reads and validates a scenario file. The rules directory
// is resolved relative to the scenario file. Unknown YAML fields are
// rejected, which catches typos like "assertion:" for "assertions:".
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var scenario Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if scenario.Rules != "" && !filepath.IsAbs(scenario.Rules) {
		scenario.Rules = filepath.Join(filepath.Dir(path), scenario.Rules)
	}

	if err := scenario.validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if s.Rules != "" {
		if _, err := os.Stat(s.Rules); err != nil {
			return fmt.Errorf("rules directory: %w", err)
		}
	}

	for i, step := range s.Steps {
		if step.Invoke == "" {
			return fmt.Errorf("steps[%d]: invoke is required", i)
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertTraceContains:
			if a.Action == "" {
				return fmt.Errorf("assertions[%d]: action is required for trace_contains", i)
			}
		case AssertTraceOrder:
			if len(a.Actions) < 2 {
				return fmt.Errorf("assertions[%d]: trace_order needs at least two actions", i)
			}
		case AssertTraceCount:
			if a.Action == "" {
				return fmt.Errorf("assertions[%d]: action is required for trace_count", i)
			}
			if a.Count < 0 {
				return fmt.Errorf("assertions[%d]: count must be non-negative", i)
			}
		case "":
			return fmt.Errorf("assertions[%d]: type is required", i)
		default:
			return fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
	}
	return nil
}
