package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/lukehollis/sync-physics/internal/ir"
)

// snapshot renders a run as a single canonical JSON document. Canonical
// serialization keeps golden files byte-stable across runs and
// platforms.
func snapshot(scenario *Scenario, trace []TraceEvent) ([]byte, error) {
	events := make(ir.IRArray, len(trace))
	for i, ev := range trace {
		obj := ir.IRObject{
			"kind":   ir.IRString(ev.Kind),
			"action": ir.IRString(string(ev.Action)),
			"flow":   ir.IRString(ev.Flow),
			"seq":    ir.IRInt(ev.Seq),
			"input":  ev.Input,
		}
		if ev.Output != nil {
			obj["output"] = ev.Output
		}
		events[i] = obj
	}

	doc := ir.IRObject{
		"scenario": ir.IRString(scenario.Name),
		"trace":    events,
	}
	return ir.MarshalCanonical(doc)
}

// RunGolden executes a scenario, fails the test on assertion errors, and
// compares the canonical trace against testdata/golden/<name>.golden.
// Regenerate golden files with go test -update.
func RunGolden(t *testing.T, scenario *Scenario) (*Result, *Env) {
	t.Helper()

	result, env, err := Run(scenario)
	if err != nil {
		t.Fatalf("run scenario %s: %v", scenario.Name, err)
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}

	data, err := snapshot(scenario, result.Trace)
	if err != nil {
		t.Fatalf("snapshot scenario %s: %v", scenario.Name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, env
}
