package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukehollis/sync-physics/internal/ir"
)

func loadTestdataScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", name))
	require.NoError(t, err)
	return scenario
}

func TestScenarioLogIncrement(t *testing.T) {
	scenario := loadTestdataScenario(t, "log-increment.yaml")

	result, env := RunGolden(t, scenario)
	require.True(t, result.Pass, "assertion failures: %v", result.Errors)

	require.Len(t, result.Outputs, 1)
	assert.Equal(t, ir.IRObject{"total": ir.IRInt(5)}, result.Outputs[0])

	assert.Equal(t, int64(5), env.Counter.Total())
	assert.Equal(t, []ir.IRValue{ir.IRInt(5)}, env.Logger.Entries())
}

func TestScenarioThreshold(t *testing.T) {
	scenario := loadTestdataScenario(t, "threshold.yaml")

	result, env := RunGolden(t, scenario)
	require.True(t, result.Pass, "assertion failures: %v", result.Errors)

	assert.Equal(t, int64(8), env.Counter.Total())
	assert.Equal(t, []ir.IRValue{ir.IRInt(8)}, env.Logger.Entries())
}

func TestScenarioPhysics(t *testing.T) {
	scenario := loadTestdataScenario(t, "physics.yaml")

	result, env := RunGolden(t, scenario)
	require.True(t, result.Pass, "assertion failures: %v", result.Errors)

	require.Len(t, result.Outputs, 2)
	assert.Equal(t, ir.IRObject{"x": ir.IRFloat(0.75), "v": ir.IRFloat(1.0)}, result.Outputs[1])
	assert.Equal(t, []ir.IRValue{ir.IRFloat(0.25), ir.IRFloat(0.75)}, env.Logger.Entries())
}

func TestRunWithoutRules(t *testing.T) {
	result, env, err := Run(&Scenario{
		Name: "no-rules",
		Steps: []Step{
			{Invoke: "Counter.increment", Args: map[string]any{"by": 2}},
		},
		Assertions: []Assertion{
			{Type: AssertTraceCount, Action: "Logger.record", Count: 0},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Len(t, result.Trace, 2)
	assert.Equal(t, int64(2), env.Counter.Total())
	assert.Empty(t, env.Logger.Entries())
}

func TestRunReportsStepErrors(t *testing.T) {
	_, _, err := Run(&Scenario{
		Name: "bad-step",
		Steps: []Step{
			{Invoke: "Counter.increment", Args: map[string]any{"by": "three"}},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps[0]")
}

func TestRunExplicitFlowToken(t *testing.T) {
	result, _, err := Run(&Scenario{
		Name: "pinned-flow",
		Steps: []Step{
			{Invoke: "Counter.increment", Args: map[string]any{"by": 1}, Flow: "flow-a"},
			{Invoke: "Counter.increment", Args: map[string]any{"by": 1}, Flow: "flow-b"},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Trace, 4)
	assert.Equal(t, "flow-a", result.Trace[0].Flow)
	assert.Equal(t, "flow-b", result.Trace[2].Flow)
}

func TestRunIsDeterministic(t *testing.T) {
	scenario := loadTestdataScenario(t, "log-increment.yaml")

	first, _, err := Run(scenario)
	require.NoError(t, err)
	second, _, err := Run(scenario)
	require.NoError(t, err)

	a, err := snapshot(scenario, first.Trace)
	require.NoError(t, err)
	b, err := snapshot(scenario, second.Trace)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
