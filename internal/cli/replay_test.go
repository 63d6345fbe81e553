package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplay_ReportsMatchingFrames(t *testing.T) {
	db := runScenarioToDB(t)

	out, _, err := execute(t, "replay", "--db", db,
		"--flow", "test-flow-default", "--rules", "testdata/rules")
	require.NoError(t, err)
	assert.Contains(t, out, "Flow: test-flow-default (2 records, last seq 4)")
	assert.Contains(t, out, "log-increment {total=5}")
}

func TestReplay_JSON(t *testing.T) {
	db := runScenarioToDB(t)

	out, _, err := execute(t, "--format", "json", "replay", "--db", db,
		"--flow", "test-flow-default", "--rules", "testdata/rules")
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(2), data["records"])

	frames := data["frames"].([]any)
	require.Len(t, frames, 1)
	frame := frames[0].(map[string]any)
	assert.Equal(t, "log-increment", frame["rule"])
	assert.Equal(t, map[string]any{"total": float64(5)}, frame["bindings"])
	assert.Len(t, frame["causes"].([]any), 1)
}

func TestReplay_UnknownFlow(t *testing.T) {
	db := runScenarioToDB(t)

	_, _, err := execute(t, "replay", "--db", db,
		"--flow", "no-such-flow", "--rules", "testdata/rules")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no records")
}

func TestReplay_BadRules(t *testing.T) {
	db := runScenarioToDB(t)

	_, _, err := execute(t, "replay", "--db", db,
		"--flow", "test-flow-default", "--rules", "testdata/badrules")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
