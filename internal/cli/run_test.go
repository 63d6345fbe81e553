package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Pass(t *testing.T) {
	out, _, err := execute(t, "run", "testdata/scenario.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Scenario: cli-log-increment")
	assert.Contains(t, out, "PASS (4 events)")
}

func TestRun_VerboseTrace(t *testing.T) {
	out, _, err := execute(t, "--verbose", "run", "testdata/scenario.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "-> Counter.increment {by=5}")
	assert.Contains(t, out, "<- Logger.record {count=1}")
}

func TestRun_FailingAssertions(t *testing.T) {
	out, errOut, err := execute(t, "run", "testdata/failing.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, errOut, "trace_count")
}

func TestRun_JSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "run", "testdata/scenario.yaml")
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]any)
	assert.Equal(t, true, data["pass"])
	assert.Equal(t, "cli-log-increment", data["scenario"])
	trace := data["trace"].([]any)
	assert.Len(t, trace, 4)
	first := trace[0].(map[string]any)
	assert.Equal(t, "invoke", first["kind"])
	assert.Equal(t, "Counter.increment", first["action"])
}

func TestRun_PersistsTrace(t *testing.T) {
	db := filepath.Join(t.TempDir(), "trace.db")
	_, _, err := execute(t, "run", "testdata/scenario.yaml", "--db", db)
	require.NoError(t, err)

	info, err := os.Stat(db)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRun_MissingScenario(t *testing.T) {
	_, _, err := execute(t, "run", "testdata/no-such-scenario.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
