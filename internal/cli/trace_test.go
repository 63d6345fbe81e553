package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runScenarioToDB executes the testdata scenario with a trace database
// and returns the database path.
func runScenarioToDB(t *testing.T) string {
	t.Helper()

	db := filepath.Join(t.TempDir(), "trace.db")
	_, _, err := execute(t, "run", "testdata/scenario.yaml", "--db", db)
	require.NoError(t, err)
	return db
}

func TestTrace_ListsFlows(t *testing.T) {
	db := runScenarioToDB(t)

	out, _, err := execute(t, "trace", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "test-flow-default")
}

func TestTrace_Flow(t *testing.T) {
	db := runScenarioToDB(t)

	out, _, err := execute(t, "trace", "--db", db, "--flow", "test-flow-default")
	require.NoError(t, err)
	assert.Contains(t, out, "Flow: test-flow-default")
	assert.Contains(t, out, "Counter.increment {by=5}")
	assert.Contains(t, out, "Logger.record {value=5}")
	assert.Contains(t, out, "{total=5}")
	assert.Contains(t, out, "{count=1}")
}

func TestTrace_ActionFilter(t *testing.T) {
	db := runScenarioToDB(t)

	out, _, err := execute(t, "trace", "--db", db, "--flow", "test-flow-default",
		"--action", "Logger.record")
	require.NoError(t, err)
	assert.Contains(t, out, "Logger.record")
	assert.NotContains(t, out, "Counter.increment")
}

func TestTrace_JSON(t *testing.T) {
	db := runScenarioToDB(t)

	out, _, err := execute(t, "--format", "json", "trace", "--db", db,
		"--flow", "test-flow-default")
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	records := data["records"].([]any)
	require.Len(t, records, 2)
	first := records[0].(map[string]any)
	assert.Equal(t, "Counter.increment", first["action"])
	assert.Equal(t, float64(1), first["seq"])
	assert.NotNil(t, first["output"])
}

func TestTrace_UnknownFlow(t *testing.T) {
	db := runScenarioToDB(t)

	out, _, err := execute(t, "trace", "--db", db, "--flow", "no-such-flow")
	require.NoError(t, err)
	assert.Contains(t, out, "No records for flow no-such-flow")
}

func TestTrace_RequiresDB(t *testing.T) {
	_, _, err := execute(t, "trace", "--flow", "f")
	require.Error(t, err)
}
