package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenarioFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join("testdata", "scenarios", "log-increment.yaml")
	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "log-increment", scenario.Name)
	assert.Equal(t, filepath.Join("testdata", "rules", "log"), scenario.Rules)
	require.Len(t, scenario.Steps, 1)
	assert.Equal(t, "Counter.increment", scenario.Steps[0].Invoke)
	assert.Equal(t, map[string]any{"by": 5}, scenario.Steps[0].Args)
	assert.Len(t, scenario.Assertions, 3)
}

func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	path := writeScenarioFile(t, `
name: typo
steps:
  - invoke: Counter.increment
assertion:
  - type: trace_count
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assertion")
}

func TestLoadScenario_Validation(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "missing name",
			src:  "steps:\n  - invoke: Counter.increment\n",
			want: "name is required",
		},
		{
			name: "no steps",
			src:  "name: empty\n",
			want: "steps",
		},
		{
			name: "step without invoke",
			src:  "name: s\nsteps:\n  - args: {by: 1}\n",
			want: "invoke is required",
		},
		{
			name: "unknown assertion type",
			src:  "name: s\nsteps:\n  - invoke: A.a\nassertions:\n  - type: trace_magic\n",
			want: "unknown assertion type",
		},
		{
			name: "trace_order too short",
			src:  "name: s\nsteps:\n  - invoke: A.a\nassertions:\n  - type: trace_order\n    actions: [A.a]\n",
			want: "at least two actions",
		},
		{
			name: "missing rules directory",
			src:  "name: s\nrules: no-such-dir\nsteps:\n  - invoke: A.a\n",
			want: "rules directory",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenarioFile(t, tc.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
