package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	graph, err := os.ReadFile("testdata/graphs/chain.yaml")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chain.yaml"), graph, 0o644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/live_conflict.yaml")
	require.NoError(t, err)

	assert.Equal(t, "live_conflict", s.Name)
	assert.Equal(t, filepath.Join("testdata", "graphs", "chain.yaml"), s.Graph)
	require.Len(t, s.Plan, 1)
	assert.Equal(t, "relu1", s.Plan[0].Op)
	require.NotNil(t, s.Plan[0].MemID)
	assert.Equal(t, int32(5), *s.Plan[0].MemID)
	require.NotNil(t, s.Expect.Valid)
	assert.False(t, *s.Expect.Valid)
	assert.Equal(t, []string{"E221", "E221"}, s.Expect.Codes)
}

func TestLoadScenario_BlockStep(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/block_too_small.yaml")
	require.NoError(t, err)

	require.Len(t, s.Plan, 2)
	require.NotNil(t, s.Plan[0].Block)
	assert.Equal(t, BlockStep{MemID: 7, X: 4, Y: 4}, *s.Plan[0].Block)
}

func TestLoadScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing name",
			body:    "description: d\ngraph: chain.yaml\nexpect: {valid: true}\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			body:    "name: n\ngraph: chain.yaml\nexpect: {valid: true}\n",
			wantErr: "description is required",
		},
		{
			name:    "missing graph file",
			body:    "name: n\ndescription: d\ngraph: nope.yaml\nexpect: {valid: true}\n",
			wantErr: "graph file not found",
		},
		{
			name:    "missing expect.valid",
			body:    "name: n\ndescription: d\ngraph: chain.yaml\n",
			wantErr: "expect.valid is required",
		},
		{
			name:    "codes on valid graph",
			body:    "name: n\ndescription: d\ngraph: chain.yaml\nexpect: {valid: true, codes: [E201]}\n",
			wantErr: "codes given for a valid graph",
		},
		{
			name:    "unknown field",
			body:    "name: n\ndescription: d\ngraph: chain.yaml\nexpect: {valid: true}\nassertion: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "plan step without target",
			body:    "name: n\ndescription: d\ngraph: chain.yaml\nplan: [{clear: true}]\nexpect: {valid: true}\n",
			wantErr: "plan[0]: block or op is required",
		},
		{
			name:    "plan step without mem_id",
			body:    "name: n\ndescription: d\ngraph: chain.yaml\nplan: [{op: relu1}]\nexpect: {valid: true}\n",
			wantErr: "mem_id or clear is required",
		},
		{
			name:    "plan step with both",
			body:    "name: n\ndescription: d\ngraph: chain.yaml\nplan: [{op: relu1, mem_id: 5, clear: true}]\nexpect: {valid: true}\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "unknown assertion",
			body:    "name: n\ndescription: d\ngraph: chain.yaml\nexpect: {valid: true}\nassertions: [{type: trace_count}]\n",
			wantErr: `unknown assertion type "trace_count"`,
		},
		{
			name:    "live_range without end",
			body:    "name: n\ndescription: d\ngraph: chain.yaml\nexpect: {valid: true}\nassertions: [{type: live_range, output: c1, start: 0}]\n",
			wantErr: "output, start and end are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
