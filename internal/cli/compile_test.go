package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/netir/internal/ir"
)

func TestCompileToStdout(t *testing.T) {
	output, err := execute(t, "compile", chainGraph)
	require.NoError(t, err)

	want, err := json.Marshal(loadChain(t))
	require.NoError(t, err)

	var got bytes.Buffer
	require.NoError(t, json.Compact(&got, []byte(output)))
	assert.Equal(t, string(want), got.String())
}

func TestCompileToFileRoundTrips(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "chain.json")

	output, err := execute(t, "compile", chainGraph, "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, output, "✓ Compiled "+chainGraph+": 3 op(s), 1 tensor(s)")
	assert.Contains(t, output, "Wrote graph")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	b, err := ir.DecodeJSON(data)
	require.NoError(t, err)
	decoded, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, ir.MustGraphID(loadChain(t)), ir.MustGraphID(decoded))
}

func TestCompileCanonical(t *testing.T) {
	output, err := execute(t, "compile", "--canonical", chainGraph)
	require.NoError(t, err)

	want, err := ir.CanonicalJSON(loadChain(t))
	require.NoError(t, err)
	assert.Equal(t, string(want)+"\n", output)
}

func TestCompileJSONEmbedsGraph(t *testing.T) {
	output, err := execute(t, "--format", "json", "compile", chainGraph)
	require.NoError(t, err)

	var resp struct {
		Status  string            `json:"status"`
		GraphID string            `json:"graph_id"`
		Data    CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, ir.MustGraphID(loadChain(t)), resp.GraphID)
	assert.Equal(t, resp.GraphID, resp.Data.GraphID)
	assert.Equal(t, "chain", resp.Data.Name)
	assert.Equal(t, 3, resp.Data.Ops)
	assert.Equal(t, 1, resp.Data.Tensors)
	assert.NotEmpty(t, resp.Data.Graph)
}

func TestCompileInvalidGraph(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.json")

	output, err := execute(t, "compile", danglingGraph, "-o", outPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, "E201")

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr), "no output for an invalid graph")
}

func TestCompileUnparseableGraph(t *testing.T) {
	output, err := execute(t, "compile", brokenGraph)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, strings.HasPrefix(output, "Error [E004]"), output)
}

func TestCompileUnwritableOutput(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "missing", "dir", "out.json")

	output, err := execute(t, "compile", chainGraph, "-o", outPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, output, "E007")
}
