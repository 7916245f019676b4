package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/netir/internal/ir"
)

func TestInspectText(t *testing.T) {
	output, err := execute(t, "--db", tempDB(t), "inspect", chainGraph)
	require.NoError(t, err)

	assert.Contains(t, output, "Graph "+ir.MustGraphID(loadChain(t)))
	assert.Contains(t, output, `"chain" version 1.0`)
	assert.Contains(t, output, "Device: opencl")
	assert.Contains(t, output, "conv1")
	assert.Contains(t, output, "in,bias")
	assert.Contains(t, output, "8x4")
	assert.Contains(t, output, "conv1,pool1")
}

func TestInspectReport(t *testing.T) {
	report, err := buildInspectReport(loadChain(t))
	require.NoError(t, err)

	require.Len(t, report.Ops, 3)
	assert.Equal(t, "conv1", report.Ops[0].Name)
	assert.Equal(t, int32(5), report.Ops[0].MemID)
	assert.Equal(t, "8x4", report.Ops[0].Extent)
	assert.Equal(t, ir.MemIDUnassigned, report.Ops[1].MemID)

	require.Len(t, report.Inputs, 1)
	assert.Equal(t, "in", report.Inputs[0].Name)
	require.Len(t, report.Outputs, 1)
	assert.Equal(t, "out", report.Outputs[0].Name)

	require.Len(t, report.Tensors, 1)
	assert.Equal(t, "bias", report.Tensors[0].Name)
	assert.NotEmpty(t, report.Tensors[0].Digest)

	require.Len(t, report.LiveRanges, 3)
	assert.Equal(t, "out", report.LiveRanges[2].Output)
	assert.Equal(t, 3, report.LiveRanges[2].End)

	require.Len(t, report.Blocks, 1)
	assert.Equal(t, int32(5), report.Blocks[0].MemID)
	assert.Equal(t, uint32(8), report.Blocks[0].X)
	assert.Equal(t, uint32(4), report.Blocks[0].Y)
	assert.Equal(t, []string{"conv1", "pool1"}, report.Blocks[0].Ops)
}

func TestInspectJSON(t *testing.T) {
	output, err := execute(t, "--db", tempDB(t), "--format", "json", "inspect", chainGraph)
	require.NoError(t, err)

	var resp struct {
		Status  string        `json:"status"`
		GraphID string        `json:"graph_id"`
		Data    InspectReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, resp.GraphID, resp.Data.GraphID)
	assert.Len(t, resp.Data.Ops, 3)
}

func TestInspectStoredGraph(t *testing.T) {
	db := tempDB(t)
	_, err := execute(t, "--db", db, "import", chainGraph)
	require.NoError(t, err)

	id := ir.MustGraphID(loadChain(t))
	output, err := execute(t, "--db", db, "inspect", id[:10])
	require.NoError(t, err)
	assert.Contains(t, output, "Graph "+id)
}

func TestInspectInvalidGraph(t *testing.T) {
	output, err := execute(t, "--db", tempDB(t), "inspect", danglingGraph)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, "E201")
}

func TestInspectUnknownID(t *testing.T) {
	output, err := execute(t, "--db", tempDB(t), "inspect", "0123456789")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, output, "E005")
}
