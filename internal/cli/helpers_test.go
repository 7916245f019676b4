package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/netir/internal/compiler"
	"github.com/roach88/netir/internal/ir"
)

var (
	chainGraph    = filepath.Join("testdata", "chain.yaml")
	danglingGraph = filepath.Join("testdata", "dangling.yaml")
	brokenGraph   = filepath.Join("testdata", "broken.yaml")
	scenariosDir  = filepath.Join("..", "harness", "testdata", "scenarios")
	goldenDir     = filepath.Join("..", "harness", "testdata", "golden")
)

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// tempDB returns a store path inside a per-test directory.
func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "graphs.db")
}

func loadChain(t *testing.T) *ir.NetDef {
	t.Helper()
	b, err := compiler.LoadFile(chainGraph)
	require.NoError(t, err)
	net, err := b.Build()
	require.NoError(t, err)
	return net
}
