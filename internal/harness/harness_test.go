package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/netir/internal/ir"
)

func runScenario(t *testing.T, path string) *Result {
	t.Helper()
	s, err := LoadScenario(path)
	require.NoError(t, err)
	result, err := Run(s)
	require.NoError(t, err)
	return result
}

func TestRun_Scenarios(t *testing.T) {
	files, err := FindScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		t.Run(path, func(t *testing.T) {
			result := runScenario(t, path)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_ValidGraphIsStored(t *testing.T) {
	result := runScenario(t, "testdata/scenarios/chain_planned.yaml")

	require.True(t, result.Valid)
	require.NotNil(t, result.NetDef())
	assert.Equal(t, ir.MustGraphID(result.NetDef()), result.GraphID)
	assert.Empty(t, result.Codes)
}

func TestRun_InvalidGraphHasNoID(t *testing.T) {
	result := runScenario(t, "testdata/scenarios/live_conflict.yaml")

	assert.False(t, result.Valid)
	assert.Empty(t, result.GraphID)
	assert.Nil(t, result.NetDef())
	require.Len(t, result.Violations, 2)
	assert.Equal(t, "relu1", result.Violations[0].Subject)
	assert.Equal(t, "pool1", result.Violations[1].Subject)
}

func TestRun_DocumentErrors(t *testing.T) {
	result := runScenario(t, "testdata/scenarios/bad_type.yaml")

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []string{"E102"}, result.Codes)
	assert.Empty(t, result.Ops)
}

func TestRun_ExpectMismatch(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/live_conflict.yaml")
	require.NoError(t, err)
	valid := true
	s.Expect = ExpectClause{Valid: &valid}

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "expected valid=true, got valid=false")
}

func TestRun_CodeMismatch(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/live_conflict.yaml")
	require.NoError(t, err)
	s.Expect.Codes = []string{"E221"}

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected codes [E221], got [E221 E221]")
}

func TestRun_PlanErrorAborts(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/live_conflict.yaml")
	require.NoError(t, err)
	memID := int32(42)
	s.Plan = []PlanStep{{Op: "relu1", MemID: &memID}}

	_, err = Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan[0]")
	assert.Contains(t, err.Error(), "mem_id 42 not in mem_arena")
}

func TestRun_UnknownOpInPlan(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/live_conflict.yaml")
	require.NoError(t, err)
	s.Plan[0].Op = "nope"

	_, err = Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no operator named "nope"`)
}
