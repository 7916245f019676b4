package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/netir/internal/ir"
)

// Snapshot captures the deterministic part of a scenario result.
// The graph ID is left out so that snapshots survive hash-domain changes.
type Snapshot struct {
	ScenarioName string
	Valid        bool
	Codes        []string
	Ops          []OpSummary
	LiveRanges   []ir.LiveRange
}

// canonical converts a Snapshot into a canonical JSON value.
func (s *Snapshot) canonical() ir.CanonObject {
	codes := make(ir.CanonArray, len(s.Codes))
	for i, c := range s.Codes {
		codes[i] = ir.CanonString(c)
	}
	ops := make(ir.CanonArray, len(s.Ops))
	for i, op := range s.Ops {
		ops[i] = ir.CanonObject{
			"name":   ir.CanonString(op.Name),
			"type":   ir.CanonString(op.Type),
			"mem_id": ir.CanonInt(op.MemID),
		}
	}
	ranges := make(ir.CanonArray, len(s.LiveRanges))
	for i, lr := range s.LiveRanges {
		ranges[i] = ir.CanonObject{
			"output": ir.CanonString(lr.Output),
			"start":  ir.CanonInt(lr.Start),
			"end":    ir.CanonInt(lr.End),
		}
	}
	return ir.CanonObject{
		"scenario_name": ir.CanonString(s.ScenarioName),
		"valid":         ir.CanonBool(s.Valid),
		"codes":         codes,
		"ops":           ops,
		"live_ranges":   ranges,
	}
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := SnapshotJSON(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}

// SnapshotJSON renders the golden snapshot of a result as canonical JSON.
func SnapshotJSON(scenarioName string, result *Result) ([]byte, error) {
	snapshot := Snapshot{
		ScenarioName: scenarioName,
		Valid:        result.Valid,
		Codes:        result.Codes,
		Ops:          result.Ops,
		LiveRanges:   result.LiveRanges,
	}
	return ir.MarshalCanonical(snapshot.canonical())
}
