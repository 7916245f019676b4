package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/netir/internal/compiler"
	"github.com/roach88/netir/internal/ir"
	"github.com/roach88/netir/internal/store"
	"github.com/roach88/netir/internal/testutil"
)

// Harness is the scenario execution engine.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load the graph source into a builder
// 2. Apply the scenario's plan steps in one planning pass
// 3. Validate and compare against expect
// 4. Freeze, store and read back a valid graph
// 5. Evaluate assertions
//
// An error is returned only when the scenario cannot run at all. Graph
// validation failures are reported in the result.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:", store.WithIDGenerator(testutil.NewSequentialIDGenerator("import")))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	result := NewResult()

	b, err := compiler.LoadFile(scenario.Graph)
	if err != nil {
		// Document-level violations are a validation outcome, not a harness failure
		errs, ok := ir.AsValidationErrors(err)
		if !ok {
			return nil, fmt.Errorf("load graph %s: %w", scenario.Graph, err)
		}
		h.recordViolations(result, errs)
		h.checkExpect(scenario, result)
		return result, nil
	}

	if len(scenario.Plan) > 0 {
		if err := b.ApplyPlan(ctx, planSteps(scenario.Plan)); err != nil {
			return nil, err
		}
	}

	result.b = b
	result.Ops = summarizeOps(b)
	result.LiveRanges = b.LiveRanges()

	net, err := b.Build()
	if errs, ok := ir.AsValidationErrors(err); ok {
		h.recordViolations(result, errs)
	} else if err != nil {
		return nil, err
	} else {
		result.Valid = true
		rec, err := h.store.Import(ctx, net, scenario.Graph)
		if err != nil {
			return nil, err
		}
		stored, err := h.store.ReadNetDef(ctx, rec.GraphID)
		if err != nil {
			return nil, err
		}
		result.GraphID = rec.GraphID
		result.net = stored
		h.logger.Debug("scenario graph stored", "scenario", scenario.Name, "id", rec.GraphID)
	}

	h.checkExpect(scenario, result)
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) recordViolations(result *Result, errs ir.ValidationErrors) {
	result.Valid = false
	result.Violations = errs
	result.Codes = errs.Codes()
	for _, e := range errs {
		h.logger.Debug("violation", "code", e.Code, "field", e.Field, "subject", e.Subject)
	}
}

func (h *Harness) checkExpect(scenario *Scenario, result *Result) {
	want := *scenario.Expect.Valid
	if result.Valid != want {
		msg := fmt.Sprintf("expected valid=%t, got valid=%t", want, result.Valid)
		if len(result.Violations) > 0 {
			msg += ": " + result.Violations.Error()
		}
		result.AddError(msg)
		return
	}
	if len(scenario.Expect.Codes) > 0 && !slices.Equal(scenario.Expect.Codes, result.Codes) {
		result.AddError(fmt.Sprintf("expected codes %v, got %v", scenario.Expect.Codes, result.Codes))
	}
}

// planSteps turns scenario plan steps into a planner.
func planSteps(steps []PlanStep) ir.Planner {
	return ir.PlannerFunc(func(_ context.Context, v *ir.PlanningView) error {
		for i, step := range steps {
			if step.Block != nil {
				if err := v.AddBlock(ir.NewMemoryBlock(step.Block.MemID, step.Block.X, step.Block.Y)); err != nil {
					return fmt.Errorf("plan[%d]: %w", i, err)
				}
				continue
			}
			idx, err := opIndex(v, step.Op)
			if err != nil {
				return fmt.Errorf("plan[%d]: %w", i, err)
			}
			if step.Clear {
				err = v.ClearMemID(idx)
			} else {
				err = v.AssignMemID(idx, *step.MemID)
			}
			if err != nil {
				return fmt.Errorf("plan[%d]: %w", i, err)
			}
		}
		return nil
	})
}

func opIndex(v *ir.PlanningView, name string) (int, error) {
	for i := 0; i < v.OpSize(); i++ {
		op, err := v.Op(i)
		if err != nil {
			return 0, err
		}
		if n, err := op.Name(); err == nil && n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no operator named %q", name)
}

func summarizeOps(b *ir.NetBuilder) []OpSummary {
	ops := b.Ops()
	out := make([]OpSummary, len(ops))
	for i, ob := range ops {
		op := ob.View()
		s := OpSummary{Index: i, MemID: ir.MemIDUnassigned}
		s.Name, _ = op.Name()
		s.Type, _ = op.Type()
		if id, err := op.MemID(); err == nil {
			s.MemID = id
		}
		out[i] = s
	}
	return out
}
