package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/netir/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes the graph's operators to help debug the failure.
type AssertionError struct {
	Type     string      // Assertion type for categorization
	Expected string      // Human-readable expected outcome
	Actual   string      // Human-readable actual outcome
	Ops      []OpSummary // Operators after planning, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Ops) > 0 {
		fmt.Fprintf(&buf, "\nOperators:\n")
		for _, op := range e.Ops {
			fmt.Fprintf(&buf, "  [%d] %s (%s) mem_id=%d\n", op.Index, op.Name, op.Type, op.MemID)
		}
	}

	return buf.String()
}

func assertOpCount(r *Result, a Assertion) error {
	if len(r.Ops) != a.Count {
		return &AssertionError{
			Type:     AssertOpCount,
			Expected: fmt.Sprintf("%d operators", a.Count),
			Actual:   fmt.Sprintf("%d operators", len(r.Ops)),
			Ops:      r.Ops,
		}
	}
	return nil
}

func assertLiveRange(r *Result, a Assertion) error {
	for _, lr := range r.LiveRanges {
		if lr.Output != a.Output {
			continue
		}
		if lr.Start == *a.Start && lr.End == *a.End {
			return nil
		}
		return &AssertionError{
			Type:     AssertLiveRange,
			Expected: fmt.Sprintf("%s live over [%d, %d]", a.Output, *a.Start, *a.End),
			Actual:   fmt.Sprintf("live over [%d, %d]", lr.Start, lr.End),
			Ops:      r.Ops,
		}
	}
	return &AssertionError{
		Type:     AssertLiveRange,
		Expected: fmt.Sprintf("%s live over [%d, %d]", a.Output, *a.Start, *a.End),
		Actual:   "no operator produces " + a.Output,
		Ops:      r.Ops,
	}
}

func assertExtent(r *Result, a Assertion) error {
	fail := func(actual string) error {
		return &AssertionError{
			Type:     AssertExtent,
			Expected: fmt.Sprintf("%s needs %dx%d", a.Op, a.X, a.Y),
			Actual:   actual,
			Ops:      r.Ops,
		}
	}
	if r.b == nil {
		return fail("graph did not load")
	}
	for _, ob := range r.b.Ops() {
		op := ob.View()
		if name, _ := op.Name(); name != a.Op {
			continue
		}
		shape, ok := op.OutputShapeAt(0)
		if !ok {
			return fail("operator has no output shape")
		}
		got, ok := ir.RequiredExtent(shape)
		if !ok {
			return fail(fmt.Sprintf("shape %s has no extent", shape))
		}
		if got != (ir.Extent{X: a.X, Y: a.Y}) {
			return fail("needs " + got.String())
		}
		return nil
	}
	return fail("operator not found")
}

func assertAliases(r *Result, a Assertion) error {
	fail := func(actual string) error {
		return &AssertionError{
			Type:     AssertAliases,
			Expected: fmt.Sprintf("mem_id %d shared by %v", *a.MemID, a.Ops),
			Actual:   actual,
			Ops:      r.Ops,
		}
	}
	plan, err := resolved(r)
	if err != nil {
		return fail(err.Error())
	}

	var got []string
	for _, ref := range plan.Aliases(*a.MemID) {
		got = append(got, r.Ops[ref.OpIndex].Name)
	}
	got = slices.Compact(got)
	if !slices.Equal(got, a.Ops) {
		return fail(fmt.Sprintf("shared by %v", got))
	}
	return nil
}

func assertInputSource(r *Result, a Assertion) error {
	fail := func(actual string) error {
		return &AssertionError{
			Type:     AssertInputSource,
			Expected: fmt.Sprintf("%s input %d from %s %q", a.Op, a.Index, a.Kind, a.From),
			Actual:   actual,
			Ops:      r.Ops,
		}
	}
	plan, err := resolved(r)
	if err != nil {
		return fail(err.Error())
	}
	idx, ok := r.net.OpByName(a.Op)
	if !ok {
		return fail("operator not found")
	}
	ref, err := plan.Input(idx, a.Index)
	if err != nil {
		return fail(err.Error())
	}

	from := ref.Name
	if ref.Kind == ir.SourceProducer {
		from = r.Ops[ref.OpIndex].Name
	}
	if ref.Kind.String() != a.Kind || from != a.From {
		return fail(fmt.Sprintf("from %s %q", ref.Kind, from))
	}
	return nil
}

func resolved(r *Result) (*ir.BufferPlan, error) {
	if r.net == nil {
		return nil, fmt.Errorf("graph is not valid")
	}
	return r.net.Resolve()
}

// EvaluateAssertions runs every assertion against the result and returns
// the failure messages in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertOpCount:
			err = assertOpCount(result, a)
		case AssertLiveRange:
			err = assertLiveRange(result, a)
		case AssertExtent:
			err = assertExtent(result, a)
		case AssertAliases:
			err = assertAliases(result, a)
		case AssertInputSource:
			err = assertInputSource(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errors = append(errors, fmt.Sprintf("assertions[%d]: %s", i, err))
		}
	}
	return errors
}
