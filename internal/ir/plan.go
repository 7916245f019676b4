package ir

import (
	"context"
	"errors"
	"fmt"
)

// Planner fills a graph's memory arena and stamps operator mem_ids.
// The allocation strategy is the planner's own; ir only defines what it
// may write and validates the result in Build.
type Planner interface {
	Plan(ctx context.Context, v *PlanningView) error
}

// PlannerFunc adapts a function to the Planner interface.
type PlannerFunc func(ctx context.Context, v *PlanningView) error

// Plan calls f(ctx, v).
func (f PlannerFunc) Plan(ctx context.Context, v *PlanningView) error { return f(ctx, v) }

// ErrPlanClosed is returned by PlanningView writes after the planning pass
// that created the view has returned.
var ErrPlanClosed = errors.New("planning view used after plan completed")

// PlanningView is the planner's window onto a NetBuilder: operators and
// tensors are read-only, and the only writes are arena blocks and operator
// mem_ids. A view is valid only for the duration of one ApplyPlan call.
type PlanningView struct {
	b      *NetBuilder
	closed bool
}

func (v *PlanningView) close() { v.closed = true }

// OpSize returns the number of operators.
func (v *PlanningView) OpSize() int { return len(v.b.ops) }

// Op returns a read-only view of operator idx or a *BoundsError.
func (v *PlanningView) Op(idx int) (*OperatorDef, error) {
	if err := checkIndex("net", "op", idx, len(v.b.ops)); err != nil {
		return nil, err
	}
	return v.b.ops[idx], nil
}

// Tensors returns the constant tensor table.
func (v *PlanningView) Tensors() []TensorProto { return v.b.Tensors() }

// LiveRanges reports operator output lifetimes for the planner's analysis.
func (v *PlanningView) LiveRanges() []LiveRange { return v.b.LiveRanges() }

// Blocks returns the arena blocks added so far.
func (v *PlanningView) Blocks() []MemoryBlock { return v.b.memArena.Blocks() }

// AddBlock appends a block to the arena and marks the arena present.
func (v *PlanningView) AddBlock(block MemoryBlock) error {
	if v.closed {
		return ErrPlanClosed
	}
	if _, dup := v.b.memArena.Block(block.memID); dup {
		return fmt.Errorf("mem_arena: block %d already exists", block.memID)
	}
	v.b.MemArena().AddBlock(block)
	return nil
}

// AssignMemID aliases operator opIdx's output onto arena block memID. The
// block must already exist.
func (v *PlanningView) AssignMemID(opIdx int, memID int32) error {
	if v.closed {
		return ErrPlanClosed
	}
	if err := checkIndex("net", "op", opIdx, len(v.b.ops)); err != nil {
		return err
	}
	if _, ok := v.b.memArena.Block(memID); !ok {
		return fmt.Errorf("%s: mem_id %d not in mem_arena", v.b.ops[opIdx].entity(), memID)
	}
	(&OpBuilder{op: v.b.ops[opIdx]}).SetMemID(memID)
	return nil
}

// ClearMemID returns operator opIdx to a private output buffer.
func (v *PlanningView) ClearMemID(opIdx int) error {
	if v.closed {
		return ErrPlanClosed
	}
	if err := checkIndex("net", "op", opIdx, len(v.b.ops)); err != nil {
		return err
	}
	(&OpBuilder{op: v.b.ops[opIdx]}).ClearMemID()
	return nil
}
