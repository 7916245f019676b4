package ir

import (
	"context"
	"fmt"
	"slices"
)

// NetBuilder assembles a graph. It is not safe for concurrent use; the
// loader and the memory planner each hold it exclusively, one after the
// other. Build freezes the result into a NetDef.
type NetBuilder struct {
	name        string
	version     string
	ops         []*OperatorDef
	args        []*Argument
	tensors     []TensorProto
	memArena    MemoryArena
	inputInfos  []InputInfo
	outputInfos []OutputInfo
	has         netPresence
}

// NewNetBuilder returns an empty builder.
func NewNetBuilder() *NetBuilder {
	return &NetBuilder{}
}

func (b *NetBuilder) SetName(name string) *NetBuilder {
	b.name = name
	b.has |= netHasName
	return b
}

func (b *NetBuilder) SetVersion(version string) *NetBuilder {
	b.version = version
	b.has |= netHasVersion
	return b
}

func (b *NetBuilder) HasName() bool     { return b.has&netHasName != 0 }
func (b *NetBuilder) HasVersion() bool  { return b.has&netHasVersion != 0 }
func (b *NetBuilder) HasMemArena() bool { return b.has&netHasMemArena != 0 }

// Name returns the graph name set so far (empty when unset).
func (b *NetBuilder) Name() string { return b.name }

// AddOp appends an empty operator and returns its handle. OpSize grows by
// exactly one and the handle refers to the last operator.
func (b *NetBuilder) AddOp() *OpBuilder {
	op := newOperatorDef()
	b.ops = append(b.ops, &op)
	return &OpBuilder{op: &op}
}

// OpSize returns the number of operators.
func (b *NetBuilder) OpSize() int { return len(b.ops) }

// Op returns a handle on operator idx or a *BoundsError.
func (b *NetBuilder) Op(idx int) (*OpBuilder, error) {
	if err := checkIndex("net", "op", idx, len(b.ops)); err != nil {
		return nil, err
	}
	return &OpBuilder{op: b.ops[idx]}, nil
}

// Ops returns handles on every operator, in order.
func (b *NetBuilder) Ops() []*OpBuilder {
	out := make([]*OpBuilder, len(b.ops))
	for i, op := range b.ops {
		out[i] = &OpBuilder{op: op}
	}
	return out
}

// RemoveOp deletes operator idx, shifting later operators down.
func (b *NetBuilder) RemoveOp(idx int) error {
	if err := checkIndex("net", "op", idx, len(b.ops)); err != nil {
		return err
	}
	b.ops = slices.Delete(b.ops, idx, idx+1)
	return nil
}

// AddArg appends an empty graph-level attribute and returns its handle.
func (b *NetBuilder) AddArg() *Argument {
	a := &Argument{}
	b.args = append(b.args, a)
	return a
}

// ArgSize returns the number of graph-level attributes.
func (b *NetBuilder) ArgSize() int { return len(b.args) }

// AddTensor appends a constant tensor.
func (b *NetBuilder) AddTensor(t TensorProto) *NetBuilder {
	b.tensors = append(b.tensors, t)
	return b
}

// Tensors returns the tensor table.
func (b *NetBuilder) Tensors() []TensorProto { return slices.Clone(b.tensors) }

// SetTensors replaces the tensor table.
func (b *NetBuilder) SetTensors(ts []TensorProto) *NetBuilder {
	b.tensors = slices.Clone(ts)
	return b
}

// MemArena returns the mutable arena and marks it present.
func (b *NetBuilder) MemArena() *MemoryArena {
	b.has |= netHasMemArena
	return &b.memArena
}

func (b *NetBuilder) AddInputInfo(info InputInfo) *NetBuilder {
	b.inputInfos = append(b.inputInfos, info)
	return b
}

func (b *NetBuilder) AddOutputInfo(info OutputInfo) *NetBuilder {
	b.outputInfos = append(b.outputInfos, info)
	return b
}

func (b *NetBuilder) view() graphView {
	return graphView{
		ops:         b.ops,
		tensors:     b.tensors,
		arena:       &b.memArena,
		hasArena:    b.HasMemArena(),
		inputInfos:  b.inputInfos,
		outputInfos: b.outputInfos,
	}
}

// Validate runs the graph-level validation pass and returns every
// violation found. It returns nil for a valid graph.
func (b *NetBuilder) Validate() ValidationErrors {
	return validate(b.view())
}

// LiveRanges reports the producer-to-last-consumer span of every operator
// output, in operator order.
func (b *NetBuilder) LiveRanges() []LiveRange {
	return liveRanges(b.view())
}

// ApplyPlan runs a single memory-planning pass. The planner may only add
// arena blocks and assign operator mem_ids.
func (b *NetBuilder) ApplyPlan(ctx context.Context, p Planner) error {
	v := &PlanningView{b: b}
	defer v.close()
	if err := p.Plan(ctx, v); err != nil {
		return fmt.Errorf("memory plan: %w", err)
	}
	return nil
}

// Build validates the graph and returns a frozen deep copy. Tensor bytes
// are shared with the builder, never copied. On any violation Build
// returns ValidationErrors and no graph.
func (b *NetBuilder) Build() (*NetDef, error) {
	if errs := b.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return b.freeze(), nil
}

func (b *NetBuilder) freeze() *NetDef {
	n := &NetDef{
		name:        b.name,
		version:     b.version,
		ops:         make([]OperatorDef, len(b.ops)),
		args:        cloneArgPtrs(b.args),
		tensors:     slices.Clone(b.tensors),
		memArena:    b.memArena.clone(),
		inputInfos:  slices.Clone(b.inputInfos),
		outputInfos: slices.Clone(b.outputInfos),
		has:         b.has,
		tensorIndex: make(map[string]int, len(b.tensors)),
		opIndex:     make(map[string]int, len(b.ops)),
	}
	for i, op := range b.ops {
		n.ops[i] = op.Clone()
		if op.HasName() {
			n.opIndex[op.name] = i
		}
	}
	for i, t := range n.tensors {
		n.tensorIndex[t.name] = i
	}
	return n
}
