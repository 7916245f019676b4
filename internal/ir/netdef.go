package ir

import (
	"iter"
	"slices"
)

type netPresence uint8

const (
	netHasName netPresence = 1 << iota
	netHasVersion
	netHasMemArena
)

// NetDef is a frozen graph. It exposes no mutating operations and may be
// read concurrently by any number of goroutines. Use Builder to derive a
// modified copy.
type NetDef struct {
	name        string
	version     string
	ops         []OperatorDef
	args        []*Argument
	tensors     []TensorProto
	memArena    MemoryArena
	inputInfos  []InputInfo
	outputInfos []OutputInfo
	has         netPresence

	tensorIndex map[string]int
	opIndex     map[string]int
}

func (n *NetDef) HasName() bool     { return n.has&netHasName != 0 }
func (n *NetDef) HasVersion() bool  { return n.has&netHasVersion != 0 }
func (n *NetDef) HasMemArena() bool { return n.has&netHasMemArena != 0 }

// Name returns the graph name or a *PresenceError.
func (n *NetDef) Name() (string, error) {
	if !n.HasName() {
		return "", &PresenceError{Entity: "net", Field: "name"}
	}
	return n.name, nil
}

// Version returns the graph version or a *PresenceError.
func (n *NetDef) Version() (string, error) {
	if !n.HasVersion() {
		return "", &PresenceError{Entity: "net", Field: "version"}
	}
	return n.version, nil
}

// MemArena returns a copy of the memory arena or a *PresenceError when the
// graph was never planned.
func (n *NetDef) MemArena() (MemoryArena, error) {
	if !n.HasMemArena() {
		return MemoryArena{}, &PresenceError{Entity: "net", Field: "mem_arena"}
	}
	return n.memArena.clone(), nil
}

// MemBlock looks up an arena block by mem_id without copying the arena.
func (n *NetDef) MemBlock(memID int32) (MemoryBlock, bool) {
	return n.memArena.Block(memID)
}

// OpSize returns the number of operators.
func (n *NetDef) OpSize() int { return len(n.ops) }

// Op returns operator idx or a *BoundsError. The returned view must not be
// retained past the NetDef's lifetime; it has no mutating methods.
func (n *NetDef) Op(idx int) (*OperatorDef, error) {
	if err := checkIndex("net", "op", idx, len(n.ops)); err != nil {
		return nil, err
	}
	return &n.ops[idx], nil
}

// Ops iterates operators in execution order.
func (n *NetDef) Ops() iter.Seq2[int, *OperatorDef] {
	return func(yield func(int, *OperatorDef) bool) {
		for i := range n.ops {
			if !yield(i, &n.ops[i]) {
				return
			}
		}
	}
}

// OpByName returns the index of the operator with the given name.
func (n *NetDef) OpByName(name string) (int, bool) {
	i, ok := n.opIndex[name]
	return i, ok
}

// ArgSize returns the number of graph-level attributes.
func (n *NetDef) ArgSize() int { return len(n.args) }

// Args returns deep copies of the graph-level attributes.
func (n *NetDef) Args() []Argument { return argValues(n.args) }

// ArgByName returns the last graph attribute with the given name.
func (n *NetDef) ArgByName(name string) (Argument, bool) {
	return lastArgByName(n.args, name)
}

// Tensors returns the constant tensor table. Tensor descriptors are
// immutable; their Data slices alias the external buffer arena.
func (n *NetDef) Tensors() []TensorProto { return slices.Clone(n.tensors) }

// TensorSize returns the number of constant tensors.
func (n *NetDef) TensorSize() int { return len(n.tensors) }

// Tensor looks a constant tensor up by name.
func (n *NetDef) Tensor(name string) (TensorProto, bool) {
	i, ok := n.tensorIndex[name]
	if !ok {
		return TensorProto{}, false
	}
	return n.tensors[i], true
}

func (n *NetDef) InputInfos() []InputInfo   { return slices.Clone(n.inputInfos) }
func (n *NetDef) OutputInfos() []OutputInfo { return slices.Clone(n.outputInfos) }

// Builder returns a NetBuilder holding a deep copy of the graph, for
// transformation passes. Tensor bytes are shared, not copied.
func (n *NetDef) Builder() *NetBuilder {
	b := NewNetBuilder()
	b.name, b.version, b.has = n.name, n.version, n.has
	b.ops = make([]*OperatorDef, len(n.ops))
	for i := range n.ops {
		op := n.ops[i].Clone()
		b.ops[i] = &op
	}
	b.args = cloneArgPtrs(n.args)
	b.tensors = slices.Clone(n.tensors)
	b.memArena = n.memArena.clone()
	b.inputInfos = slices.Clone(n.inputInfos)
	b.outputInfos = slices.Clone(n.outputInfos)
	return b
}

// view adapts the frozen graph to the shape validation and liveness
// analysis walk.
func (n *NetDef) view() graphView {
	ops := make([]*OperatorDef, len(n.ops))
	for i := range n.ops {
		ops[i] = &n.ops[i]
	}
	return graphView{
		ops:         ops,
		tensors:     n.tensors,
		arena:       &n.memArena,
		hasArena:    n.HasMemArena(),
		inputInfos:  n.inputInfos,
		outputInfos: n.outputInfos,
	}
}

// LiveRanges reports the producer-to-last-consumer span of every operator
// output, in operator order.
func (n *NetDef) LiveRanges() []LiveRange {
	return liveRanges(n.view())
}
