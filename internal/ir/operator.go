package ir

import (
	"fmt"
	"slices"
)

// MemIDUnassigned is the mem_id of an operator that owns a private,
// non-aliased output buffer.
const MemIDUnassigned int32 = -1

// NodeInput references output OutputPort of the operator whose accelerator
// node id is NodeID. It is used on the offload path where inputs are
// resolved by id instead of by name.
type NodeInput struct {
	NodeID     int32 `json:"node_id"`
	OutputPort int32 `json:"output_port"`
}

// OutputShape is the inferred shape of one operator output.
type OutputShape struct {
	dims []int64
}

// NewOutputShape copies dims into a new shape record.
func NewOutputShape(dims ...int64) OutputShape {
	return OutputShape{dims: slices.Clone(dims)}
}

func (s OutputShape) Dims() []int64 { return slices.Clone(s.dims) }
func (s OutputShape) Rank() int     { return len(s.dims) }

// Known reports whether every dim is non-negative.
func (s OutputShape) Known() bool {
	for _, d := range s.dims {
		if d < 0 {
			return false
		}
	}
	return true
}

// NumElements returns product(dims), or -1 if any dim is negative (unknown).
func (s OutputShape) NumElements() int64 {
	n, err := elementCount(s.dims)
	if err != nil {
		return -1
	}
	return n
}

func (s OutputShape) String() string { return fmt.Sprint(s.dims) }

func cloneShapes(shapes []OutputShape) []OutputShape {
	if shapes == nil {
		return nil
	}
	out := make([]OutputShape, len(shapes))
	for i, s := range shapes {
		out[i] = NewOutputShape(s.dims...)
	}
	return out
}

type opPresence uint8

const (
	opHasName opPresence = 1 << iota
	opHasType
	opHasMemID
)

// OperatorDef is one graph node. It is a read-only view; all mutation goes
// through OpBuilder.
type OperatorDef struct {
	name        string
	opType      string
	inputs      []string
	outputs     []string
	args        []*Argument
	outShapes   []OutputShape
	outTypes    []DataType
	memID       int32
	nodeID      uint32
	opID        uint32
	padding     uint32
	nodeInputs  []NodeInput
	outMaxBytes []int32
	has         opPresence
}

func newOperatorDef() OperatorDef {
	return OperatorDef{memID: MemIDUnassigned}
}

func (o *OperatorDef) entity() string {
	if o.has&opHasName != 0 {
		return fmt.Sprintf("operator %q", o.name)
	}
	return "operator"
}

// Label returns the operator name when present, otherwise its type, for
// diagnostics.
func (o *OperatorDef) Label() string {
	switch {
	case o.HasName():
		return o.name
	case o.HasType():
		return "<" + o.opType + ">"
	default:
		return "<unnamed>"
	}
}

func (o *OperatorDef) HasName() bool  { return o.has&opHasName != 0 }
func (o *OperatorDef) HasType() bool  { return o.has&opHasType != 0 }
func (o *OperatorDef) HasMemID() bool { return o.has&opHasMemID != 0 }

// Name returns the operator name or a *PresenceError.
func (o *OperatorDef) Name() (string, error) {
	if !o.HasName() {
		return "", &PresenceError{Entity: o.entity(), Field: "name"}
	}
	return o.name, nil
}

// Type returns the operator kind tag or a *PresenceError.
func (o *OperatorDef) Type() (string, error) {
	if !o.HasType() {
		return "", &PresenceError{Entity: o.entity(), Field: "type"}
	}
	return o.opType, nil
}

// MemID returns the memory block this operator's output is aliased onto,
// or a *PresenceError when the operator owns a private buffer.
func (o *OperatorDef) MemID() (int32, error) {
	if !o.HasMemID() {
		return MemIDUnassigned, &PresenceError{Entity: o.entity(), Field: "mem_id"}
	}
	return o.memID, nil
}

func (o *OperatorDef) InputSize() int    { return len(o.inputs) }
func (o *OperatorDef) OutputSize() int   { return len(o.outputs) }
func (o *OperatorDef) Inputs() []string  { return slices.Clone(o.inputs) }
func (o *OperatorDef) Outputs() []string { return slices.Clone(o.outputs) }

// Input returns input name i or a *BoundsError.
func (o *OperatorDef) Input(i int) (string, error) {
	if err := checkIndex(o.entity(), "input", i, len(o.inputs)); err != nil {
		return "", err
	}
	return o.inputs[i], nil
}

// Output returns output name i or a *BoundsError.
func (o *OperatorDef) Output(i int) (string, error) {
	if err := checkIndex(o.entity(), "output", i, len(o.outputs)); err != nil {
		return "", err
	}
	return o.outputs[i], nil
}

func (o *OperatorDef) ArgSize() int { return len(o.args) }

// Args returns deep copies of the attribute list.
func (o *OperatorDef) Args() []Argument { return argValues(o.args) }

// Arg returns a copy of attribute i or a *BoundsError.
func (o *OperatorDef) Arg(i int) (Argument, error) {
	if err := checkIndex(o.entity(), "arg", i, len(o.args)); err != nil {
		return Argument{}, err
	}
	return o.args[i].Clone(), nil
}

// ArgByName returns the last attribute with the given name.
func (o *OperatorDef) ArgByName(name string) (Argument, bool) {
	return lastArgByName(o.args, name)
}

func (o *OperatorDef) OutputShapes() []OutputShape { return cloneShapes(o.outShapes) }
func (o *OperatorDef) OutputTypes() []DataType     { return slices.Clone(o.outTypes) }
func (o *OperatorDef) NodeID() uint32              { return o.nodeID }
func (o *OperatorDef) OpID() uint32                { return o.opID }
func (o *OperatorDef) Padding() uint32             { return o.padding }
func (o *OperatorDef) NodeInputs() []NodeInput     { return slices.Clone(o.nodeInputs) }
func (o *OperatorDef) OutMaxByteSizes() []int32    { return slices.Clone(o.outMaxBytes) }

// OutputShapeAt returns the shape of output i when output_shape is index
// aligned with output.
func (o *OperatorDef) OutputShapeAt(i int) (OutputShape, bool) {
	if len(o.outShapes) != len(o.outputs) || i < 0 || i >= len(o.outShapes) {
		return OutputShape{}, false
	}
	return o.outShapes[i], true
}

// Clone returns a deep copy.
func (o *OperatorDef) Clone() OperatorDef {
	c := *o
	c.inputs = slices.Clone(o.inputs)
	c.outputs = slices.Clone(o.outputs)
	c.args = cloneArgPtrs(o.args)
	c.outShapes = cloneShapes(o.outShapes)
	c.outTypes = slices.Clone(o.outTypes)
	c.nodeInputs = slices.Clone(o.nodeInputs)
	c.outMaxBytes = slices.Clone(o.outMaxBytes)
	return c
}

// OpBuilder is a mutable handle on an operator owned by a NetBuilder, or a
// standalone operator created with NewOpBuilder.
type OpBuilder struct {
	op *OperatorDef
}

// NewOpBuilder returns a builder for a standalone operator, for graph
// transformation passes that assemble nodes before inserting them.
func NewOpBuilder() *OpBuilder {
	op := newOperatorDef()
	return &OpBuilder{op: &op}
}

// View returns the read-only operator behind the builder. The view tracks
// later writes through the builder.
func (b *OpBuilder) View() *OperatorDef { return b.op }

// Build returns a deep copy of the operator.
func (b *OpBuilder) Build() OperatorDef { return b.op.Clone() }

func (b *OpBuilder) SetName(name string) *OpBuilder {
	b.op.name = name
	b.op.has |= opHasName
	return b
}

func (b *OpBuilder) SetType(opType string) *OpBuilder {
	b.op.opType = opType
	b.op.has |= opHasType
	return b
}

// SetMemID aliases the operator's output onto arena block memID.
func (b *OpBuilder) SetMemID(memID int32) *OpBuilder {
	b.op.memID = memID
	b.op.has |= opHasMemID
	return b
}

// ClearMemID returns the operator to a private output buffer.
func (b *OpBuilder) ClearMemID() *OpBuilder {
	b.op.memID = MemIDUnassigned
	b.op.has &^= opHasMemID
	return b
}

func (b *OpBuilder) AddInput(names ...string) *OpBuilder {
	b.op.inputs = append(b.op.inputs, names...)
	return b
}

func (b *OpBuilder) AddOutput(names ...string) *OpBuilder {
	b.op.outputs = append(b.op.outputs, names...)
	return b
}

func (b *OpBuilder) SetInputs(names []string) *OpBuilder {
	b.op.inputs = slices.Clone(names)
	return b
}

func (b *OpBuilder) SetOutputs(names []string) *OpBuilder {
	b.op.outputs = slices.Clone(names)
	return b
}

// AddArg appends an empty attribute and returns a handle to it.
func (b *OpBuilder) AddArg() *Argument {
	a := &Argument{}
	b.op.args = append(b.op.args, a)
	return a
}

// SetOutputShapes replaces output_shape. It must be index aligned with the
// output list; Validate reports a mismatch.
func (b *OpBuilder) SetOutputShapes(shapes []OutputShape) *OpBuilder {
	b.op.outShapes = cloneShapes(shapes)
	return b
}

// SetOutputTypes replaces output_type, index aligned with the output list.
func (b *OpBuilder) SetOutputTypes(types []DataType) *OpBuilder {
	b.op.outTypes = slices.Clone(types)
	return b
}

func (b *OpBuilder) SetNodeID(id uint32) *OpBuilder {
	b.op.nodeID = id
	return b
}

func (b *OpBuilder) SetOpID(id uint32) *OpBuilder {
	b.op.opID = id
	return b
}

func (b *OpBuilder) SetPadding(p uint32) *OpBuilder {
	b.op.padding = p
	return b
}

func (b *OpBuilder) AddNodeInput(nodeID, outputPort int32) *OpBuilder {
	b.op.nodeInputs = append(b.op.nodeInputs, NodeInput{NodeID: nodeID, OutputPort: outputPort})
	return b
}

func (b *OpBuilder) SetOutMaxByteSizes(sizes []int32) *OpBuilder {
	b.op.outMaxBytes = slices.Clone(sizes)
	return b
}

// CopyFrom overwrites the operator with a deep copy of src.
func (b *OpBuilder) CopyFrom(src *OperatorDef) *OpBuilder {
	*b.op = src.Clone()
	return b
}
