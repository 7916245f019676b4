package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Wire schema. Optional scalars are pointers so that presence survives a
// round trip; tensor bytes travel as base64.
type netJSON struct {
	IRVersion  string         `json:"ir_version,omitempty"`
	Name       *string        `json:"name,omitempty"`
	Version    *string        `json:"version,omitempty"`
	Op         []opJSON       `json:"op"`
	Arg        []argJSON      `json:"arg,omitempty"`
	Tensors    []tensorJSON   `json:"tensors,omitempty"`
	MemArena   *arenaJSON     `json:"mem_arena,omitempty"`
	InputInfo  []boundaryJSON `json:"input_info,omitempty"`
	OutputInfo []boundaryJSON `json:"output_info,omitempty"`
}

type opJSON struct {
	Name           *string     `json:"name,omitempty"`
	Type           *string     `json:"type,omitempty"`
	Input          []string    `json:"input,omitempty"`
	Output         []string    `json:"output,omitempty"`
	Arg            []argJSON   `json:"arg,omitempty"`
	OutputShape    [][]int64   `json:"output_shape,omitempty"`
	OutputType     []DataType  `json:"output_type,omitempty"`
	MemID          *int32      `json:"mem_id,omitempty"`
	NodeID         uint32      `json:"node_id,omitempty"`
	OpID           uint32      `json:"op_id,omitempty"`
	Padding        uint32      `json:"padding,omitempty"`
	NodeInput      []NodeInput `json:"node_input,omitempty"`
	OutMaxByteSize []int32     `json:"out_max_byte_size,omitempty"`
}

type argJSON struct {
	Name    string    `json:"name"`
	F       *float32  `json:"f,omitempty"`
	I       *int64    `json:"i,omitempty"`
	S       *string   `json:"s,omitempty"`
	Floats  []float32 `json:"floats,omitempty"`
	Ints    []int64   `json:"ints,omitempty"`
	Strings []string  `json:"strings,omitempty"`
}

type tensorJSON struct {
	Name     string   `json:"name"`
	Dims     []int64  `json:"dims"`
	DataType DataType `json:"data_type"`
	NodeID   uint32   `json:"node_id,omitempty"`
	Data     []byte   `json:"data,omitempty"`
}

type arenaJSON struct {
	MemBlock []blockJSON `json:"mem_block"`
}

type blockJSON struct {
	MemID int32  `json:"mem_id"`
	X     uint32 `json:"x"`
	Y     uint32 `json:"y"`
}

type boundaryJSON struct {
	Name        string   `json:"name"`
	NodeID      int32    `json:"node_id"`
	MaxByteSize int32    `json:"max_byte_size"`
	DataType    DataType `json:"data_type"`
	Dims        []int32  `json:"dims"`
}

func ptrIf[T any](ok bool, v T) *T {
	if !ok {
		return nil
	}
	return &v
}

func argsToWire(args []*Argument) []argJSON {
	if len(args) == 0 {
		return nil
	}
	out := make([]argJSON, len(args))
	for i, a := range args {
		out[i] = argJSON{
			Name:    a.name,
			F:       ptrIf(a.HasF(), a.f),
			I:       ptrIf(a.HasI(), a.i),
			S:       ptrIf(a.HasS(), a.s),
			Floats:  a.Floats(),
			Ints:    a.Ints(),
			Strings: a.Strings(),
		}
	}
	return out
}

func argsFromWire(in []argJSON) []*Argument {
	out := make([]*Argument, len(in))
	for i, w := range in {
		a := NewArgument(w.Name)
		if w.F != nil {
			a.SetF(*w.F)
		}
		if w.I != nil {
			a.SetI(*w.I)
		}
		if w.S != nil {
			a.SetS(*w.S)
		}
		a.SetFloats(w.Floats)
		a.SetInts(w.Ints)
		a.SetStrings(w.Strings)
		out[i] = &a
	}
	return out
}

func boundaryToWire(b boundary) boundaryJSON {
	return boundaryJSON{
		Name:        b.name,
		NodeID:      b.nodeID,
		MaxByteSize: b.maxByteSize,
		DataType:    b.dataType,
		Dims:        b.Dims(),
	}
}

func toWire(name, version string, has netPresence, args []*Argument, g graphView) netJSON {
	w := netJSON{
		IRVersion: IRVersion,
		Name:      ptrIf(has&netHasName != 0, name),
		Version:   ptrIf(has&netHasVersion != 0, version),
		Op:        make([]opJSON, len(g.ops)),
		Arg:       argsToWire(args),
	}
	for i, op := range g.ops {
		ow := opJSON{
			Name:           ptrIf(op.HasName(), op.name),
			Type:           ptrIf(op.HasType(), op.opType),
			Input:          op.Inputs(),
			Output:         op.Outputs(),
			Arg:            argsToWire(op.args),
			OutputType:     op.OutputTypes(),
			MemID:          ptrIf(op.HasMemID(), op.memID),
			NodeID:         op.nodeID,
			OpID:           op.opID,
			Padding:        op.padding,
			NodeInput:      op.NodeInputs(),
			OutMaxByteSize: op.OutMaxByteSizes(),
		}
		for _, s := range op.outShapes {
			ow.OutputShape = append(ow.OutputShape, s.Dims())
		}
		w.Op[i] = ow
	}
	for _, t := range g.tensors {
		w.Tensors = append(w.Tensors, tensorJSON{
			Name:     t.name,
			Dims:     t.Dims(),
			DataType: t.dataType,
			NodeID:   t.nodeID,
			Data:     t.data,
		})
	}
	if g.hasArena {
		w.MemArena = &arenaJSON{MemBlock: make([]blockJSON, len(g.arena.blocks))}
		for i, b := range g.arena.blocks {
			w.MemArena.MemBlock[i] = blockJSON{MemID: b.memID, X: b.x, Y: b.y}
		}
	}
	for _, info := range g.inputInfos {
		w.InputInfo = append(w.InputInfo, boundaryToWire(info.boundary))
	}
	for _, info := range g.outputInfos {
		w.OutputInfo = append(w.OutputInfo, boundaryToWire(info.boundary))
	}
	return w
}

func fromWire(w netJSON) (*NetBuilder, error) {
	if w.IRVersion != "" && w.IRVersion != IRVersion {
		return nil, fmt.Errorf("unsupported ir_version %q (want %q)", w.IRVersion, IRVersion)
	}
	b := NewNetBuilder()
	if w.Name != nil {
		b.SetName(*w.Name)
	}
	if w.Version != nil {
		b.SetVersion(*w.Version)
	}
	b.args = argsFromWire(w.Arg)

	for _, ow := range w.Op {
		op := b.AddOp()
		if ow.Name != nil {
			op.SetName(*ow.Name)
		}
		if ow.Type != nil {
			op.SetType(*ow.Type)
		}
		if ow.MemID != nil {
			op.SetMemID(*ow.MemID)
		}
		op.SetInputs(ow.Input).
			SetOutputs(ow.Output).
			SetOutputTypes(ow.OutputType).
			SetNodeID(ow.NodeID).
			SetOpID(ow.OpID).
			SetPadding(ow.Padding).
			SetOutMaxByteSizes(ow.OutMaxByteSize)
		if len(ow.OutputShape) > 0 {
			shapes := make([]OutputShape, len(ow.OutputShape))
			for i, dims := range ow.OutputShape {
				shapes[i] = NewOutputShape(dims...)
			}
			op.SetOutputShapes(shapes)
		}
		for _, ni := range ow.NodeInput {
			op.AddNodeInput(ni.NodeID, ni.OutputPort)
		}
		op.op.args = argsFromWire(ow.Arg)
	}

	for _, tw := range w.Tensors {
		t, err := NewTensorProto(tw.Name, tw.Data, tw.Dims, tw.DataType, tw.NodeID)
		if err != nil {
			return nil, err
		}
		b.AddTensor(t)
	}
	if w.MemArena != nil {
		arena := b.MemArena()
		for _, bw := range w.MemArena.MemBlock {
			arena.AddBlock(NewMemoryBlock(bw.MemID, bw.X, bw.Y))
		}
	}
	for _, iw := range w.InputInfo {
		info, err := NewInputInfo(iw.Name, iw.NodeID, iw.MaxByteSize, iw.DataType, iw.Dims)
		if err != nil {
			return nil, err
		}
		b.AddInputInfo(info)
	}
	for _, ow := range w.OutputInfo {
		info, err := NewOutputInfo(ow.Name, ow.NodeID, ow.MaxByteSize, ow.DataType, ow.Dims)
		if err != nil {
			return nil, err
		}
		b.AddOutputInfo(info)
	}
	return b, nil
}

// DecodeJSON parses a wire-format graph into an unvalidated builder.
// Unknown fields are rejected. Call Validate or Build on the result.
func DecodeJSON(data []byte) (*NetBuilder, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var w netJSON
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	return fromWire(w)
}

// MarshalJSON encodes the builder's current state, valid or not.
func (b *NetBuilder) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(b.name, b.version, b.has, b.args, b.view()))
}

// MarshalJSON encodes the frozen graph in the wire schema.
func (n *NetDef) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(n.name, n.version, n.has, n.args, n.view()))
}

// UnmarshalJSON decodes and validates a wire-format graph. On a validation
// failure it returns ValidationErrors and leaves n unchanged.
func (n *NetDef) UnmarshalJSON(data []byte) error {
	b, err := DecodeJSON(data)
	if err != nil {
		return err
	}
	built, err := b.Build()
	if err != nil {
		return err
	}
	*n = *built
	return nil
}
