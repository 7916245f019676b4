package compiler

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"

	"github.com/roach88/netir/internal/ir"
)

// Build validates a graph document and converts it into an unvalidated
// builder. Document errors are returned as ir.ValidationErrors; graph-level
// checks are left to the builder's Validate or Build.
//
// Tensor literals are materialized into buffers owned by the returned
// graph's caller.
func Build(doc *GraphDoc) (*ir.NetBuilder, error) {
	if errs := ValidateDoc(doc); len(errs) > 0 {
		return nil, errs
	}

	b := ir.NewNetBuilder().SetName(doc.Name)
	if doc.Version != "" {
		b.SetVersion(doc.Version)
	}
	if doc.Mode != "" {
		mode, _ := ir.ParseNetMode(doc.Mode)
		a := b.AddArg()
		a.SetName(ir.ArgNetMode)
		a.SetI(int64(mode))
	}
	if doc.Device != "" {
		device, _ := ir.ParseDeviceType(doc.Device)
		a := b.AddArg()
		a.SetName(ir.ArgDevice)
		a.SetI(int64(device))
		a.SetS(device.String())
	}
	for _, ad := range doc.Args {
		fillArg(b.AddArg(), ad)
	}

	for _, in := range doc.Inputs {
		info, err := ir.NewInputInfo(in.Name, in.NodeID, in.MaxBytes, mustType(in.Type), in.Dims)
		if err != nil {
			return nil, err
		}
		b.AddInputInfo(info)
	}
	for _, out := range doc.Outputs {
		info, err := ir.NewOutputInfo(out.Name, out.NodeID, out.MaxBytes, mustType(out.Type), out.Dims)
		if err != nil {
			return nil, err
		}
		b.AddOutputInfo(info)
	}

	for _, td := range doc.Tensors {
		t, err := buildTensor(td)
		if err != nil {
			return nil, err
		}
		b.AddTensor(t)
	}

	for _, od := range doc.Ops {
		op := b.AddOp().
			SetName(od.Name).
			SetType(od.Type).
			AddInput(od.Inputs...).
			AddOutput(od.Outputs...).
			SetNodeID(od.NodeID).
			SetOpID(od.OpID).
			SetPadding(od.Padding).
			SetOutMaxByteSizes(od.OutMaxBytes)
		if od.MemID != nil {
			op.SetMemID(*od.MemID)
		}
		if len(od.Shapes) > 0 {
			shapes := make([]ir.OutputShape, len(od.Shapes))
			for i, dims := range od.Shapes {
				shapes[i] = ir.NewOutputShape(dims...)
			}
			op.SetOutputShapes(shapes)
		}
		if len(od.Types) > 0 {
			types := make([]ir.DataType, len(od.Types))
			for i, name := range od.Types {
				types[i] = mustType(name)
			}
			op.SetOutputTypes(types)
		}
		for _, ni := range od.NodeInputs {
			op.AddNodeInput(ni.NodeID, ni.Port)
		}
		for _, ad := range od.Args {
			fillArg(op.AddArg(), ad)
		}
	}

	if doc.Arena != nil {
		arena := b.MemArena()
		for _, bd := range doc.Arena {
			arena.AddBlock(ir.NewMemoryBlock(bd.MemID, bd.X, bd.Y))
		}
	}

	slog.Debug("compiled graph document",
		"name", doc.Name,
		"ops", len(doc.Ops),
		"tensors", len(doc.Tensors),
		"arena_blocks", len(doc.Arena))
	return b, nil
}

func fillArg(a *ir.Argument, ad ArgDoc) {
	a.SetName(ad.Name)
	if ad.F != nil {
		a.SetF(float32(*ad.F))
	}
	if ad.I != nil {
		a.SetI(*ad.I)
	}
	if ad.S != nil {
		a.SetS(*ad.S)
	}
	for _, f := range ad.Floats {
		a.AddFloats(float32(f))
	}
	a.AddInts(ad.Ints...)
	a.AddStrings(ad.Strings...)
}

// mustType parses a data type name already checked by ValidateDoc.
func mustType(name string) ir.DataType {
	dt, err := ir.ParseDataType(name)
	if err != nil {
		panic(fmt.Sprintf("compiler: unvalidated data type %q", name))
	}
	return dt
}

func buildTensor(td TensorDoc) (ir.TensorProto, error) {
	dt := mustType(td.Type)
	var data []byte
	var err error
	switch {
	case len(td.Floats) > 0:
		data, err = encodeFloats(td.Floats, dt)
	case len(td.Ints) > 0:
		data, err = ir.EncodeInts(td.Ints, dt)
	case td.Data != "":
		data, err = base64.StdEncoding.DecodeString(td.Data)
	}
	if err != nil {
		return ir.TensorProto{}, fmt.Errorf("tensor %q: %w", td.Name, err)
	}
	return ir.NewTensorProto(td.Name, data, td.Dims, dt, td.NodeID)
}

func encodeFloats(values []float64, dt ir.DataType) ([]byte, error) {
	if dt == ir.DTDouble {
		buf := make([]byte, 8*len(values))
		for i, v := range values {
			binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
		}
		return buf, nil
	}
	narrowed := make([]float32, len(values))
	for i, v := range values {
		narrowed[i] = float32(v)
	}
	return ir.EncodeFloat32s(narrowed, dt)
}
