package ir

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/x448/float16"
)

// TensorProto describes a named constant buffer (weights, biases).
//
// The tensor does not own its bytes: Data returns the slice handed to the
// constructor, which belongs to an external buffer arena whose lifetime must
// cover the graph. TensorProto has no update or resize operations.
type TensorProto struct {
	name     string
	data     []byte
	dims     []int64
	dataType DataType
	nodeID   uint32
	dataSize int64
}

// NewTensorProto validates and constructs a tensor descriptor.
//
// Every dim must be non-negative and dt must be a valid data type. For
// fixed-width types a non-nil data slice must be exactly
// product(dims) * dt.Size() bytes long. A nil data slice describes a tensor
// whose bytes are bound later by the executor.
func NewTensorProto(name string, data []byte, dims []int64, dt DataType, nodeID uint32) (TensorProto, error) {
	if name == "" {
		return TensorProto{}, &ShapeError{Name: name, Message: "name is required"}
	}
	if !dt.Valid() {
		return TensorProto{}, &ShapeError{Name: name, Message: fmt.Sprintf("invalid data type %s", dt)}
	}
	count, err := elementCount(dims)
	if err != nil {
		return TensorProto{}, &ShapeError{Name: name, Message: err.Error()}
	}
	if data != nil && dt.FixedWidth() {
		want := count * int64(dt.Size())
		if int64(len(data)) != want {
			return TensorProto{}, &ShapeError{
				Name:    name,
				Message: fmt.Sprintf("buffer is %d bytes, dims %v of %s need %d", len(data), dims, dt, want),
			}
		}
	}
	return TensorProto{
		name:     name,
		data:     data,
		dims:     slices.Clone(dims),
		dataType: dt,
		nodeID:   nodeID,
		dataSize: count,
	}, nil
}

// NewTensorProtoRaw is NewTensorProto for callers holding the numeric
// enumeration value of the data type.
func NewTensorProtoRaw(name string, data []byte, dims []int64, dt int, nodeID uint32) (TensorProto, error) {
	if dt < math.MinInt32 || dt > math.MaxInt32 {
		return TensorProto{}, &ShapeError{Name: name, Message: fmt.Sprintf("data type %d out of range", dt)}
	}
	return NewTensorProto(name, data, dims, DataType(dt), nodeID)
}

func (t *TensorProto) Name() string       { return t.name }
func (t *TensorProto) DataType() DataType { return t.dataType }
func (t *TensorProto) NodeID() uint32     { return t.nodeID }
func (t *TensorProto) Dims() []int64      { return slices.Clone(t.dims) }
func (t *TensorProto) Rank() int          { return len(t.dims) }
func (t *TensorProto) Data() []byte       { return t.data }
func (t *TensorProto) HasData() bool      { return t.data != nil }

// DataSize returns the element count, product(dims). A scalar (no dims) has
// one element.
func (t *TensorProto) DataSize() int64 { return t.dataSize }

// ByteSize returns DataSize * element width, or 0 for variable-width types.
func (t *TensorProto) ByteSize() int64 { return t.dataSize * int64(t.dataType.Size()) }

// Float32s decodes a little-endian DTFloat or DTHalf buffer.
func (t *TensorProto) Float32s() ([]float32, error) {
	if t.data == nil {
		return nil, fmt.Errorf("tensor %q: no data bound", t.name)
	}
	out := make([]float32, t.dataSize)
	switch t.dataType {
	case DTFloat:
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(t.data[i*4:]))
		}
	case DTHalf:
		for i := range out {
			out[i] = float16.Frombits(binary.LittleEndian.Uint16(t.data[i*2:])).Float32()
		}
	default:
		return nil, fmt.Errorf("tensor %q: cannot decode %s as float32", t.name, t.dataType)
	}
	return out, nil
}

// EncodeFloat32s packs values little-endian as dt (DTFloat or DTHalf).
// Loaders use it to materialize literal tensor data into their own buffers.
func EncodeFloat32s(values []float32, dt DataType) ([]byte, error) {
	switch dt {
	case DTFloat:
		buf := make([]byte, 4*len(values))
		for i, v := range values {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
		}
		return buf, nil
	case DTHalf:
		buf := make([]byte, 2*len(values))
		for i, v := range values {
			binary.LittleEndian.PutUint16(buf[i*2:], float16.Fromfloat32(v).Bits())
		}
		return buf, nil
	default:
		return nil, fmt.Errorf("cannot encode float32 values as %s", dt)
	}
}

// EncodeInts packs integer values little-endian as dt.
func EncodeInts(values []int64, dt DataType) ([]byte, error) {
	width := dt.Size()
	if !dt.FixedWidth() || dt == DTFloat || dt == DTDouble || dt == DTHalf {
		return nil, fmt.Errorf("cannot encode integer values as %s", dt)
	}
	buf := make([]byte, width*len(values))
	for i, v := range values {
		switch width {
		case 1:
			buf[i] = byte(v)
		case 2:
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
		case 4:
			binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
		case 8:
			binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
		}
	}
	return buf, nil
}

// elementCount returns product(dims), rejecting negative dims and overflow.
func elementCount(dims []int64) (int64, error) {
	count := int64(1)
	for i, d := range dims {
		if d < 0 {
			return 0, fmt.Errorf("dims[%d] = %d is negative", i, d)
		}
		if d != 0 && count > math.MaxInt64/d {
			return 0, fmt.Errorf("dims %v overflow int64", dims)
		}
		count *= d
	}
	return count, nil
}
