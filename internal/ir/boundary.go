package ir

import (
	"fmt"
	"slices"
)

// boundary is the contract of one tensor crossing into or out of a subgraph
// offloaded to a fixed-function accelerator.
type boundary struct {
	name        string
	nodeID      int32
	maxByteSize int32
	dataType    DataType
	dims        []int32
}

func newBoundary(kind, name string, nodeID, maxByteSize int32, dt DataType, dims []int32) (boundary, error) {
	if name == "" {
		return boundary{}, fmt.Errorf("%s: name is required", kind)
	}
	if maxByteSize < 0 {
		return boundary{}, fmt.Errorf("%s %q: max_byte_size %d is negative", kind, name, maxByteSize)
	}
	if !dt.Valid() {
		return boundary{}, fmt.Errorf("%s %q: invalid data type %s", kind, name, dt)
	}
	for i, d := range dims {
		if d < 0 {
			return boundary{}, fmt.Errorf("%s %q: dims[%d] = %d is negative", kind, name, i, d)
		}
	}
	return boundary{
		name:        name,
		nodeID:      nodeID,
		maxByteSize: maxByteSize,
		dataType:    dt,
		dims:        slices.Clone(dims),
	}, nil
}

func (b *boundary) Name() string       { return b.name }
func (b *boundary) NodeID() int32      { return b.nodeID }
func (b *boundary) MaxByteSize() int32 { return b.maxByteSize }
func (b *boundary) DataType() DataType { return b.dataType }
func (b *boundary) Dims() []int32      { return slices.Clone(b.dims) }

// ByteSize returns product(dims) * element width.
func (b *boundary) ByteSize() int64 {
	n := int64(b.dataType.Size())
	for _, d := range b.dims {
		n *= int64(d)
	}
	return n
}

// Fits reports whether a buffer of n bytes respects the byte budget.
func (b *boundary) Fits(n int) bool {
	return int64(n) <= int64(b.maxByteSize)
}

// InputInfo describes a graph input handed to an offloaded subgraph.
// It is immutable once constructed.
type InputInfo struct{ boundary }

// OutputInfo describes a graph output produced by an offloaded subgraph.
// It is immutable once constructed.
type OutputInfo struct{ boundary }

// NewInputInfo validates and constructs an input boundary descriptor.
func NewInputInfo(name string, nodeID, maxByteSize int32, dt DataType, dims []int32) (InputInfo, error) {
	b, err := newBoundary("input_info", name, nodeID, maxByteSize, dt, dims)
	return InputInfo{b}, err
}

// NewOutputInfo validates and constructs an output boundary descriptor.
func NewOutputInfo(name string, nodeID, maxByteSize int32, dt DataType, dims []int32) (OutputInfo, error) {
	b, err := newBoundary("output_info", name, nodeID, maxByteSize, dt, dims)
	return OutputInfo{b}, err
}
