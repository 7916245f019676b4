package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
)

// Domain prefixes for content-addressed identity. The version suffix
// allows a future change of document layout without colliding with old
// identities.
const (
	DomainNetDef = "netir/netdef/v1"
	DomainTensor = "netir/tensor/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data). The null separator
// prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TensorDigest identifies a tensor payload by content. Tensors without
// data return "".
func TensorDigest(t TensorProto) string {
	if t.data == nil {
		return ""
	}
	return hashWithDomain(DomainTensor, t.data)
}

// GraphID computes the content-addressed identity of a frozen graph. Two
// graphs with equal fields, attributes and tensor payloads have the same
// ID regardless of how they were loaded.
func GraphID(n *NetDef) (string, error) {
	canonical, err := CanonicalJSON(n)
	if err != nil {
		return "", fmt.Errorf("GraphID: %w", err)
	}
	return hashWithDomain(DomainNetDef, canonical), nil
}

// MustGraphID is like GraphID but panics on error.
// Use only in tests or when the graph is known to be well formed.
func MustGraphID(n *NetDef) string {
	return must(GraphID(n))
}

// CanonicalJSON renders the canonical document of a graph.
func CanonicalJSON(n *NetDef) ([]byte, error) {
	return MarshalCanonical(canonicalNet(n))
}

func canonicalNet(n *NetDef) CanonObject {
	obj := CanonObject{
		"op":          canonOps(n.ops),
		"arg":         canonArgs(n.args),
		"tensors":     canonTensors(n.tensors),
		"input_info":  canonBoundaries(n.inputInfos, func(i InputInfo) boundary { return i.boundary }),
		"output_info": canonBoundaries(n.outputInfos, func(o OutputInfo) boundary { return o.boundary }),
	}
	if n.HasName() {
		obj["name"] = CanonString(n.name)
	}
	if n.HasVersion() {
		obj["version"] = CanonString(n.version)
	}
	if n.HasMemArena() {
		blocks := make(CanonArray, len(n.memArena.blocks))
		for i, b := range n.memArena.blocks {
			blocks[i] = CanonObject{
				"mem_id": CanonInt(b.memID),
				"x":      CanonInt(b.x),
				"y":      CanonInt(b.y),
			}
		}
		obj["mem_arena"] = CanonObject{"mem_block": blocks}
	}
	return obj
}

func canonOps(ops []OperatorDef) CanonArray {
	arr := make(CanonArray, len(ops))
	for i := range ops {
		op := &ops[i]
		shapes := make(CanonArray, len(op.outShapes))
		for j, s := range op.outShapes {
			shapes[j] = canonInts(s.dims)
		}
		nodeInputs := make(CanonArray, len(op.nodeInputs))
		for j, ni := range op.nodeInputs {
			nodeInputs[j] = CanonObject{
				"node_id":     CanonInt(ni.NodeID),
				"output_port": CanonInt(ni.OutputPort),
			}
		}
		obj := CanonObject{
			"input":             canonStrings(op.inputs),
			"output":            canonStrings(op.outputs),
			"arg":               canonArgs(op.args),
			"output_shape":      shapes,
			"output_type":       canonInts(op.outTypes),
			"node_id":           CanonInt(op.nodeID),
			"op_id":             CanonInt(op.opID),
			"padding":           CanonInt(op.padding),
			"node_input":        nodeInputs,
			"out_max_byte_size": canonInts(op.outMaxBytes),
		}
		if op.HasName() {
			obj["name"] = CanonString(op.name)
		}
		if op.HasType() {
			obj["type"] = CanonString(op.opType)
		}
		if op.HasMemID() {
			obj["mem_id"] = CanonInt(op.memID)
		}
		arr[i] = obj
	}
	return arr
}

// canonArgs encodes float payloads as IEEE-754 bit patterns so that no
// float literal reaches the canonical document.
func canonArgs(args []*Argument) CanonArray {
	arr := make(CanonArray, len(args))
	for i, a := range args {
		floats := make(CanonArray, len(a.floats))
		for j, f := range a.floats {
			floats[j] = CanonInt(math.Float32bits(f))
		}
		obj := CanonObject{
			"name":        CanonString(a.name),
			"floats_bits": floats,
			"ints":        canonInts(a.ints),
			"strings":     canonStrings(a.strings),
		}
		if a.HasF() {
			obj["f_bits"] = CanonInt(math.Float32bits(a.f))
		}
		if a.HasI() {
			obj["i"] = CanonInt(a.i)
		}
		if a.HasS() {
			obj["s"] = CanonString(a.s)
		}
		arr[i] = obj
	}
	return arr
}

func canonTensors(ts []TensorProto) CanonArray {
	arr := make(CanonArray, len(ts))
	for i, t := range ts {
		obj := CanonObject{
			"name":      CanonString(t.name),
			"dims":      canonInts(t.dims),
			"data_type": CanonInt(t.dataType),
			"node_id":   CanonInt(t.nodeID),
			"data_size": CanonInt(t.dataSize),
		}
		if d := TensorDigest(t); d != "" {
			obj["data_sha256"] = CanonString(d)
		}
		arr[i] = obj
	}
	return arr
}

func canonBoundaries[T any](infos []T, get func(T) boundary) CanonArray {
	arr := make(CanonArray, len(infos))
	for i, info := range infos {
		b := get(info)
		arr[i] = CanonObject{
			"name":          CanonString(b.name),
			"node_id":       CanonInt(b.nodeID),
			"max_byte_size": CanonInt(b.maxByteSize),
			"data_type":     CanonInt(b.dataType),
			"dims":          canonInts(b.dims),
		}
	}
	return arr
}
