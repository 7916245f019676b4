package compiler

// GraphDoc is the authoring form of a graph, shared by the CUE and YAML
// front-ends. Field names follow the embedded CUE schema.
type GraphDoc struct {
	Name    string        `json:"name" yaml:"name"`
	Version string        `json:"version,omitempty" yaml:"version,omitempty"`
	Mode    string        `json:"mode,omitempty" yaml:"mode,omitempty"`
	Device  string        `json:"device,omitempty" yaml:"device,omitempty"`
	Args    []ArgDoc      `json:"args,omitempty" yaml:"args,omitempty"`
	Inputs  []BoundaryDoc `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs []BoundaryDoc `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Tensors []TensorDoc   `json:"tensors,omitempty" yaml:"tensors,omitempty"`
	Ops     []OpDoc       `json:"ops" yaml:"ops"`
	Arena   []BlockDoc    `json:"arena,omitempty" yaml:"arena,omitempty"`
}

// ArgDoc is a named attribute. Scalars are pointers so that an explicit
// zero is distinguishable from an absent value.
type ArgDoc struct {
	Name    string    `json:"name" yaml:"name"`
	F       *float64  `json:"f,omitempty" yaml:"f,omitempty"`
	I       *int64    `json:"i,omitempty" yaml:"i,omitempty"`
	S       *string   `json:"s,omitempty" yaml:"s,omitempty"`
	Floats  []float64 `json:"floats,omitempty" yaml:"floats,omitempty"`
	Ints    []int64   `json:"ints,omitempty" yaml:"ints,omitempty"`
	Strings []string  `json:"strings,omitempty" yaml:"strings,omitempty"`
}

// TensorDoc is a constant tensor. At most one of Floats, Ints and Data
// (base64) may be set; with none the tensor is declared unbound.
type TensorDoc struct {
	Name   string    `json:"name" yaml:"name"`
	Dims   []int64   `json:"dims" yaml:"dims"`
	Type   string    `json:"type" yaml:"type"`
	NodeID uint32    `json:"node_id,omitempty" yaml:"node_id,omitempty"`
	Floats []float64 `json:"floats,omitempty" yaml:"floats,omitempty"`
	Ints   []int64   `json:"ints,omitempty" yaml:"ints,omitempty"`
	Data   string    `json:"data,omitempty" yaml:"data,omitempty"`
}

// OpDoc is one operator. Shapes, Types and OutMaxBytes are index aligned
// with Outputs.
type OpDoc struct {
	Name        string         `json:"name" yaml:"name"`
	Type        string         `json:"type" yaml:"type"`
	Inputs      []string       `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs     []string       `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Args        []ArgDoc       `json:"args,omitempty" yaml:"args,omitempty"`
	Shapes      [][]int64      `json:"shapes,omitempty" yaml:"shapes,omitempty"`
	Types       []string       `json:"types,omitempty" yaml:"types,omitempty"`
	MemID       *int32         `json:"mem_id,omitempty" yaml:"mem_id,omitempty"`
	NodeID      uint32         `json:"node_id,omitempty" yaml:"node_id,omitempty"`
	OpID        uint32         `json:"op_id,omitempty" yaml:"op_id,omitempty"`
	Padding     uint32         `json:"padding,omitempty" yaml:"padding,omitempty"`
	NodeInputs  []NodeInputDoc `json:"node_inputs,omitempty" yaml:"node_inputs,omitempty"`
	OutMaxBytes []int32        `json:"out_max_bytes,omitempty" yaml:"out_max_bytes,omitempty"`
}

// NodeInputDoc references an accelerator node's output port.
type NodeInputDoc struct {
	NodeID int32 `json:"node_id" yaml:"node_id"`
	Port   int32 `json:"port" yaml:"port"`
}

// BoundaryDoc describes a graph input or output of an offloaded subgraph.
type BoundaryDoc struct {
	Name     string  `json:"name" yaml:"name"`
	NodeID   int32   `json:"node_id" yaml:"node_id"`
	MaxBytes int32   `json:"max_bytes" yaml:"max_bytes"`
	Type     string  `json:"type" yaml:"type"`
	Dims     []int32 `json:"dims" yaml:"dims"`
}

// BlockDoc is one memory arena block. A document with an arena list,
// even an empty one, yields a graph whose mem_arena is present.
type BlockDoc struct {
	MemID int32  `json:"mem_id" yaml:"mem_id"`
	X     uint32 `json:"x" yaml:"x"`
	Y     uint32 `json:"y" yaml:"y"`
}
