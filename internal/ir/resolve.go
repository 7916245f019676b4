package ir

import "fmt"

// SourceKind says where an operator input is read from.
type SourceKind int

const (
	SourceProducer SourceKind = iota + 1
	SourceTensor
	SourceGraphInput
)

func (k SourceKind) String() string {
	switch k {
	case SourceProducer:
		return "producer"
	case SourceTensor:
		return "tensor"
	case SourceGraphInput:
		return "graph_input"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// MarshalText renders the kind by name.
func (k SourceKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// BufferRef is the resolved backing buffer of one operator input.
// For producer outputs OpIndex and Port locate the writer; MemID is
// MemIDUnassigned when the producer keeps a private buffer, otherwise
// Block is the arena block it aliases.
type BufferRef struct {
	Kind    SourceKind   `json:"kind"`
	Name    string       `json:"name"`
	OpIndex int          `json:"op_index"`
	Port    int          `json:"port"`
	MemID   int32        `json:"mem_id"`
	Block   *MemoryBlock `json:"-"`
}

// Shared reports whether the buffer lives in an arena block.
func (r BufferRef) Shared() bool { return r.MemID != MemIDUnassigned }

// BufferPlan is the executor's view of a frozen graph: for every operator,
// where each input and each node_input lives.
type BufferPlan struct {
	inputs     [][]BufferRef
	nodeInputs [][]BufferRef
	aliases    map[int32][]BufferRef
}

// Input returns the resolved buffer of input i of operator op.
func (p *BufferPlan) Input(op, i int) (BufferRef, error) {
	if err := checkIndex("plan", "op", op, len(p.inputs)); err != nil {
		return BufferRef{}, err
	}
	if err := checkIndex(fmt.Sprintf("plan op[%d]", op), "input", i, len(p.inputs[op])); err != nil {
		return BufferRef{}, err
	}
	return p.inputs[op][i], nil
}

// Inputs returns every resolved input of operator op.
func (p *BufferPlan) Inputs(op int) ([]BufferRef, error) {
	if err := checkIndex("plan", "op", op, len(p.inputs)); err != nil {
		return nil, err
	}
	return append([]BufferRef(nil), p.inputs[op]...), nil
}

// NodeInput returns the resolved buffer of node_input i of operator op.
func (p *BufferPlan) NodeInput(op, i int) (BufferRef, error) {
	if err := checkIndex("plan", "op", op, len(p.nodeInputs)); err != nil {
		return BufferRef{}, err
	}
	if err := checkIndex(fmt.Sprintf("plan op[%d]", op), "node_input", i, len(p.nodeInputs[op])); err != nil {
		return BufferRef{}, err
	}
	return p.nodeInputs[op][i], nil
}

// NodeInputs returns every resolved node_input of operator op.
func (p *BufferPlan) NodeInputs(op int) ([]BufferRef, error) {
	if err := checkIndex("plan", "op", op, len(p.nodeInputs)); err != nil {
		return nil, err
	}
	return append([]BufferRef(nil), p.nodeInputs[op]...), nil
}

// Aliases lists every operator output mapped onto arena block memID, in
// operator order.
func (p *BufferPlan) Aliases(memID int32) []BufferRef {
	return append([]BufferRef(nil), p.aliases[memID]...)
}

// Resolve maps every operator input and node_input to its backing
// buffer. A frozen graph has already passed validation, so an error here
// means a graph was assembled outside Build.
func (n *NetDef) Resolve() (*BufferPlan, error) {
	g := n.view()
	outputs := make(map[string]BufferRef)
	opMem := make([]int32, len(g.ops))
	opBlock := make([]*MemoryBlock, len(g.ops))
	plan := &BufferPlan{
		inputs:     make([][]BufferRef, len(g.ops)),
		nodeInputs: make([][]BufferRef, len(g.ops)),
		aliases:    make(map[int32][]BufferRef),
	}
	for i, op := range g.ops {
		opMem[i] = MemIDUnassigned
		if op.HasMemID() {
			b, ok := g.arena.Block(op.memID)
			if !ok {
				return nil, fmt.Errorf("resolve %s: mem_id %d not in mem_arena", op.entity(), op.memID)
			}
			opMem[i], opBlock[i] = op.memID, &b
		}
		for port, out := range op.outputs {
			ref := BufferRef{Kind: SourceProducer, Name: out, OpIndex: i, Port: port, MemID: opMem[i], Block: opBlock[i]}
			outputs[out] = ref
			if opBlock[i] != nil {
				plan.aliases[opMem[i]] = append(plan.aliases[opMem[i]], ref)
			}
		}
	}

	graphInputs := make(map[string]bool, len(g.inputInfos))
	inputNodes := make(map[int32]string, len(g.inputInfos))
	for _, info := range g.inputInfos {
		graphInputs[info.name] = true
		if _, seen := inputNodes[info.nodeID]; !seen {
			inputNodes[info.nodeID] = info.name
		}
	}
	opNodes := g.opNodes()

	for i, op := range g.ops {
		refs := make([]BufferRef, len(op.inputs))
		for j, in := range op.inputs {
			switch ref, ok := outputs[in]; {
			case ok:
				refs[j] = ref
			case n.hasTensor(in):
				refs[j] = BufferRef{Kind: SourceTensor, Name: in, OpIndex: -1, Port: -1, MemID: MemIDUnassigned}
			case graphInputs[in]:
				refs[j] = BufferRef{Kind: SourceGraphInput, Name: in, OpIndex: -1, Port: -1, MemID: MemIDUnassigned}
			default:
				return nil, fmt.Errorf("resolve %s: input %q has no source", op.entity(), in)
			}
		}
		plan.inputs[i] = refs

		nodeRefs := make([]BufferRef, len(op.nodeInputs))
		for j, ni := range op.nodeInputs {
			if p, ok := opNodes[int64(ni.NodeID)]; ok && p < i && ni.OutputPort >= 0 {
				producer := g.ops[p]
				port := int(ni.OutputPort)
				var name string
				if port < len(producer.outputs) {
					name = producer.outputs[port]
				}
				nodeRefs[j] = BufferRef{Kind: SourceProducer, Name: name, OpIndex: p, Port: port, MemID: opMem[p], Block: opBlock[p]}
				continue
			}
			if name, ok := inputNodes[ni.NodeID]; ok && ni.OutputPort == 0 {
				nodeRefs[j] = BufferRef{Kind: SourceGraphInput, Name: name, OpIndex: -1, Port: -1, MemID: MemIDUnassigned}
				continue
			}
			return nil, fmt.Errorf("resolve %s: node_input {node_id: %d, output_port: %d} has no source",
				op.entity(), ni.NodeID, ni.OutputPort)
		}
		plan.nodeInputs[i] = nodeRefs
	}
	return plan, nil
}

func (n *NetDef) hasTensor(name string) bool {
	_, ok := n.tensorIndex[name]
	return ok
}
