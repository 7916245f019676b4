package ir

import (
	"errors"
	"fmt"
	"strings"
)

// Validation error codes (E200-E299).
const (
	// Referential integrity (E201-E209)
	ErrUnresolvedInput    = "E201" // input name resolves to no producer, tensor or graph input
	ErrAmbiguousInput     = "E202" // input name resolves to more than one kind of source
	ErrDuplicateProducer  = "E203" // output name written by more than one operator
	ErrForwardReference   = "E204" // input (by name or node_input) produced by the same or a later operator
	ErrUnresolvedNodeRef  = "E205" // node_input does not resolve to a producer port or graph input
	ErrUnresolvedGraphOut = "E206" // output_info name not produced by any operator

	// Shape/type agreement (E210-E219)
	ErrOutputShapeLength = "E210" // output_shape length != output length
	ErrOutputTypeLength  = "E211" // output_type length != output length
	ErrBufferSize        = "E212" // buffer size disagrees with dims and element width
	ErrOutMaxBytesLength = "E213" // out_max_byte_size length != output length

	// Memory aliasing (E220-E229)
	ErrUnknownMemID   = "E220" // mem_id not present in mem_arena
	ErrLiveAlias      = "E221" // simultaneously live outputs share a mem_id
	ErrBlockTooSmall  = "E222" // block extent smaller than the output requires
	ErrDuplicateMemID = "E223" // mem_id repeated within mem_arena

	// Graph structure (E230-E239)
	ErrMissingField    = "E230" // operator missing name or type
	ErrDuplicateOpName = "E231" // operator name repeated
	ErrDuplicateTensor = "E232" // tensor name repeated
	ErrInvalidDataType = "E233" // output_type entry is not a valid data type
	ErrDuplicateNodeID = "E234" // non-zero operator node_id repeated
)

// Category groups a validation code by the error taxonomy.
func Category(code string) string {
	switch {
	case code >= "E100" && code <= "E199":
		return "document"
	case code >= "E201" && code <= "E209":
		return "referential"
	case code >= "E210" && code <= "E219":
		return "shape"
	case code >= "E220" && code <= "E229":
		return "aliasing"
	case code >= "E230" && code <= "E239":
		return "structure"
	default:
		return "unknown"
	}
}

// ValidationError is one graph-level violation. Subject names the offending
// operator, tensor or block.
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors is the result of a failed validation pass.
type ValidationErrors []ValidationError

func (es ValidationErrors) Error() string {
	switch len(es) {
	case 0:
		return "graph validation passed"
	case 1:
		return "graph validation failed: " + es[0].Error()
	default:
		return fmt.Sprintf("graph validation failed with %d errors; first: %s", len(es), es[0].Error())
	}
}

// Codes returns the error codes in report order.
func (es ValidationErrors) Codes() []string {
	codes := make([]string, len(es))
	for i, e := range es {
		codes[i] = e.Code
	}
	return codes
}

// Has reports whether any error carries code.
func (es ValidationErrors) Has(code string) bool {
	for _, e := range es {
		if e.Code == code {
			return true
		}
	}
	return false
}

// AsValidationErrors extracts ValidationErrors from err.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var es ValidationErrors
	if errors.As(err, &es) {
		return es, true
	}
	return nil, false
}

// IsValidationError returns true if err is or wraps ValidationErrors.
func IsValidationError(err error) bool {
	_, ok := AsValidationErrors(err)
	return ok
}

// validator accumulates errors over one pass. It does not fail fast.
type validator struct {
	g    graphView
	errs ValidationErrors
}

func (v *validator) add(code, field, subject, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{
		Code:    code,
		Field:   field,
		Subject: subject,
		Message: fmt.Sprintf(format, args...),
	})
}

func validate(g graphView) ValidationErrors {
	v := &validator{g: g}
	v.structure()
	v.shapes()
	v.references()
	v.aliasing()
	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

func (v *validator) structure() {
	opNames := make(map[string]int)
	for i, op := range v.g.ops {
		field := fmt.Sprintf("op[%d]", i)
		if !op.HasName() || strings.TrimSpace(op.name) == "" {
			v.add(ErrMissingField, field+".name", op.Label(), "operator %d has no name", i)
		} else if first, dup := opNames[op.name]; dup {
			v.add(ErrDuplicateOpName, field+".name", op.name, "operator name %q already used by op[%d]", op.name, first)
		} else {
			opNames[op.name] = i
		}
		if !op.HasType() || strings.TrimSpace(op.opType) == "" {
			v.add(ErrMissingField, field+".type", op.Label(), "operator %s has no type", op.Label())
		}
		for j, dt := range op.outTypes {
			if !dt.Valid() {
				v.add(ErrInvalidDataType, fmt.Sprintf("%s.output_type[%d]", field, j), op.Label(),
					"operator %s output_type[%d] is %s", op.Label(), j, dt)
			}
		}
	}

	nodeIDs := make(map[uint32]int)
	for i, op := range v.g.ops {
		if op.nodeID == 0 {
			continue
		}
		if first, dup := nodeIDs[op.nodeID]; dup {
			v.add(ErrDuplicateNodeID, fmt.Sprintf("op[%d].node_id", i), op.Label(),
				"node_id %d already used by op[%d]", op.nodeID, first)
			continue
		}
		nodeIDs[op.nodeID] = i
	}

	tensorNames := make(map[string]bool)
	for i, t := range v.g.tensors {
		if tensorNames[t.name] {
			v.add(ErrDuplicateTensor, fmt.Sprintf("tensors[%d].name", i), t.name, "tensor name %q repeated", t.name)
		}
		tensorNames[t.name] = true
	}
}

func (v *validator) shapes() {
	for i, op := range v.g.ops {
		field := fmt.Sprintf("op[%d]", i)
		n := len(op.outputs)
		if len(op.outShapes) > 0 && len(op.outShapes) != n {
			v.add(ErrOutputShapeLength, field+".output_shape", op.Label(),
				"operator %s has %d outputs but %d output shapes", op.Label(), n, len(op.outShapes))
		}
		if len(op.outTypes) > 0 && len(op.outTypes) != n {
			v.add(ErrOutputTypeLength, field+".output_type", op.Label(),
				"operator %s has %d outputs but %d output types", op.Label(), n, len(op.outTypes))
		}
		if len(op.outMaxBytes) > 0 && len(op.outMaxBytes) != n {
			v.add(ErrOutMaxBytesLength, field+".out_max_byte_size", op.Label(),
				"operator %s has %d outputs but %d out_max_byte_size entries", op.Label(), n, len(op.outMaxBytes))
		}
	}

	for i, t := range v.g.tensors {
		if t.data != nil && t.dataType.FixedWidth() && int64(len(t.data)) != t.ByteSize() {
			v.add(ErrBufferSize, fmt.Sprintf("tensors[%d].data", i), t.name,
				"tensor %q buffer is %d bytes, dims %v of %s need %d", t.name, len(t.data), t.dims, t.dataType, t.ByteSize())
		}
	}
	for i, info := range v.g.inputInfos {
		v.boundaryBudget(fmt.Sprintf("input_info[%d]", i), &info.boundary)
	}
	for i, info := range v.g.outputInfos {
		v.boundaryBudget(fmt.Sprintf("output_info[%d]", i), &info.boundary)
	}
}

func (v *validator) boundaryBudget(field string, b *boundary) {
	if b.maxByteSize > 0 && b.dataType.FixedWidth() && b.ByteSize() > int64(b.maxByteSize) {
		v.add(ErrBufferSize, field+".max_byte_size", b.name,
			"%q needs %d bytes for dims %v of %s, budget is %d", b.name, b.ByteSize(), b.dims, b.dataType, b.maxByteSize)
	}
}

func (v *validator) references() {
	producers := v.g.producers()
	for name, idx := range producers {
		if len(idx) > 1 {
			v.add(ErrDuplicateProducer, fmt.Sprintf("op[%d].output", idx[1]), v.g.ops[idx[1]].Label(),
				"output %q is produced by %d operators", name, len(idx))
		}
	}

	tensors := make(map[string]bool, len(v.g.tensors))
	for _, t := range v.g.tensors {
		tensors[t.name] = true
	}
	graphInputs := make(map[string]bool, len(v.g.inputInfos))
	inputNodes := make(map[int32]bool, len(v.g.inputInfos))
	for _, info := range v.g.inputInfos {
		graphInputs[info.name] = true
		inputNodes[info.nodeID] = true
	}
	opNodes := v.g.opNodes()

	for i, op := range v.g.ops {
		for j, in := range op.inputs {
			field := fmt.Sprintf("op[%d].input[%d]", i, j)
			prod, fromOp := producers[in]
			kinds := 0
			for _, present := range []bool{fromOp, tensors[in], graphInputs[in]} {
				if present {
					kinds++
				}
			}
			switch {
			case in == "" || kinds == 0:
				v.add(ErrUnresolvedInput, field, op.Label(),
					"operator %s input %q is not produced by any operator, tensor or graph input", op.Label(), in)
			case kinds > 1:
				v.add(ErrAmbiguousInput, field, op.Label(),
					"operator %s input %q names more than one source", op.Label(), in)
			case fromOp && prod[0] >= i:
				v.add(ErrForwardReference, field, op.Label(),
					"operator %s input %q is produced by op[%d], which does not run before it", op.Label(), in, prod[0])
			}
		}

		for j, ni := range op.nodeInputs {
			field := fmt.Sprintf("op[%d].node_input[%d]", i, j)
			if p, ok := opNodes[int64(ni.NodeID)]; ok {
				if p >= i {
					v.add(ErrForwardReference, field, op.Label(),
						"operator %s node_input references node %d (op[%d]), which does not run before it",
						op.Label(), ni.NodeID, p)
					continue
				}
				producer := v.g.ops[p]
				ports := max(len(producer.outputs), len(producer.outMaxBytes))
				if ni.OutputPort < 0 || int(ni.OutputPort) >= ports {
					v.add(ErrUnresolvedNodeRef, field, op.Label(),
						"operator %s node_input references port %d of node %d, which has %d outputs",
						op.Label(), ni.OutputPort, ni.NodeID, ports)
				}
				continue
			}
			if inputNodes[ni.NodeID] && ni.OutputPort == 0 {
				continue
			}
			v.add(ErrUnresolvedNodeRef, field, op.Label(),
				"operator %s node_input {node_id: %d, output_port: %d} resolves to no producer or graph input",
				op.Label(), ni.NodeID, ni.OutputPort)
		}
	}

	for i, info := range v.g.outputInfos {
		if _, ok := producers[info.name]; !ok {
			v.add(ErrUnresolvedGraphOut, fmt.Sprintf("output_info[%d].name", i), info.name,
				"graph output %q is not produced by any operator", info.name)
		}
	}
}

func (v *validator) aliasing() {
	seen := make(map[int32]bool)
	for i, b := range v.g.arena.blocks {
		if seen[b.memID] {
			v.add(ErrDuplicateMemID, fmt.Sprintf("mem_arena.mem_block[%d]", i), fmt.Sprint(b.memID),
				"mem_id %d appears more than once in mem_arena", b.memID)
		}
		seen[b.memID] = true
	}

	spans := opSpans(v.g)
	byBlock := make(map[int32][]int)
	var blockOrder []int32
	for i, op := range v.g.ops {
		if !op.HasMemID() {
			continue
		}
		field := fmt.Sprintf("op[%d].mem_id", i)
		block, ok := v.g.arena.Block(op.memID)
		if !v.g.hasArena || !ok {
			v.add(ErrUnknownMemID, field, op.Label(),
				"operator %s references mem_id %d, which is not in mem_arena", op.Label(), op.memID)
			continue
		}
		if len(byBlock[op.memID]) == 0 {
			blockOrder = append(blockOrder, op.memID)
		}
		byBlock[op.memID] = append(byBlock[op.memID], i)

		for port, out := range op.outputs {
			shape, ok := op.OutputShapeAt(port)
			if !ok {
				continue
			}
			need, ok := RequiredExtent(shape)
			if !ok {
				if shape.Known() {
					v.add(ErrBlockTooSmall, field, op.Label(),
						"operator %s output %q of shape %s exceeds any block extent", op.Label(), out, shape)
				}
				continue
			}
			if !block.Accommodates(need) {
				v.add(ErrBlockTooSmall, field, op.Label(),
					"operator %s output %q needs extent %s, block %d is %s", op.Label(), out, need, block.memID, block.Extent())
			}
		}
	}

	for _, memID := range blockOrder {
		users := byBlock[memID]
		for a := 0; a < len(users); a++ {
			for b := a + 1; b < len(users); b++ {
				sa, sb := spans[users[a]], spans[users[b]]
				if sa.Overlaps(sb) {
					opA, opB := v.g.ops[users[a]], v.g.ops[users[b]]
					v.add(ErrLiveAlias, fmt.Sprintf("op[%d].mem_id", users[b]), opB.Label(),
						"operators %s (live %d-%d) and %s (live %d-%d) are live together but share mem_id %d",
						opA.Label(), sa.Start, sa.End, opB.Label(), sb.Start, sb.End, memID)
				}
			}
		}
	}
}
