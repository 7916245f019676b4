package ir

// graphView is the common shape of NetBuilder and NetDef seen by
// validation, liveness analysis and resolution.
type graphView struct {
	ops         []*OperatorDef
	tensors     []TensorProto
	arena       *MemoryArena
	hasArena    bool
	inputInfos  []InputInfo
	outputInfos []OutputInfo
}

// LiveRange is the lifetime of one operator output: it is written by
// operator Start and last read by operator End (inclusive). Outputs with
// no consumer have End == Start; graph outputs named in output_info stay
// live until the end of the graph.
type LiveRange struct {
	Output  string `json:"output"`
	OpIndex int    `json:"op_index"`
	Port    int    `json:"port"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// Overlaps reports whether two ranges are live at a common operator.
func (r LiveRange) Overlaps(o LiveRange) bool {
	return r.Start <= o.End && o.Start <= r.End
}

// opNodes maps each non-zero operator node_id to the first operator
// carrying it.
func (g graphView) opNodes() map[int64]int {
	m := make(map[int64]int, len(g.ops))
	for i, op := range g.ops {
		if op.nodeID == 0 {
			continue
		}
		if _, seen := m[int64(op.nodeID)]; !seen {
			m[int64(op.nodeID)] = i
		}
	}
	return m
}

// producers maps each output name to the indices of operators writing it.
func (g graphView) producers() map[string][]int {
	m := make(map[string][]int)
	for i, op := range g.ops {
		for _, out := range op.outputs {
			m[out] = append(m[out], i)
		}
	}
	return m
}

func liveRanges(g graphView) []LiveRange {
	lastUse := make(map[string]int)
	for i, op := range g.ops {
		for _, in := range op.inputs {
			lastUse[in] = i
		}
	}
	graphOut := make(map[string]bool, len(g.outputInfos))
	for _, info := range g.outputInfos {
		graphOut[info.name] = true
	}

	var ranges []LiveRange
	for i, op := range g.ops {
		for port, out := range op.outputs {
			r := LiveRange{Output: out, OpIndex: i, Port: port, Start: i, End: i}
			if last, ok := lastUse[out]; ok && last > i {
				r.End = last
			}
			if graphOut[out] {
				r.End = len(g.ops)
			}
			ranges = append(ranges, r)
		}
	}
	return ranges
}

// opSpans returns, per operator, the union of its outputs' live ranges.
func opSpans(g graphView) []LiveRange {
	spans := make([]LiveRange, len(g.ops))
	for i := range g.ops {
		spans[i] = LiveRange{OpIndex: i, Start: i, End: i}
	}
	for _, r := range liveRanges(g) {
		if r.End > spans[r.OpIndex].End {
			spans[r.OpIndex].End = r.End
		}
	}
	return spans
}
