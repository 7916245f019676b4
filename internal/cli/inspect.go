package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/netir/internal/ir"
)

// BoundaryReport describes one graph input or output.
type BoundaryReport struct {
	Name     string  `json:"name"`
	NodeID   int32   `json:"node_id"`
	Type     string  `json:"type"`
	Dims     []int32 `json:"dims"`
	MaxBytes int32   `json:"max_bytes"`
	Bytes    int64   `json:"bytes"`
}

// OpReport describes one operator.
type OpReport struct {
	Index   int      `json:"index"`
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`
	MemID   int32    `json:"mem_id"`
	Extent  string   `json:"extent,omitempty"`
}

// TensorReport describes one constant tensor.
type TensorReport struct {
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Dims   []int64 `json:"dims"`
	Bytes  int64   `json:"bytes"`
	Digest string  `json:"digest,omitempty"`
}

// BlockReport describes one arena block and the operators aliasing it.
type BlockReport struct {
	MemID int32    `json:"mem_id"`
	X     uint32   `json:"x"`
	Y     uint32   `json:"y"`
	Ops   []string `json:"ops"`
}

// InspectReport is the full inspect output.
type InspectReport struct {
	GraphID    string           `json:"graph_id"`
	Name       string           `json:"name,omitempty"`
	Version    string           `json:"version,omitempty"`
	Mode       string           `json:"mode"`
	Device     string           `json:"device,omitempty"`
	Inputs     []BoundaryReport `json:"inputs"`
	Outputs    []BoundaryReport `json:"outputs"`
	Ops        []OpReport       `json:"ops"`
	Tensors    []TensorReport   `json:"tensors"`
	LiveRanges []ir.LiveRange   `json:"live_ranges"`
	Blocks     []BlockReport    `json:"blocks"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <graph-file|graph-id>",
		Short: "Show operators, lifetimes and the memory plan of a graph",
		Long: `Show a validated graph: boundaries, operators with their arena
assignments and required image extents, output live ranges, constant
tensors and which operators alias each arena block.

The argument is a graph file, or failing that a (prefix of a) graph ID in
the store.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runInspect(opts *RootOptions, target string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	var net *ir.NetDef
	if _, statErr := os.Stat(target); statErr == nil {
		n, err := loadNetDef(target)
		if err != nil {
			return outputGraphLoadError(formatter, target, err)
		}
		net = n
	} else {
		n, err := readStoredGraph(opts, formatter, target)
		if err != nil {
			return err
		}
		net = n
	}

	report, err := buildInspectReport(net)
	if err != nil {
		return formatter.commandError(ErrCodeGeneric, err.Error(), nil)
	}

	if formatter.Format == "json" {
		return json.NewEncoder(formatter.Writer).Encode(CLIResponse{Status: "ok", Data: report, GraphID: report.GraphID})
	}
	writeInspectText(formatter.Writer, report)
	return nil
}

// readStoredGraph resolves an ID prefix and reads the graph from the store.
func readStoredGraph(opts *RootOptions, formatter *OutputFormatter, prefix string) (*ir.NetDef, error) {
	st, err := openStore(opts, formatter)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	ctx := context.Background()
	id, err := st.ResolveID(ctx, prefix)
	if err != nil {
		return nil, formatter.commandError(storeErrorCode(err), err.Error(), nil)
	}
	net, err := st.ReadNetDef(ctx, id)
	if err != nil {
		return nil, formatter.commandError(storeErrorCode(err), err.Error(), nil)
	}
	return net, nil
}

func buildInspectReport(net *ir.NetDef) (*InspectReport, error) {
	id, err := ir.GraphID(net)
	if err != nil {
		return nil, err
	}
	r := &InspectReport{
		GraphID:    id,
		Inputs:     []BoundaryReport{},
		Outputs:    []BoundaryReport{},
		Ops:        []OpReport{},
		Tensors:    []TensorReport{},
		LiveRanges: net.LiveRanges(),
		Blocks:     []BlockReport{},
	}
	r.Name, _ = net.Name()
	r.Version, _ = net.Version()
	mode, _ := net.Mode()
	r.Mode = mode.String()
	if dev, ok := net.Device(); ok {
		r.Device = dev.String()
	}

	for _, in := range net.InputInfos() {
		r.Inputs = append(r.Inputs, BoundaryReport{
			Name: in.Name(), NodeID: in.NodeID(), Type: in.DataType().String(),
			Dims: in.Dims(), MaxBytes: in.MaxByteSize(), Bytes: in.ByteSize(),
		})
	}
	for _, out := range net.OutputInfos() {
		r.Outputs = append(r.Outputs, BoundaryReport{
			Name: out.Name(), NodeID: out.NodeID(), Type: out.DataType().String(),
			Dims: out.Dims(), MaxBytes: out.MaxByteSize(), Bytes: out.ByteSize(),
		})
	}

	for i, op := range net.Ops() {
		rep := OpReport{Index: i, Inputs: op.Inputs(), Outputs: op.Outputs(), MemID: ir.MemIDUnassigned}
		rep.Name, _ = op.Name()
		rep.Type, _ = op.Type()
		if memID, err := op.MemID(); err == nil {
			rep.MemID = memID
		}
		if shape, ok := op.OutputShapeAt(0); ok {
			if ext, ok := ir.RequiredExtent(shape); ok {
				rep.Extent = ext.String()
			}
		}
		r.Ops = append(r.Ops, rep)
	}

	for _, t := range net.Tensors() {
		r.Tensors = append(r.Tensors, TensorReport{
			Name: t.Name(), Type: t.DataType().String(), Dims: t.Dims(),
			Bytes: t.ByteSize(), Digest: ir.TensorDigest(t),
		})
	}

	if arena, err := net.MemArena(); err == nil {
		plan, err := net.Resolve()
		if err != nil {
			return nil, err
		}
		for _, b := range arena.Blocks() {
			block := BlockReport{MemID: b.MemID(), X: b.X(), Y: b.Y(), Ops: []string{}}
			for _, ref := range plan.Aliases(b.MemID()) {
				block.Ops = append(block.Ops, r.Ops[ref.OpIndex].Name)
			}
			r.Blocks = append(r.Blocks, block)
		}
	}
	return r, nil
}

func writeInspectText(w io.Writer, r *InspectReport) {
	fmt.Fprintf(w, "Graph %s", r.GraphID)
	if r.Name != "" {
		fmt.Fprintf(w, " %q", r.Name)
	}
	if r.Version != "" {
		fmt.Fprintf(w, " version %s", r.Version)
	}
	fmt.Fprintf(w, "\nMode: %s", r.Mode)
	if r.Device != "" {
		fmt.Fprintf(w, "  Device: %s", r.Device)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if len(r.Inputs)+len(r.Outputs) > 0 {
		fmt.Fprintln(tw, "\nBOUNDARY\tNAME\tNODE\tTYPE\tDIMS\tBYTES/MAX")
		for _, b := range r.Inputs {
			fmt.Fprintf(tw, "input\t%s\t%d\t%s\t%v\t%d/%d\n", b.Name, b.NodeID, b.Type, b.Dims, b.Bytes, b.MaxBytes)
		}
		for _, b := range r.Outputs {
			fmt.Fprintf(tw, "output\t%s\t%d\t%s\t%v\t%d/%d\n", b.Name, b.NodeID, b.Type, b.Dims, b.Bytes, b.MaxBytes)
		}
	}

	fmt.Fprintln(tw, "\nOP\tNAME\tTYPE\tINPUTS\tOUTPUTS\tMEM_ID\tEXTENT")
	for _, op := range r.Ops {
		memID := "-"
		if op.MemID != ir.MemIDUnassigned {
			memID = fmt.Sprint(op.MemID)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", op.Index, op.Name, op.Type,
			strings.Join(op.Inputs, ","), strings.Join(op.Outputs, ","), memID, op.Extent)
	}

	fmt.Fprintln(tw, "\nOUTPUT\tPRODUCER\tLIVE")
	for _, lr := range r.LiveRanges {
		fmt.Fprintf(tw, "%s\t%d\t%d-%d\n", lr.Output, lr.OpIndex, lr.Start, lr.End)
	}

	if len(r.Tensors) > 0 {
		fmt.Fprintln(tw, "\nTENSOR\tTYPE\tDIMS\tBYTES\tDIGEST")
		for _, t := range r.Tensors {
			fmt.Fprintf(tw, "%s\t%s\t%v\t%d\t%s\n", t.Name, t.Type, t.Dims, t.Bytes, shortID(t.Digest))
		}
	}

	if len(r.Blocks) > 0 {
		fmt.Fprintln(tw, "\nBLOCK\tEXTENT\tOPS")
		for _, b := range r.Blocks {
			fmt.Fprintf(tw, "%d\t%dx%d\t%s\n", b.MemID, b.X, b.Y, strings.Join(b.Ops, ","))
		}
	}
	tw.Flush()
}
