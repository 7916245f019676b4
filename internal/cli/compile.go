package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/netir/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output    string // output file path
	Canonical bool   // emit the canonical hash input instead of the wire format
}

// CompilationResult summarizes a compiled graph for JSON output.
type CompilationResult struct {
	GraphID string          `json:"graph_id"`
	Name    string          `json:"name,omitempty"`
	Ops     int             `json:"ops"`
	Tensors int             `json:"tensors"`
	Output  string          `json:"output,omitempty"`
	Graph   json.RawMessage `json:"graph,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <graph>",
		Short: "Compile a graph description to the JSON wire format",
		Long: `Compile a CUE, YAML or JSON graph description into a validated
graph in the JSON wire format.

With --canonical the canonical form (sorted keys, float bit patterns,
tensor digests) that the graph ID is computed from is written instead.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().BoolVar(&opts.Canonical, "canonical", false, "write canonical JSON")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	net, err := loadNetDef(path)
	if err != nil {
		return outputGraphLoadError(formatter, path, err)
	}

	data, err := encodeNetDef(net, opts.Canonical)
	if err != nil {
		return formatter.commandError(ErrCodeGeneric, fmt.Sprintf("encoding graph: %v", err), nil)
	}
	id := ir.MustGraphID(net)
	formatter.VerboseLog("Compiled %s: %d op(s), graph id %s", path, net.OpSize(), id)

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
			return formatter.commandError(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	name, _ := net.Name()
	result := CompilationResult{
		GraphID: id,
		Name:    name,
		Ops:     net.OpSize(),
		Tensors: net.TensorSize(),
		Output:  opts.Output,
	}

	if formatter.Format == "json" {
		if opts.Output == "" {
			result.Graph = json.RawMessage(data)
		}
		return json.NewEncoder(formatter.Writer).Encode(CLIResponse{Status: "ok", Data: result, GraphID: id})
	}

	if opts.Output == "" {
		_, err := formatter.Writer.Write(data)
		return err
	}
	fmt.Fprintf(formatter.Writer, "✓ Compiled %s: %d op(s), %d tensor(s)\n", path, result.Ops, result.Tensors)
	fmt.Fprintf(formatter.Writer, "Wrote graph %s to %s\n", shortID(id), opts.Output)
	return nil
}

// encodeNetDef renders a graph as indented wire JSON or as canonical
// JSON. Both end in a newline.
func encodeNetDef(net *ir.NetDef, canonical bool) ([]byte, error) {
	var data []byte
	var err error
	if canonical {
		data, err = ir.CanonicalJSON(net)
	} else {
		var raw []byte
		raw, err = json.Marshal(net)
		if err == nil {
			var buf bytes.Buffer
			err = json.Indent(&buf, raw, "", "  ")
			data = buf.Bytes()
		}
	}
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// outputGraphLoadError reports a graph that failed to load or validate.
// Invalid graphs exit with 1, unreadable sources with 2.
func outputGraphLoadError(formatter *OutputFormatter, path string, err error) error {
	if errs, ok := ir.AsValidationErrors(err); ok {
		if formatter.Format == "json" {
			_ = formatter.Error(errs[0].Code, errs[0].Error(), errs)
		} else {
			fmt.Fprintf(formatter.Writer, "✗ %s\n", path)
			writeViolations(formatter.Writer, errs)
		}
		return WrapExitError(ExitFailure, fmt.Sprintf("%s is not a valid graph", path), err)
	}

	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return formatter.commandError(loadErr.Code, loadErr.Error(), nil)
	}
	return formatter.commandError(ErrCodeGeneric, err.Error(), nil)
}
