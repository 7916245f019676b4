package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/netir/internal/store"
)

// ListEntry is one stored graph with its import history.
type ListEntry struct {
	store.GraphSummary
	Imports []store.ImportRecord `json:"imports,omitempty"`
}

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Tensor  string // only graphs holding a tensor with this digest
	History bool   // include import records
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List stored graphs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Tensor, "tensor", "", "only graphs holding a tensor with this digest")
	cmd.Flags().BoolVar(&opts.History, "history", false, "include import records")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openStore(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	graphs, err := st.ListGraphs(ctx)
	if err != nil {
		return formatter.commandError(ErrCodeStoreFailed, err.Error(), nil)
	}

	var keep map[string]bool
	if opts.Tensor != "" {
		ids, err := st.GraphsWithTensor(ctx, opts.Tensor)
		if err != nil {
			return formatter.commandError(ErrCodeStoreFailed, err.Error(), nil)
		}
		keep = make(map[string]bool, len(ids))
		for _, id := range ids {
			keep[id] = true
		}
	}

	entries := []ListEntry{}
	for _, g := range graphs {
		if keep != nil && !keep[g.ID] {
			continue
		}
		entry := ListEntry{GraphSummary: g}
		if opts.History {
			if entry.Imports, err = st.ListImports(ctx, g.ID); err != nil {
				return formatter.commandError(ErrCodeStoreFailed, err.Error(), nil)
			}
		}
		entries = append(entries, entry)
	}

	if formatter.Format == "json" {
		return json.NewEncoder(formatter.Writer).Encode(CLIResponse{Status: "ok", Data: entries})
	}

	if len(entries) == 0 {
		fmt.Fprintln(formatter.Writer, "No graphs stored.")
		return nil
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tVERSION\tOPS\tARENA")
	for _, e := range entries {
		arena := "no"
		if e.HasArena {
			arena = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", shortID(e.ID), e.Name, e.Version, e.OpCount, arena)
		for _, rec := range e.Imports {
			fmt.Fprintf(tw, "  #%d\t%s\t\t\t\n", rec.Seq, rec.Source)
		}
	}
	return tw.Flush()
}
