package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/netir/internal/ir"
	"github.com/roach88/netir/internal/store"
)

// ImportResult holds the records created by one import run.
type ImportResult struct {
	Imports []store.ImportRecord `json:"imports"`
}

type loadedGraph struct {
	source string
	net    *ir.NetDef
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <graph>...",
		Short: "Validate graphs and add them to the store",
		Long: `Validate graph files and store them under their graph ID.

Importing a graph that is already stored adds a provenance record but no
second copy. Nothing is stored unless every file is valid.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runImport(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	nets := make([]*loadedGraph, 0, len(paths))
	for _, path := range paths {
		net, err := loadNetDef(path)
		if err != nil {
			return outputGraphLoadError(formatter, path, err)
		}
		source, err := filepath.Abs(path)
		if err != nil {
			source = path
		}
		nets = append(nets, &loadedGraph{source: source, net: net})
	}

	st, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	result := ImportResult{Imports: make([]store.ImportRecord, 0, len(nets))}
	for _, g := range nets {
		rec, err := st.Import(ctx, g.net, g.source)
		if err != nil {
			return formatter.commandError(ErrCodeStoreFailed, fmt.Sprintf("importing %s: %v", g.source, err), nil)
		}
		formatter.VerboseLog("Imported %s as %s (import %s)", g.source, rec.GraphID, rec.ID)
		result.Imports = append(result.Imports, rec)
	}

	if formatter.Format == "json" {
		return json.NewEncoder(formatter.Writer).Encode(CLIResponse{Status: "ok", Data: result})
	}
	for _, rec := range result.Imports {
		fmt.Fprintf(formatter.Writer, "✓ %s %s\n", shortID(rec.GraphID), rec.Source)
	}
	return nil
}
