package compiler

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/netir/internal/ir"
)

// Format identifies a graph source format.
type Format string

const (
	FormatCUE  Format = "cue"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// DetectFormat infers the source format from a path. Directories are
// loaded as CUE packages.
func DetectFormat(path string) (Format, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return FormatCUE, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return FormatCUE, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unrecognized graph file extension %q", filepath.Ext(path))
	}
}

// LoadFile reads a graph from a CUE file or package directory, a YAML
// document or the JSON wire format, and returns an unvalidated builder.
func LoadFile(path string) (*ir.NetBuilder, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("loading graph", "path", path, "format", format)

	if format == FormatCUE {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			doc, err := CompileCUEDir(path)
			if err != nil {
				return nil, err
			}
			return Build(doc)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}
	return LoadBytes(format, path, data)
}

// LoadBytes is LoadFile for in-memory sources. filename is used for
// positions in CUE errors.
func LoadBytes(format Format, filename string, data []byte) (*ir.NetBuilder, error) {
	var doc *GraphDoc
	var err error
	switch format {
	case FormatCUE:
		doc, err = CompileCUEBytes(filename, data)
	case FormatYAML:
		doc, err = ParseYAML(data)
	case FormatJSON:
		return ir.DecodeJSON(data)
	default:
		return nil, fmt.Errorf("unsupported graph format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return Build(doc)
}
