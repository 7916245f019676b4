package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"cuelang.org/go/cue/token"

	"github.com/roach88/netir/internal/compiler"
	"github.com/roach88/netir/internal/ir"
	"github.com/roach88/netir/internal/store"
)

// Error code constants - unified across all CLI commands. Graph
// validation codes (E1xx document, E2xx graph) come from the compiler
// and ir packages.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNoFiles     = "E003" // No graph or scenario files found
	ErrCodeLoadFailed  = "E004" // Graph source could not be parsed or compiled
	ErrCodeNotFound    = "E005" // Path or graph ID not found
	ErrCodeStoreFailed = "E006" // Store open/read/write error
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeAmbiguousID = "E008" // Graph ID prefix matches several graphs
)

// LoadError represents an error that occurred while loading a graph file.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
}

// loadBuilder reads a graph source. It returns either a builder, an
// ir.ValidationErrors for document-level violations, or a *LoadError.
func loadBuilder(path string) (*ir.NetBuilder, error) {
	b, err := compiler.LoadFile(path)
	if err == nil {
		return b, nil
	}
	return nil, convertLoadError(path, err)
}

// loadNetDef reads and freezes a graph. Graph-level violations are
// returned as ir.ValidationErrors.
func loadNetDef(path string) (*ir.NetDef, error) {
	b, err := loadBuilder(path)
	if err != nil {
		return nil, err
	}
	return b.Build()
}

// convertLoadError converts a compiler error to a LoadError with position
// info. Validation errors pass through untouched.
func convertLoadError(path string, err error) error {
	if ir.IsValidationError(err) {
		return err
	}
	if errors.Is(err, fs.ErrNotExist) {
		return &LoadError{Code: ErrCodeNotFound, Path: path, Message: fmt.Sprintf("graph file not found: %s", path)}
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeLoadFailed,
			Path:    path,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Path: path, Message: err.Error()}
}

// openStore opens the graph store named by --db.
func openStore(opts *RootOptions, f *OutputFormatter) (*store.Store, error) {
	slog.Debug("opening store", "path", opts.DB)
	st, err := store.Open(opts.DB)
	if err != nil {
		return nil, f.commandError(ErrCodeStoreFailed, fmt.Sprintf("opening store %s: %v", opts.DB, err), nil)
	}
	return st, nil
}

// storeErrorCode maps store lookup failures to CLI error codes.
func storeErrorCode(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, store.ErrAmbiguousID):
		return ErrCodeAmbiguousID
	default:
		return ErrCodeStoreFailed
	}
}
