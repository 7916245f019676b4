package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/netir/internal/ir"
)

// FileValidation is the outcome for one graph file.
type FileValidation struct {
	Path    string              `json:"path"`
	Valid   bool                `json:"valid"`
	GraphID string              `json:"graph_id,omitempty"`
	Errors  ir.ValidationErrors `json:"errors,omitempty"`
	Load    *CLIError           `json:"load_error,omitempty"`
}

// ValidationResult holds validation results for every file.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Jobs int // concurrent files
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <graph>...",
		Short: "Validate graph files",
		Long: `Validate graph descriptions (CUE, YAML or JSON wire format).

Every file is loaded, checked against the document rules and then against
the graph rules: structure, shapes, references and memory aliasing. All
violations are reported, not just the first.

Exit codes:
  0 - All graphs valid
  1 - One or more graphs invalid
  2 - A file could not be read or parsed`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", runtime.GOMAXPROCS(0), "files validated concurrently")

	return cmd
}

func runValidate(ctx context.Context, opts *ValidateOptions, paths []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	files := make([]FileValidation, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Jobs, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			files[i] = validateFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return formatter.commandError(ErrCodeGeneric, fmt.Sprintf("validation interrupted: %v", err), nil)
	}

	result := ValidationResult{Valid: true, Files: files}
	loadFailed := false
	for _, f := range files {
		formatter.VerboseLog("Validated %s: valid=%t", f.Path, f.Valid)
		if !f.Valid {
			result.Valid = false
		}
		if f.Load != nil {
			loadFailed = true
		}
	}

	if err := outputValidation(formatter, result); err != nil {
		return err
	}

	switch {
	case loadFailed:
		return NewExitError(ExitCommandError, "one or more graph files could not be loaded")
	case !result.Valid:
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

// validateFile loads and validates one graph. It is safe to call from
// several goroutines.
func validateFile(path string) FileValidation {
	fv := FileValidation{Path: path}

	b, err := loadBuilder(path)
	if err != nil {
		if errs, ok := ir.AsValidationErrors(err); ok {
			fv.Errors = errs
			return fv
		}
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			fv.Load = &CLIError{Code: loadErr.Code, Message: loadErr.Error()}
		} else {
			fv.Load = &CLIError{Code: ErrCodeGeneric, Message: err.Error()}
		}
		return fv
	}

	net, err := b.Build()
	if err != nil {
		if errs, ok := ir.AsValidationErrors(err); ok {
			fv.Errors = errs
		} else {
			fv.Load = &CLIError{Code: ErrCodeGeneric, Message: err.Error()}
		}
		return fv
	}
	fv.Valid = true
	fv.GraphID = ir.MustGraphID(net)
	slog.Debug("graph valid", "path", path, "id", fv.GraphID)
	return fv
}

// outputValidation writes the per-file report.
func outputValidation(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		response := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			response.Status = "error"
			response.Error = firstValidationError(result)
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(response)
	}

	for _, f := range result.Files {
		switch {
		case f.Valid:
			fmt.Fprintf(formatter.Writer, "✓ %s (%s)\n", f.Path, shortID(f.GraphID))
		case f.Load != nil:
			fmt.Fprintf(formatter.Writer, "✗ %s\n  %s: %s\n", f.Path, f.Load.Code, f.Load.Message)
		default:
			fmt.Fprintf(formatter.Writer, "✗ %s\n", f.Path)
			writeViolations(formatter.Writer, f.Errors)
		}
	}
	return nil
}

func firstValidationError(result ValidationResult) *CLIError {
	for _, f := range result.Files {
		if f.Load != nil {
			return f.Load
		}
		if len(f.Errors) > 0 {
			return &CLIError{Code: f.Errors[0].Code, Message: f.Errors[0].Error()}
		}
	}
	return nil
}
