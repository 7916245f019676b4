package harness

import "github.com/roach88/netir/internal/ir"

// OpSummary is one operator as the scenario saw it after planning.
type OpSummary struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	MemID int32  `json:"mem_id"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when validation matched expect and every assertion held.
	Pass bool `json:"pass"`

	// Valid reports whether the planned graph passed validation.
	Valid bool `json:"valid"`

	// GraphID is the content hash of the frozen graph. Empty when invalid.
	GraphID string `json:"graph_id,omitempty"`

	// Codes lists validation error codes in report order.
	Codes []string `json:"codes"`

	// Violations holds the full validation report.
	Violations ir.ValidationErrors `json:"violations,omitempty"`

	// Ops and LiveRanges describe the graph after planning.
	Ops        []OpSummary    `json:"ops"`
	LiveRanges []ir.LiveRange `json:"live_ranges"`

	// Errors contains expectation and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	net *ir.NetDef
	b   *ir.NetBuilder
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Codes:      []string{},
		Ops:        []OpSummary{},
		LiveRanges: []ir.LiveRange{},
		Errors:     []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// NetDef returns the frozen graph, or nil when validation failed.
func (r *Result) NetDef() *ir.NetDef { return r.net }
