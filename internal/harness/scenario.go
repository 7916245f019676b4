package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a graph conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Graph is the path of a CUE, YAML or JSON graph source.
	// Relative paths are resolved against the scenario file's directory.
	Graph string `yaml:"graph"`

	// Plan rewrites the graph's memory plan before validation. Steps run
	// in order within a single planning pass.
	Plan []PlanStep `yaml:"plan,omitempty"`

	// Expect states what validation must conclude.
	Expect ExpectClause `yaml:"expect"`

	// Assertions check liveness, extents and resolution.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// PlanStep is one planning action: add a block, assign an operator to a
// block, or clear an operator's assignment.
type PlanStep struct {
	Block *BlockStep `yaml:"block,omitempty"`
	Op    string     `yaml:"op,omitempty"`
	MemID *int32     `yaml:"mem_id,omitempty"`
	Clear bool       `yaml:"clear,omitempty"`
}

// BlockStep describes an arena block to add.
type BlockStep struct {
	MemID int32  `yaml:"mem_id"`
	X     uint32 `yaml:"x"`
	Y     uint32 `yaml:"y"`
}

// ExpectClause specifies the expected validation outcome.
type ExpectClause struct {
	// Valid is required.
	Valid *bool `yaml:"valid"`

	// Codes, when set, must equal the reported codes in order.
	Codes []string `yaml:"codes,omitempty"`
}

// Assertion checks one property of the planned graph.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Count is the expected operator count (op_count).
	Count int `yaml:"count,omitempty"`

	// Output, Start and End describe a live range (live_range).
	Output string `yaml:"output,omitempty"`
	Start  *int   `yaml:"start,omitempty"`
	End    *int   `yaml:"end,omitempty"`

	// Op names the operator under test (extent, input_source).
	Op string `yaml:"op,omitempty"`

	// X and Y are the required image extent (extent).
	X uint32 `yaml:"x,omitempty"`
	Y uint32 `yaml:"y,omitempty"`

	// MemID and Ops list the operators sharing a block (aliases).
	MemID *int32   `yaml:"mem_id,omitempty"`
	Ops   []string `yaml:"ops,omitempty"`

	// Index, Kind and From describe where an input is read (input_source).
	Index int    `yaml:"index,omitempty"`
	Kind  string `yaml:"kind,omitempty"`
	From  string `yaml:"from,omitempty"`
}

// Assertion type constants.
const (
	AssertOpCount     = "op_count"
	AssertLiveRange   = "live_range"
	AssertExtent      = "extent"
	AssertAliases     = "aliases"
	AssertInputSource = "input_source"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the graph path relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the graph path BEFORE validation
	if scenario.Graph != "" && !filepath.IsAbs(scenario.Graph) && basePath != "" {
		scenario.Graph = filepath.Join(basePath, scenario.Graph)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Graph == "" {
		return fmt.Errorf("graph is required")
	}
	if _, err := os.Stat(s.Graph); os.IsNotExist(err) {
		return fmt.Errorf("graph file not found: %s", s.Graph)
	}

	if s.Expect.Valid == nil {
		return fmt.Errorf("expect.valid is required")
	}
	if *s.Expect.Valid && len(s.Expect.Codes) > 0 {
		return fmt.Errorf("expect: codes given for a valid graph")
	}

	for i, step := range s.Plan {
		if err := validatePlanStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validatePlanStep(index int, p *PlanStep) error {
	switch {
	case p.Block != nil && p.Op != "":
		return fmt.Errorf("plan[%d]: block and op are mutually exclusive", index)
	case p.Block != nil:
		return nil
	case p.Op == "":
		return fmt.Errorf("plan[%d]: block or op is required", index)
	case p.Clear && p.MemID != nil:
		return fmt.Errorf("plan[%d]: clear and mem_id are mutually exclusive", index)
	case !p.Clear && p.MemID == nil:
		return fmt.Errorf("plan[%d]: mem_id or clear is required for op %q", index, p.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertOpCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for op_count", index)
		}
	case AssertLiveRange:
		if a.Output == "" || a.Start == nil || a.End == nil {
			return fmt.Errorf("assertions[%d]: output, start and end are required for live_range", index)
		}
	case AssertExtent:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for extent", index)
		}
	case AssertAliases:
		if a.MemID == nil {
			return fmt.Errorf("assertions[%d]: mem_id is required for aliases", index)
		}
	case AssertInputSource:
		if a.Op == "" || a.Kind == "" || a.From == "" {
			return fmt.Errorf("assertions[%d]: op, kind and from are required for input_source", index)
		}
		if a.Index < 0 {
			return fmt.Errorf("assertions[%d]: index must be non-negative for input_source", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
