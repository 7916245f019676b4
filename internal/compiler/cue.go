package compiler

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

//go:embed schema.cue
var schemaSource string

// GraphPath is the top-level field a CUE graph file must declare.
const GraphPath = "graph"

func graphSchema(ctx *cue.Context) (cue.Value, error) {
	v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile embedded schema: %w", err)
	}
	return v.LookupPath(cue.ParsePath("#Graph")), nil
}

// CompileCUE unifies a CUE graph value with the #Graph schema and decodes
// it. The value must be the graph struct itself, e.g.
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(src)
//	doc, err := CompileCUE(v.LookupPath(cue.ParsePath("graph")))
func CompileCUE(v cue.Value) (*GraphDoc, error) {
	if !v.Exists() {
		return nil, &CompileError{Field: GraphPath, Message: "graph value not found", Pos: v.Pos()}
	}
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	schema, err := graphSchema(v.Context())
	if err != nil {
		return nil, err
	}
	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var doc GraphDoc
	if err := unified.Decode(&doc); err != nil {
		return nil, formatCUEError(err)
	}
	return &doc, nil
}

// CompileCUEBytes compiles a single CUE source declaring `graph`.
func CompileCUEBytes(filename string, src []byte) (*GraphDoc, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileCUE(v.LookupPath(cue.ParsePath(GraphPath)))
}

// CompileCUEDir loads the CUE package in dir and compiles its `graph`.
func CompileCUEDir(dir string) (*GraphDoc, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("graph directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances in %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}

	v := cuecontext.New().BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileCUE(v.LookupPath(cue.ParsePath(GraphPath)))
}
