package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/netir/internal/ir"
)

func validDoc() *GraphDoc {
	return &GraphDoc{
		Name: "g",
		Ops:  []OpDoc{{Name: "a", Type: "Const", Outputs: []string{"y"}}},
	}
}

func TestValidateDocCodes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *GraphDoc)
		want   []string
	}{
		{"no ops", func(d *GraphDoc) { d.Ops = nil }, []string{ErrNoOps}},
		{"unknown mode", func(d *GraphDoc) { d.Mode = "train" }, []string{ErrUnknownEnum}},
		{"unknown device", func(d *GraphDoc) { d.Device = "tpu" }, []string{ErrUnknownEnum}},
		{"unknown output type", func(d *GraphDoc) { d.Ops[0].Types = []string{"complex"} }, []string{ErrUnknownDataType}},
		{"invalid output type", func(d *GraphDoc) { d.Ops[0].Types = []string{"invalid"} }, []string{ErrUnknownDataType}},
		{"unknown boundary type", func(d *GraphDoc) {
			d.Inputs = []BoundaryDoc{{Name: "x", Type: ""}}
		}, []string{ErrUnknownDataType}},
		{"unknown tensor type", func(d *GraphDoc) {
			d.Tensors = []TensorDoc{{Name: "t", Type: "f8"}}
		}, []string{ErrUnknownDataType}},
		{"value count", func(d *GraphDoc) {
			d.Tensors = []TensorDoc{{Name: "t", Dims: []int64{3}, Type: "float32", Floats: []float64{1, 2}}}
		}, []string{ErrTensorValueCount}},
		{"two literal forms", func(d *GraphDoc) {
			d.Tensors = []TensorDoc{{Name: "t", Dims: []int64{1}, Type: "int32", Ints: []int64{1}, Data: "AAAAAA=="}}
		}, []string{ErrTensorDataConflict}},
		{"floats into int tensor", func(d *GraphDoc) {
			d.Tensors = []TensorDoc{{Name: "t", Dims: []int64{1}, Type: "int32", Floats: []float64{1}}}
		}, []string{ErrTensorLiteralKind}},
		{"ints into float tensor", func(d *GraphDoc) {
			d.Tensors = []TensorDoc{{Name: "t", Dims: []int64{1}, Type: "float32", Ints: []int64{1}}}
		}, []string{ErrTensorLiteralKind}},
		{"bad base64", func(d *GraphDoc) {
			d.Tensors = []TensorDoc{{Name: "t", Dims: []int64{1}, Type: "float32", Data: "!!"}}
		}, []string{ErrInvalidBase64}},
		{"unnamed arg", func(d *GraphDoc) { d.Ops[0].Args = []ArgDoc{{}} }, []string{ErrArgNameEmpty}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDoc()
			tt.mutate(d)
			assert.Equal(t, tt.want, ValidateDoc(d).Codes())
		})
	}
}

func TestValidateDocValid(t *testing.T) {
	assert.Empty(t, ValidateDoc(validDoc()))
}

func TestBuildReturnsDocumentErrors(t *testing.T) {
	d := validDoc()
	d.Ops = nil

	_, err := Build(d)
	errs, ok := ir.AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, "document", ir.Category(errs[0].Code))
}

func TestBuildMaterializesLiterals(t *testing.T) {
	d := validDoc()
	d.Tensors = []TensorDoc{
		{Name: "f64", Dims: []int64{2}, Type: "float64", Floats: []float64{1, 2}},
		{Name: "half", Dims: []int64{1}, Type: "float16", Floats: []float64{0.25}},
		{Name: "mask", Dims: []int64{3}, Type: "bool", Ints: []int64{1, 0, 1}},
		{Name: "late", Dims: []int64{4}, Type: "int8"},
	}

	b, err := Build(d)
	require.NoError(t, err)
	ts := b.Tensors()
	require.Len(t, ts, 4)

	assert.Len(t, ts[0].Data(), 16)
	half, err := ts[1].Float32s()
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25}, half)
	assert.Equal(t, []byte{1, 0, 1}, ts[2].Data())
	assert.False(t, ts[3].HasData())
}
