package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidChainHasNoErrors(t *testing.T) {
	assert.Nil(t, chainBuilder(t).Validate())
}

func TestValidateCodes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, b *NetBuilder)
		want   []string
	}{
		{
			name: "unresolved input",
			mutate: func(t *testing.T, b *NetBuilder) {
				mustOp(t, b, 1).AddInput("ghost")
			},
			want: []string{ErrUnresolvedInput},
		},
		{
			name: "empty input name",
			mutate: func(t *testing.T, b *NetBuilder) {
				mustOp(t, b, 1).AddInput("")
			},
			want: []string{ErrUnresolvedInput},
		},
		{
			name: "tensor shadows operator output",
			mutate: func(t *testing.T, b *NetBuilder) {
				c1, err := NewTensorProto("c1", nil, []int64{1}, DTFloat, 0)
				require.NoError(t, err)
				b.AddTensor(c1)
			},
			want: []string{ErrAmbiguousInput},
		},
		{
			name: "two producers",
			mutate: func(t *testing.T, b *NetBuilder) {
				b.AddOp().SetName("dup").SetType("Identity").AddInput("r1").AddOutput("c1")
			},
			want: []string{ErrDuplicateProducer},
		},
		{
			name: "consumer before producer",
			mutate: func(t *testing.T, b *NetBuilder) {
				mustOp(t, b, 0).AddInput("r1")
			},
			want: []string{ErrForwardReference},
		},
		{
			name: "operator reads its own output",
			mutate: func(t *testing.T, b *NetBuilder) {
				mustOp(t, b, 1).AddInput("r1")
			},
			want: []string{ErrForwardReference},
		},
		{
			name: "node_input port out of range",
			mutate: func(t *testing.T, b *NetBuilder) {
				mustOp(t, b, 1).AddNodeInput(1, 3)
			},
			want: []string{ErrUnresolvedNodeRef},
		},
		{
			name: "node_input unknown node",
			mutate: func(t *testing.T, b *NetBuilder) {
				mustOp(t, b, 1).AddNodeInput(42, 0)
			},
			want: []string{ErrUnresolvedNodeRef},
		},
		{
			name: "node_input reads a later operator",
			mutate: func(t *testing.T, b *NetBuilder) {
				mustOp(t, b, 0).AddNodeInput(2, 0)
			},
			want: []string{ErrForwardReference},
		},
		{
			name: "node_input reads its own operator",
			mutate: func(t *testing.T, b *NetBuilder) {
				mustOp(t, b, 1).AddNodeInput(2, 0)
			},
			want: []string{ErrForwardReference},
		},
		{
			name: "node_input cycle",
			mutate: func(t *testing.T, b *NetBuilder) {
				mustOp(t, b, 0).AddNodeInput(2, 0)
				mustOp(t, b, 1).AddNodeInput(1, 0)
			},
			want: []string{ErrForwardReference},
		},
		{
			name: "graph output not produced",
			mutate: func(t *testing.T, b *NetBuilder) {
				info, err := NewOutputInfo("missing", 9, 0, DTFloat, nil)
				require.NoError(t, err)
				b.AddOutputInfo(info)
			},
			want: []string{ErrUnresolvedGraphOut},
		},
		{
			name: "output_shape length",
			mutate: func(t *testing.T, b *NetBuilder) {
				mustOp(t, b, 0).SetOutputShapes([]OutputShape{NewOutputShape(1), NewOutputShape(2)})
			},
			want: []string{ErrOutputShapeLength},
		},
		{
			name: "output_type length",
			mutate: func(t *testing.T, b *NetBuilder) {
				mustOp(t, b, 0).SetOutputTypes([]DataType{DTFloat, DTFloat})
			},
			want: []string{ErrOutputTypeLength},
		},
		{
			name: "boundary over budget",
			mutate: func(t *testing.T, b *NetBuilder) {
				info, err := NewInputInfo("in2", 101, 100, DTFloat, []int32{1, 4, 4, 3})
				require.NoError(t, err)
				b.AddInputInfo(info)
			},
			want: []string{ErrBufferSize},
		},
		{
			name: "out_max_byte_size length",
			mutate: func(t *testing.T, b *NetBuilder) {
				mustOp(t, b, 0).SetOutMaxByteSizes([]int32{512, 512})
			},
			want: []string{ErrOutMaxBytesLength},
		},
		{
			name: "mem_id without arena",
			mutate: func(t *testing.T, b *NetBuilder) {
				mustOp(t, b, 0).SetMemID(9)
			},
			want: []string{ErrUnknownMemID},
		},
		{
			name: "mem_id missing from arena",
			mutate: func(t *testing.T, b *NetBuilder) {
				b.MemArena().AddBlock(NewMemoryBlock(5, 8, 4))
				mustOp(t, b, 0).SetMemID(9)
			},
			want: []string{ErrUnknownMemID},
		},
		{
			name: "block too small",
			mutate: func(t *testing.T, b *NetBuilder) {
				b.MemArena().AddBlock(NewMemoryBlock(5, 4, 4))
				mustOp(t, b, 0).SetMemID(5)
			},
			want: []string{ErrBlockTooSmall},
		},
		{
			name: "duplicate mem_id in arena",
			mutate: func(t *testing.T, b *NetBuilder) {
				b.MemArena().AddBlock(NewMemoryBlock(5, 8, 4))
				b.MemArena().AddBlock(NewMemoryBlock(5, 16, 4))
			},
			want: []string{ErrDuplicateMemID},
		},
		{
			name: "unnamed operator",
			mutate: func(t *testing.T, b *NetBuilder) {
				b.AddOp().SetType("Noop")
			},
			want: []string{ErrMissingField},
		},
		{
			name: "untyped operator",
			mutate: func(t *testing.T, b *NetBuilder) {
				b.AddOp().SetName("noop")
			},
			want: []string{ErrMissingField},
		},
		{
			name: "duplicate operator name",
			mutate: func(t *testing.T, b *NetBuilder) {
				b.AddOp().SetName("conv1").SetType("Noop")
			},
			want: []string{ErrDuplicateOpName},
		},
		{
			name: "duplicate node_id",
			mutate: func(t *testing.T, b *NetBuilder) {
				b.AddOp().SetName("relu2").SetType("Activation").
					AddInput("c1").AddOutput("r2").SetNodeID(2)
				mustOp(t, b, 2).AddNodeInput(2, 0)
			},
			want: []string{ErrDuplicateNodeID},
		},
		{
			name: "unset node_ids may repeat",
			mutate: func(t *testing.T, b *NetBuilder) {
				b.AddOp().SetName("relu2").SetType("Activation").AddInput("c1").AddOutput("r2")
				b.AddOp().SetName("relu3").SetType("Activation").AddInput("c1").AddOutput("r3")
			},
			want: []string{},
		},
		{
			name: "output extent overflows",
			mutate: func(t *testing.T, b *NetBuilder) {
				b.MemArena().AddBlock(NewMemoryBlock(5, 1, 1))
				mustOp(t, b, 0).SetMemID(5).SetOutputShapes([]OutputShape{NewOutputShape(1<<32, 1<<32, 1, 4)})
			},
			want: []string{ErrBlockTooSmall},
		},
		{
			name: "duplicate tensor name",
			mutate: func(t *testing.T, b *NetBuilder) {
				b.AddTensor(b.Tensors()[0])
			},
			want: []string{ErrDuplicateTensor},
		},
		{
			name: "invalid output_type",
			mutate: func(t *testing.T, b *NetBuilder) {
				mustOp(t, b, 0).SetOutputTypes([]DataType{DTInvalid})
			},
			want: []string{ErrInvalidDataType},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := chainBuilder(t)
			tt.mutate(t, b)

			errs := b.Validate()
			assert.Equal(t, tt.want, errs.Codes(), "errors: %v", errs)
		})
	}
}

func TestValidateNodeInputsThatResolve(t *testing.T) {
	b := chainBuilder(t)
	mustOp(t, b, 0).AddNodeInput(100, 0)
	mustOp(t, b, 1).AddNodeInput(1, 0)

	assert.Nil(t, b.Validate())
}

func TestValidateCollectsAllErrors(t *testing.T) {
	b := chainBuilder(t)
	mustOp(t, b, 0).SetOutputShapes(nil).SetOutputTypes([]DataType{DTFloat, DTFloat})
	mustOp(t, b, 1).AddInput("ghost")
	b.AddOp().SetType("Noop")

	errs := b.Validate()
	assert.Equal(t, []string{ErrMissingField, ErrOutputTypeLength, ErrUnresolvedInput}, errs.Codes())
	assert.Contains(t, errs.Error(), "3 errors")
}

func TestOutputShapeMismatchNamesOperator(t *testing.T) {
	b := chainBuilder(t)
	mustOp(t, b, 1).SetOutputShapes([]OutputShape{NewOutputShape(1), NewOutputShape(2)})

	_, err := b.Build()
	errs, ok := AsValidationErrors(err)
	require.True(t, ok)
	require.Len(t, errs, 1)

	e := errs[0]
	assert.Equal(t, ErrOutputShapeLength, e.Code)
	assert.Equal(t, "relu1", e.Subject)
	assert.Equal(t, "op[1].output_shape", e.Field)
	assert.Contains(t, e.Message, "relu1")
	assert.Equal(t, "shape", Category(e.Code))
}

func TestValidationErrorFormatting(t *testing.T) {
	e := ValidationError{Code: ErrLiveAlias, Field: "op[2].mem_id", Message: "conflict"}
	assert.Equal(t, "[E221] op[2].mem_id: conflict", e.Error())
	assert.Equal(t, "aliasing", Category(e.Code))
	assert.Equal(t, "unknown", Category("E999"))

	errs := ValidationErrors{e}
	assert.Equal(t, "graph validation failed: [E221] op[2].mem_id: conflict", errs.Error())
	assert.True(t, errs.Has(ErrLiveAlias))
	assert.False(t, errs.Has(ErrBlockTooSmall))
}
