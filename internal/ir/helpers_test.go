package ir

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// chainBuilder returns in -> conv1 -> relu1 -> pool1 -> out, with a
// constant weight tensor "w" feeding conv1. Every output is NHWC
// [1,4,4,8], which needs an 8x4 image extent.
func chainBuilder(t *testing.T) *NetBuilder {
	t.Helper()

	b := NewNetBuilder().SetName("chain").SetVersion("1.0")

	in, err := NewInputInfo("in", 100, 192, DTFloat, []int32{1, 4, 4, 3})
	require.NoError(t, err)
	b.AddInputInfo(in)

	wData, err := EncodeFloat32s(make([]float32, 24), DTFloat)
	require.NoError(t, err)
	w, err := NewTensorProto("w", wData, []int64{8, 3}, DTFloat, 0)
	require.NoError(t, err)
	b.AddTensor(w)

	shape := []OutputShape{NewOutputShape(1, 4, 4, 8)}
	types := []DataType{DTFloat}

	conv := b.AddOp().SetName("conv1").SetType("Conv2D").
		AddInput("in", "w").AddOutput("c1").
		SetOutputShapes(shape).SetOutputTypes(types).SetNodeID(1)
	conv.AddArg().SetName("strides")
	b.AddOp().SetName("relu1").SetType("Activation").
		AddInput("c1").AddOutput("r1").
		SetOutputShapes(shape).SetOutputTypes(types).SetNodeID(2)
	b.AddOp().SetName("pool1").SetType("Pooling").
		AddInput("r1").AddOutput("out").
		SetOutputShapes(shape).SetOutputTypes(types).SetNodeID(3)

	out, err := NewOutputInfo("out", 3, 512, DTFloat, []int32{1, 4, 4, 8})
	require.NoError(t, err)
	b.AddOutputInfo(out)
	return b
}

// sharedPlan aliases conv1 and pool1 onto block 5. Their live ranges do
// not overlap.
var sharedPlan = PlannerFunc(func(_ context.Context, v *PlanningView) error {
	if err := v.AddBlock(NewMemoryBlock(5, 8, 4)); err != nil {
		return err
	}
	if err := v.AssignMemID(0, 5); err != nil {
		return err
	}
	return v.AssignMemID(2, 5)
})

func mustOp(t *testing.T, b *NetBuilder, idx int) *OpBuilder {
	t.Helper()
	op, err := b.Op(idx)
	require.NoError(t, err)
	return op
}
