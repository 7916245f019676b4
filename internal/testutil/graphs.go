// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/netir/internal/ir"
)

// ChainBuilder returns the reference chain graph as a mutable builder:
//
//	in -> conv1 -> relu1 -> pool1 -> out
//
// conv1 also reads the constant weight tensor "w". Every op produces an
// NHWC [1,4,4,8] float output. No memory plan is applied.
func ChainBuilder(t testing.TB) *ir.NetBuilder {
	t.Helper()

	b := ir.NewNetBuilder().SetName("chain").SetVersion("1.0")

	in, err := ir.NewInputInfo("in", 100, 192, ir.DTFloat, []int32{1, 4, 4, 3})
	require.NoError(t, err)
	b.AddInputInfo(in)

	wData, err := ir.EncodeFloat32s(make([]float32, 24), ir.DTFloat)
	require.NoError(t, err)
	w, err := ir.NewTensorProto("w", wData, []int64{8, 3}, ir.DTFloat, 0)
	require.NoError(t, err)
	b.AddTensor(w)

	shape := []ir.OutputShape{ir.NewOutputShape(1, 4, 4, 8)}
	types := []ir.DataType{ir.DTFloat}

	b.AddOp().SetName("conv1").SetType("Conv2D").
		AddInput("in", "w").AddOutput("c1").
		SetOutputShapes(shape).SetOutputTypes(types).SetNodeID(1)
	b.AddOp().SetName("relu1").SetType("Activation").
		AddInput("c1").AddOutput("r1").
		SetOutputShapes(shape).SetOutputTypes(types).SetNodeID(2)
	b.AddOp().SetName("pool1").SetType("Pooling").
		AddInput("r1").AddOutput("out").
		SetOutputShapes(shape).SetOutputTypes(types).SetNodeID(3)

	out, err := ir.NewOutputInfo("out", 3, 512, ir.DTFloat, []int32{1, 4, 4, 8})
	require.NoError(t, err)
	b.AddOutputInfo(out)
	return b
}

// SharedBlockPlan puts conv1 and pool1 on memory block 5 (8x4). Their
// live ranges do not overlap, so the plan validates.
var SharedBlockPlan = ir.PlannerFunc(func(_ context.Context, v *ir.PlanningView) error {
	if err := v.AddBlock(ir.NewMemoryBlock(5, 8, 4)); err != nil {
		return err
	}
	if err := v.AssignMemID(0, 5); err != nil {
		return err
	}
	return v.AssignMemID(2, 5)
})

// ChainNet returns the chain graph frozen without a memory plan.
func ChainNet(t testing.TB) *ir.NetDef {
	t.Helper()
	net, err := ChainBuilder(t).Build()
	require.NoError(t, err)
	return net
}

// PlannedChainNet returns the chain graph frozen with SharedBlockPlan.
func PlannedChainNet(t testing.TB) *ir.NetDef {
	t.Helper()
	b := ChainBuilder(t)
	require.NoError(t, b.ApplyPlan(context.Background(), SharedBlockPlan))
	net, err := b.Build()
	require.NoError(t, err)
	return net
}
