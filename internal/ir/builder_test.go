package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestAddOpGrowsByOne(t *testing.T) {
	b := NewNetBuilder()
	for i := range 3 {
		op := b.AddOp().SetName("n")
		assert.Equal(t, i+1, b.OpSize())
		last, err := b.Op(b.OpSize() - 1)
		require.NoError(t, err)
		assert.Same(t, op.View(), last.View(), "handle refers to the last operator")
	}
}

func TestOpHandlesSurviveAppends(t *testing.T) {
	b := NewNetBuilder()
	first := b.AddOp()
	for range 64 {
		b.AddOp()
	}
	first.SetName("first")

	got, err := b.Op(0)
	require.NoError(t, err)
	name, err := got.View().Name()
	require.NoError(t, err)
	assert.Equal(t, "first", name)
}

func TestBuilderBounds(t *testing.T) {
	b := chainBuilder(t)

	_, err := b.Op(3)
	require.Error(t, err)
	assert.True(t, IsBoundsError(err))
	assert.Contains(t, err.Error(), "index 3 out of range [0,3)")

	_, err = b.Op(-1)
	assert.True(t, IsBoundsError(err))

	op := mustOp(t, b, 0).View()
	_, err = op.Input(2)
	assert.True(t, IsBoundsError(err))
	_, err = op.Output(0)
	assert.NoError(t, err)
}

func TestOperatorPresence(t *testing.T) {
	op := NewOpBuilder().View()

	_, err := op.Name()
	assert.True(t, IsPresenceError(err))
	_, err = op.Type()
	assert.True(t, IsPresenceError(err))

	memID, err := op.MemID()
	assert.True(t, IsPresenceError(err))
	assert.Equal(t, MemIDUnassigned, memID)
}

func TestMemIDClear(t *testing.T) {
	op := NewOpBuilder().SetName("x").SetMemID(5)
	assert.True(t, op.View().HasMemID())

	op.ClearMemID()
	assert.False(t, op.View().HasMemID())
}

func TestBuildFreezesDeepCopy(t *testing.T) {
	b := chainBuilder(t)
	net, err := b.Build()
	require.NoError(t, err)

	mustOp(t, b, 0).SetName("renamed").AddOutput("extra")
	mustOp(t, b, 0).View().args[0].SetI(9)
	b.SetName("other")

	op, err := net.Op(0)
	require.NoError(t, err)
	name, _ := op.Name()
	assert.Equal(t, "conv1", name)
	assert.Equal(t, []string{"c1"}, op.Outputs())
	arg, err := op.Arg(0)
	require.NoError(t, err)
	assert.False(t, arg.HasI())

	netName, err := net.Name()
	require.NoError(t, err)
	assert.Equal(t, "chain", netName)
}

func TestBuildSharesTensorBytes(t *testing.T) {
	b := chainBuilder(t)
	net, err := b.Build()
	require.NoError(t, err)

	src := b.Tensors()[0].Data()
	frozen, ok := net.Tensor("w")
	require.True(t, ok)
	assert.Same(t, &src[0], &frozen.Data()[0])
}

func TestBuildRejectsInvalidGraph(t *testing.T) {
	b := chainBuilder(t)
	mustOp(t, b, 1).AddInput("ghost")

	net, err := b.Build()
	require.Error(t, err)
	assert.Nil(t, net)
	assert.True(t, IsValidationError(err))

	errs, ok := AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{ErrUnresolvedInput}, errs.Codes())
}

func TestNetDefReaders(t *testing.T) {
	net, err := chainBuilder(t).Build()
	require.NoError(t, err)

	assert.Equal(t, 3, net.OpSize())
	idx, ok := net.OpByName("pool1")
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	var names []string
	for _, op := range net.Ops() {
		names = append(names, op.Label())
	}
	assert.Equal(t, []string{"conv1", "relu1", "pool1"}, names)

	_, err = net.MemArena()
	assert.True(t, IsPresenceError(err))
	assert.False(t, net.HasMemArena())

	_, err = net.Op(3)
	assert.True(t, IsBoundsError(err))

	require.Len(t, net.InputInfos(), 1)
	assert.Equal(t, "in", net.InputInfos()[0].Name())
	assert.Equal(t, int64(512), net.OutputInfos()[0].ByteSize())
}

func TestNetDefBuilderRoundTrip(t *testing.T) {
	net, err := chainBuilder(t).Build()
	require.NoError(t, err)

	b := net.Builder()
	require.NoError(t, b.RemoveOp(2))
	assert.Equal(t, 3, net.OpSize(), "frozen graph is unaffected")

	// pool1 produced the graph output, so the edited graph no longer
	// validates until the output is re-homed.
	assert.True(t, b.Validate().Has(ErrUnresolvedGraphOut))

	mustOp(t, b, 1).SetOutputs([]string{"out"})
	edited, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 2, edited.OpSize())
	assert.NotEqual(t, MustGraphID(net), MustGraphID(edited))
}

func TestRemoveOpBounds(t *testing.T) {
	err := NewNetBuilder().RemoveOp(0)
	assert.True(t, IsBoundsError(err))
}

func TestOpBuilderCopyFrom(t *testing.T) {
	b := chainBuilder(t)
	src := mustOp(t, b, 0).View()

	dst := NewOpBuilder().CopyFrom(src)
	dst.AddInput("more")
	dst.AddArg().SetName("extra")

	assert.Equal(t, []string{"in", "w"}, src.Inputs())
	assert.Equal(t, 1, src.ArgSize())
	assert.Equal(t, 2, dst.View().ArgSize())
}

func TestNetDefConcurrentReaders(t *testing.T) {
	b := chainBuilder(t)
	require.NoError(t, b.ApplyPlan(t.Context(), sharedPlan))
	net, err := b.Build()
	require.NoError(t, err)

	want := MustGraphID(net)
	var g errgroup.Group
	for range 16 {
		g.Go(func() error {
			for i, op := range net.Ops() {
				if _, err := op.Input(0); err != nil {
					return err
				}
				if _, err := net.Op(i); err != nil {
					return err
				}
			}
			if _, err := net.Resolve(); err != nil {
				return err
			}
			id, err := GraphID(net)
			if err != nil {
				return err
			}
			assert.Equal(t, want, id)
			assert.Len(t, net.LiveRanges(), 3)
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
