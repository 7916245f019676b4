package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgumentScalarsAreIndependent(t *testing.T) {
	a := NewArgument("alpha")
	a.SetF(1.5)
	a.SetI(7)

	assert.True(t, a.HasF())
	assert.True(t, a.HasI())
	assert.False(t, a.HasS())
	assert.Equal(t, []ScalarKind{KindFloat, KindInt}, a.Kinds())

	f, err := a.F()
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f)
	assert.Equal(t, int64(7), a.MustI())
}

func TestArgumentPresence(t *testing.T) {
	a := NewArgument("mode")

	_, err := a.S()
	require.Error(t, err)
	assert.True(t, IsPresenceError(err))
	assert.Contains(t, err.Error(), `argument "mode"`)
	assert.Contains(t, err.Error(), "field s")

	assert.Panics(t, func() { a.MustF() })
}

func TestArgumentCloneIsDeep(t *testing.T) {
	a := NewArgument("pads")
	a.AddInts(1, 1, 1, 1)
	a.AddStrings("same")

	c := a.Clone()
	c.AddInts(2)
	c.SetStrings([]string{"valid"})

	assert.Equal(t, []int64{1, 1, 1, 1}, a.Ints())
	assert.Equal(t, []string{"same"}, a.Strings())
	assert.Equal(t, []int64{1, 1, 1, 1, 2}, c.Ints())
}

func TestArgumentCopyFrom(t *testing.T) {
	src := NewArgument("scale")
	src.SetF(0.5)
	src.AddFloats(1, 2)

	var dst Argument
	dst.SetS("stale")
	dst.CopyFrom(&src)

	assert.True(t, dst.Equal(&src))
	assert.False(t, dst.HasS(), "CopyFrom replaces presence flags")

	src.AddFloats(3)
	assert.Equal(t, []float32{1, 2}, dst.Floats())
}

func TestArgumentGettersReturnCopies(t *testing.T) {
	a := NewArgument("shape")
	a.AddInts(1, 2, 3)

	got := a.Ints()
	got[0] = 99
	assert.Equal(t, []int64{1, 2, 3}, a.Ints())
}

func TestArgByNameLastMatchWins(t *testing.T) {
	op := NewOpBuilder()
	op.AddArg().SetName("axis")
	op.AddArg().SetName("other")
	last := op.AddArg()
	last.SetName("axis")
	last.SetI(3)

	got, ok := op.View().ArgByName("axis")
	require.True(t, ok)
	assert.Equal(t, int64(3), got.MustI())

	_, ok = op.View().ArgByName("missing")
	assert.False(t, ok)
}

func TestAddArgHandleSurvivesAppends(t *testing.T) {
	op := NewOpBuilder()
	first := op.AddArg()
	for range 32 {
		op.AddArg()
	}
	first.SetName("first")
	first.SetI(1)

	got, err := op.View().Arg(0)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Name())
	assert.Equal(t, int64(1), got.MustI())
}
