package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainNet_Valid(t *testing.T) {
	net := ChainNet(t)

	assert.Equal(t, 3, net.OpSize())
	assert.False(t, net.HasMemArena())
	_, ok := net.OpByName("relu1")
	assert.True(t, ok)
}

func TestPlannedChainNet_SharesBlock(t *testing.T) {
	net := PlannedChainNet(t)

	require.True(t, net.HasMemArena())
	block, ok := net.MemBlock(5)
	require.True(t, ok)
	assert.Equal(t, uint32(8), block.X())
	assert.Equal(t, uint32(4), block.Y())

	for _, idx := range []int{0, 2} {
		op, err := net.Op(idx)
		require.NoError(t, err)
		memID, err := op.MemID()
		require.NoError(t, err)
		assert.Equal(t, int32(5), memID)
	}
}
