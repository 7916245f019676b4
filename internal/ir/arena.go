package ir

import (
	"fmt"
	"math"
	"slices"
)

// Extent is a 2-D buffer size. Image-backed buffers use X as width in
// 4-channel pixels and Y as height; linear buffers use Y == 1.
type Extent struct {
	X uint32 `json:"x"`
	Y uint32 `json:"y"`
}

func (e Extent) String() string { return fmt.Sprintf("%dx%d", e.X, e.Y) }

// Covers reports whether e is at least as large as other on both axes.
func (e Extent) Covers(other Extent) bool {
	return e.X >= other.X && e.Y >= other.Y
}

// RequiredExtent returns the extent an output of the given shape occupies.
// Rank-4 NHWC shapes use the image layout (W*ceil(C/4), N*H); every other
// rank is laid out linearly as (product(dims), 1). ok is false when the
// shape has unknown (negative) dims or does not fit in 32 bits.
func RequiredExtent(shape OutputShape) (Extent, bool) {
	if !shape.Known() {
		return Extent{}, false
	}
	var xy [2][]int64
	if dims := shape.dims; len(dims) == 4 {
		n, h, w, c := dims[0], dims[1], dims[2], dims[3]
		pixels := c / 4
		if c%4 != 0 {
			pixels++
		}
		xy = [2][]int64{{w, pixels}, {n, h}}
	} else {
		xy = [2][]int64{shape.dims, nil}
	}
	x, err := elementCount(xy[0])
	if err != nil || x > math.MaxUint32 {
		return Extent{}, false
	}
	y, err := elementCount(xy[1])
	if err != nil || y > math.MaxUint32 {
		return Extent{}, false
	}
	return Extent{X: uint32(x), Y: uint32(y)}, true
}

// MemoryBlock is one reusable physical buffer region.
type MemoryBlock struct {
	memID int32
	x, y  uint32
}

// NewMemoryBlock returns a block with the given id and extent.
func NewMemoryBlock(memID int32, x, y uint32) MemoryBlock {
	return MemoryBlock{memID: memID, x: x, y: y}
}

func (b MemoryBlock) MemID() int32   { return b.memID }
func (b MemoryBlock) X() uint32      { return b.x }
func (b MemoryBlock) Y() uint32      { return b.y }
func (b MemoryBlock) Extent() Extent { return Extent{X: b.x, Y: b.y} }

// Capacity returns x*y.
func (b MemoryBlock) Capacity() uint64 { return uint64(b.x) * uint64(b.y) }

// Accommodates reports whether the block is large enough for need.
func (b MemoryBlock) Accommodates(need Extent) bool { return b.Extent().Covers(need) }

// MemoryArena is the ordered catalog of blocks operator outputs may alias.
// Its zero value is an empty arena.
type MemoryArena struct {
	blocks []MemoryBlock
}

// AddBlock appends a block.
func (a *MemoryArena) AddBlock(b MemoryBlock) {
	a.blocks = append(a.blocks, b)
}

// SetBlocks replaces the block list.
func (a *MemoryArena) SetBlocks(blocks []MemoryBlock) {
	a.blocks = slices.Clone(blocks)
}

// Len returns the number of blocks.
func (a *MemoryArena) Len() int { return len(a.blocks) }

// Blocks returns a copy of the block list.
func (a *MemoryArena) Blocks() []MemoryBlock { return slices.Clone(a.blocks) }

// BlockAt returns block i or a *BoundsError.
func (a *MemoryArena) BlockAt(i int) (MemoryBlock, error) {
	if err := checkIndex("mem_arena", "mem_block", i, len(a.blocks)); err != nil {
		return MemoryBlock{}, err
	}
	return a.blocks[i], nil
}

// Block looks a block up by mem_id. If mem_ids repeat, the first wins;
// Validate reports the duplicate.
func (a *MemoryArena) Block(memID int32) (MemoryBlock, bool) {
	for _, b := range a.blocks {
		if b.memID == memID {
			return b, true
		}
	}
	return MemoryBlock{}, false
}

func (a MemoryArena) clone() MemoryArena {
	return MemoryArena{blocks: slices.Clone(a.blocks)}
}
