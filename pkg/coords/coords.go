// Package coords implements the chunk coordinate arithmetic shared by every
// actor: the continuous world-space position of the player, the integer
// block grid it occupies, the chunk grid that partitions it, and the
// in-chunk and fragment addressing used by streaming and meshing.
package coords

import "math"

// ChunkSize is the edge length of a chunk, in blocks. It must be a multiple
// of 8; FragmentsPerChunk and the mesher's five-bit packed coordinates both
// assume the default of 32.
const ChunkSize = 32

// FragmentsPerChunk is the number of (x,y) column slices a chunk payload is
// split into for wire transfer. One fragment carries ChunkSize blocks (the
// full Z column at that x,y).
const FragmentsPerChunk = ChunkSize * ChunkSize

// WorldPos is a continuous player/entity position.
type WorldPos struct {
	X, Y, Z float64
}

// BlockPos is an integer block coordinate.
type BlockPos struct {
	X, Y, Z int64
}

// ChunkPos is a chunk grid coordinate.
type ChunkPos struct {
	X, Y, Z int64
}

// InnerChunkPos is a block's position within its chunk, each component in
// [0, ChunkSize).
type InnerChunkPos struct {
	X, Y, Z uint8
}

// FragmentPos identifies one of FragmentsPerChunk column slices of a chunk.
type FragmentPos struct {
	X, Y int
}

// floorDiv performs floor division, unlike Go's truncating integer division.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// floorMod returns a value in [0, b) regardless of the sign of a.
func floorMod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// Block floor-divides a world position down to its containing block.
func (w WorldPos) Block() BlockPos {
	return BlockPos{
		X: int64(math.Floor(w.X)),
		Y: int64(math.Floor(w.Y)),
		Z: int64(math.Floor(w.Z)),
	}
}

// Chunk returns the chunk this position falls within.
func (w WorldPos) Chunk() ChunkPos {
	return w.Block().Chunk()
}

// Chunk floor-divides a block position into its containing chunk. This is
// the "high" half of the BlockPos -> (ChunkPos, InnerChunkPos) split.
func (b BlockPos) Chunk() ChunkPos {
	return ChunkPos{
		X: floorDiv(b.X, ChunkSize),
		Y: floorDiv(b.Y, ChunkSize),
		Z: floorDiv(b.Z, ChunkSize),
	}
}

// Inner returns the block's position within its chunk, the "low" half of
// the split. Components are always in [0, ChunkSize).
func (b BlockPos) Inner() InnerChunkPos {
	return InnerChunkPos{
		X: uint8(floorMod(b.X, ChunkSize)),
		Y: uint8(floorMod(b.Y, ChunkSize)),
		Z: uint8(floorMod(b.Z, ChunkSize)),
	}
}

// FromChunkInner reconstructs a BlockPos from a chunk and its inner
// position. Round-trips with Chunk/Inner for any BlockPos, including
// negative components.
func FromChunkInner(c ChunkPos, inner InnerChunkPos) BlockPos {
	return BlockPos{
		X: c.X*ChunkSize + int64(inner.X),
		Y: c.Y*ChunkSize + int64(inner.Y),
		Z: c.Z*ChunkSize + int64(inner.Z),
	}
}

// OrthogonalDist returns the Chebyshev (L-infinity) distance between two
// chunk coordinates: max(|dx|, |dy|, |dz|).
func OrthogonalDist(a, b ChunkPos) int64 {
	dx := abs64(a.X - b.X)
	dy := abs64(a.Y - b.Y)
	dz := abs64(a.Z - b.Z)
	m := dx
	if dy > m {
		m = dy
	}
	if dz > m {
		m = dz
	}
	return m
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Add returns the componentwise sum of two chunk positions.
func (c ChunkPos) Add(dx, dy, dz int64) ChunkPos {
	return ChunkPos{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

// NeighborOffsets holds the six axis-aligned unit offsets, indexed the
// same way as the adj_chunks bit mask (bit i set means neighbor i present).
var NeighborOffsets = [6]ChunkPos{
	{X: -1, Y: 0, Z: 0},
	{X: 1, Y: 0, Z: 0},
	{X: 0, Y: -1, Z: 0},
	{X: 0, Y: 1, Z: 0},
	{X: 0, Y: 0, Z: -1},
	{X: 0, Y: 0, Z: 1},
}

// Neighbor returns the i'th axis-aligned neighbor of c (0..5), matching
// NeighborOffsets.
func (c ChunkPos) Neighbor(i int) ChunkPos {
	o := NeighborOffsets[i]
	return c.Add(o.X, o.Y, o.Z)
}

// AllNeighborsMask is the adj_chunks value when all six neighbors are
// present.
const AllNeighborsMask = 0b111111

// WorldOrigin returns the world-space position of this chunk's (0,0,0)
// corner.
func (c ChunkPos) WorldOrigin() WorldPos {
	return WorldPos{
		X: float64(c.X * ChunkSize),
		Y: float64(c.Y * ChunkSize),
		Z: float64(c.Z * ChunkSize),
	}
}

// Index converts an inner chunk position to an index into a flat
// ChunkSize^3 array, X-major.
func (i InnerChunkPos) Index() int {
	return int(i.X)*ChunkSize*ChunkSize + int(i.Y)*ChunkSize + int(i.Z)
}

// Fragment returns the column this inner position belongs to.
func (i InnerChunkPos) Fragment() FragmentPos {
	return FragmentPos{X: int(i.X), Y: int(i.Y)}
}

// Index returns the fragment's bit position in the FragmentsPerChunk-sized
// bitset used for de-duplication.
func (f FragmentPos) Index() int {
	return f.X*ChunkSize + f.Y
}
