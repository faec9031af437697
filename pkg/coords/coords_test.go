package coords

import "testing"

func TestRoundTrip(t *testing.T) {
	cases := []BlockPos{
		{X: 0, Y: 0, Z: 0},
		{X: 31, Y: 31, Z: 31},
		{X: 32, Y: 32, Z: 32},
		{X: -1, Y: -1, Z: -1},
		{X: -33, Y: 5, Z: -32},
	}
	for _, b := range cases {
		c := b.Chunk()
		inner := b.Inner()
		got := FromChunkInner(c, inner)
		if got != b {
			t.Errorf("round trip mismatch for %+v: chunk=%+v inner=%+v got=%+v", b, c, inner, got)
		}
	}
}

func TestNegativeFloorDiv(t *testing.T) {
	b := BlockPos{X: -1, Y: -1, Z: -1}
	if got := b.Chunk(); got != (ChunkPos{X: -1, Y: -1, Z: -1}) {
		t.Errorf("chunk() = %+v, want (-1,-1,-1)", got)
	}
	inner := b.Inner()
	want := InnerChunkPos{X: ChunkSize - 1, Y: ChunkSize - 1, Z: ChunkSize - 1}
	if inner != want {
		t.Errorf("inner() = %+v, want %+v", inner, want)
	}
}

func TestOrthogonalDist(t *testing.T) {
	a := ChunkPos{X: 0, Y: 0, Z: 0}
	b := ChunkPos{X: 3, Y: -1, Z: 2}
	if d := OrthogonalDist(a, b); d != 3 {
		t.Errorf("OrthogonalDist = %d, want 3", d)
	}
}

func TestNeighborOffsetsCoverSixAxes(t *testing.T) {
	seen := map[ChunkPos]bool{}
	origin := ChunkPos{}
	for i := 0; i < 6; i++ {
		n := origin.Neighbor(i)
		if OrthogonalDist(origin, n) != 1 {
			t.Errorf("neighbor %d is not distance 1: %+v", i, n)
		}
		seen[n] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 distinct neighbors, got %d", len(seen))
	}
}

func TestFragmentIndexUnique(t *testing.T) {
	seen := make(map[int]bool)
	for x := 0; x < ChunkSize; x++ {
		for y := 0; y < ChunkSize; y++ {
			idx := (FragmentPos{X: x, Y: y}).Index()
			if seen[idx] {
				t.Fatalf("duplicate fragment index %d", idx)
			}
			seen[idx] = true
		}
	}
	if len(seen) != FragmentsPerChunk {
		t.Errorf("got %d distinct fragment indices, want %d", len(seen), FragmentsPerChunk)
	}
}
