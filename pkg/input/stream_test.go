package input

import (
	"testing"

	"github.com/brightforge/voxclient/pkg/block"
	"github.com/brightforge/voxclient/pkg/chunk"
	"github.com/brightforge/voxclient/pkg/coords"
)

func contains(ps []coords.ChunkPos, want coords.ChunkPos) bool {
	for _, p := range ps {
		if p == want {
			return true
		}
	}
	return false
}

func TestFetchCloseChunksRequestsMissingWithinSphere(t *testing.T) {
	reg := chunk.NewRegistry()
	center := coords.ChunkPos{}

	plan := FetchCloseChunks(reg, center, 1, 1)

	if !contains(plan.ToRequest, center) {
		t.Error("expected the center chunk itself to be requested")
	}
	if !contains(plan.ToRequest, coords.ChunkPos{X: 1}) {
		t.Error("expected an adjacent chunk within render distance to be requested")
	}
	if contains(plan.ToRequest, coords.ChunkPos{X: 2}) {
		t.Error("chunk outside render distance should not be requested")
	}
}

func TestFetchCloseChunksDoesNotRerequestPresent(t *testing.T) {
	reg := chunk.NewRegistry()
	center := coords.ChunkPos{}
	reg.GetOrCreate(center, false)

	plan := FetchCloseChunks(reg, center, 0, 0)
	if contains(plan.ToRequest, center) {
		t.Error("an already-registered chunk should not be re-requested")
	}
}

func TestFetchCloseChunksEvictsBeyondHysteresis(t *testing.T) {
	reg := chunk.NewRegistry()
	center := coords.ChunkPos{}
	far := coords.ChunkPos{X: 5}
	reg.GetOrCreate(far, false)

	plan := FetchCloseChunks(reg, center, 1, 1) // evict radius 2
	if !contains(plan.ToEvict, far) {
		t.Error("expected far chunk beyond renderDist+hysteresis to be evicted")
	}
}

func TestFetchCloseChunksKeepsWithinHysteresisBand(t *testing.T) {
	reg := chunk.NewRegistry()
	center := coords.ChunkPos{}
	near := coords.ChunkPos{X: 2}
	reg.GetOrCreate(near, false)

	plan := FetchCloseChunks(reg, center, 1, 1) // evict radius 2, dist is exactly 2
	if contains(plan.ToEvict, near) {
		t.Error("chunk within renderDist+hysteresis should not be evicted")
	}
}

func TestFetchCloseChunksEnqueuesMeshableChunks(t *testing.T) {
	reg := chunk.NewRegistry()
	center := coords.ChunkPos{}
	d := reg.GetOrCreate(center, false)
	d.State = chunk.StateUnmeshed
	for i := range d.Blocks {
		d.Blocks[i] = block.Air
	}
	// Wire all 6 neighbors present so Meshable() is true.
	for i := 0; i < 6; i++ {
		reg.GetOrCreate(center.Neighbor(i), false)
	}

	plan := FetchCloseChunks(reg, center, 1, 1)
	if !contains(plan.ToMesh, center) {
		t.Error("expected the fully-surrounded Unmeshed chunk to be enqueued for meshing")
	}
}

func TestFetchCloseChunksSkipsNonMeshableUnmeshed(t *testing.T) {
	reg := chunk.NewRegistry()
	center := coords.ChunkPos{}
	d := reg.GetOrCreate(center, false)
	d.State = chunk.StateUnmeshed
	// No neighbors registered: not Meshable.

	plan := FetchCloseChunks(reg, center, 1, 1)
	if contains(plan.ToMesh, center) {
		t.Error("a chunk missing neighbors should not be enqueued for meshing")
	}
}

func TestFetchCloseChunksOrdersNearestFirst(t *testing.T) {
	reg := chunk.NewRegistry()
	center := coords.ChunkPos{}

	plan := FetchCloseChunks(reg, center, 2, 0)
	for i := 1; i < len(plan.ToRequest); i++ {
		d0 := coords.OrthogonalDist(center, plan.ToRequest[i-1])
		d1 := coords.OrthogonalDist(center, plan.ToRequest[i])
		if d1 < d0 {
			t.Fatalf("ToRequest not ordered nearest-first at index %d: %d then %d", i, d0, d1)
		}
	}
}
