package chunk

import (
	"testing"

	"github.com/brightforge/voxclient/pkg/block"
	"github.com/brightforge/voxclient/pkg/coords"
)

func fullColumn(id block.ID) []block.ID {
	col := make([]block.ID, coords.ChunkSize)
	for i := range col {
		col[i] = id
	}
	return col
}

func TestFragmentDeduplication(t *testing.T) {
	d := newData(coords.ChunkPos{})
	f := coords.FragmentPos{X: 0, Y: 0}

	if !d.ReceiveFragment(f, fullColumn(block.Stone)) {
		t.Fatalf("first delivery of a fragment should report new")
	}
	if d.ReceiveFragment(f, fullColumn(block.Stone)) {
		t.Errorf("duplicate fragment delivery should report false")
	}
	if d.fragmentsSet != 1 {
		t.Errorf("fragmentsSet = %d, want 1 after a duplicate delivery", d.fragmentsSet)
	}
}

func TestCompleteAfterAllFragments(t *testing.T) {
	d := newData(coords.ChunkPos{})
	for x := 0; x < coords.ChunkSize; x++ {
		for y := 0; y < coords.ChunkSize; y++ {
			d.ReceiveFragment(coords.FragmentPos{X: x, Y: y}, fullColumn(block.Dirt))
		}
	}
	if !d.Complete() {
		t.Fatalf("chunk should be complete after all fragments received")
	}
	if d.State != StateUnmeshed {
		t.Errorf("state = %v, want Unmeshed once complete", d.State)
	}
}

func TestRegistryNeighborLinking(t *testing.T) {
	r := NewRegistry()
	center := coords.ChunkPos{X: 0, Y: 0, Z: 0}
	r.GetOrCreate(center, false)

	for i := 0; i < 6; i++ {
		r.GetOrCreate(center.Neighbor(i), false)
	}

	d, ok := r.Get(center)
	if !ok {
		t.Fatalf("center chunk missing")
	}
	if d.AdjChunks != coords.AllNeighborsMask {
		t.Errorf("AdjChunks = %06b, want all six set", d.AdjChunks)
	}
}

func TestEvictUnlinksNeighbors(t *testing.T) {
	r := NewRegistry()
	center := coords.ChunkPos{}
	east := center.Neighbor(1)
	r.GetOrCreate(center, false)
	r.GetOrCreate(east, false)

	r.Evict(east)

	d, _ := r.Get(center)
	if d.AdjChunks&(1<<1) != 0 {
		t.Errorf("evicted neighbor should be unlinked from center's mask")
	}
}

func TestRemeshOnNeighborLoadRegressesMeshedNeighbor(t *testing.T) {
	r := NewRegistry()
	center := coords.ChunkPos{}
	east := center.Neighbor(1)

	d := r.GetOrCreate(center, false)
	d.State = StateMeshed
	d.Buf = &MeshBuffer{Quads: 1}

	r.GetOrCreate(east, true)

	if d.State != StateUnmeshed {
		t.Errorf("state = %v, want Unmeshed after a neighbor arrives with remeshOnNeighborLoad", d.State)
	}
	if d.Buf != nil {
		t.Error("expected the stale mesh buffer to be cleared")
	}
}

func TestDefaultDoesNotRemeshOnNeighborLoad(t *testing.T) {
	r := NewRegistry()
	center := coords.ChunkPos{}
	east := center.Neighbor(1)

	d := r.GetOrCreate(center, false)
	d.State = StateMeshed
	d.Buf = &MeshBuffer{Quads: 1}

	r.GetOrCreate(east, false)

	if d.State != StateMeshed {
		t.Errorf("state = %v, want unchanged Meshed when remeshOnNeighborLoad is false", d.State)
	}
}

func TestSnapshotIsValueCopy(t *testing.T) {
	r := NewRegistry()
	pos := coords.ChunkPos{}
	d := r.GetOrCreate(pos, false)
	d.Blocks[0] = block.Stone

	self, _, ok := r.Snapshot(pos)
	if !ok {
		t.Fatalf("snapshot missing")
	}
	self[0] = block.Air
	if d.Blocks[0] != block.Stone {
		t.Errorf("mutating a snapshot must not affect the registry entry")
	}
}
