// Package chunk implements the client's per-chunk record and its state
// machine, and the Input-owned registry mapping ChunkPos to that record.
package chunk

import (
	"sync"

	"github.com/brightforge/voxclient/pkg/block"
	"github.com/brightforge/voxclient/pkg/coords"
)

// State is the lifecycle stage of a chunk record, per the state machine:
// absent -> Incomplete -> Unmeshed -> Meshing -> Meshed. A Meshed chunk
// regresses to Unmeshed when its own blocks change (SetBlockAt), and when a
// neighbor is first registered if remeshOnNeighborLoad is set. A block
// change or state regression in an already-registered neighbor does not
// regress it.
type State int

const (
	StateIncomplete State = iota
	StateUnmeshed
	StateMeshing
	StateMeshed
)

func (s State) String() string {
	switch s {
	case StateIncomplete:
		return "Incomplete"
	case StateUnmeshed:
		return "Unmeshed"
	case StateMeshing:
		return "Meshing"
	case StateMeshed:
		return "Meshed"
	default:
		return "Unknown"
	}
}

// MeshBuffer is the finished mesh Meshing hands back to Input: the packed
// vertices and their quad count. The render façade copies the vertices into
// its own GPU buffer; chunk only tracks whether a mesh is currently held.
type MeshBuffer struct {
	Quads          int
	PackedVertices []uint32
}

// Data is the client's per-chunk record.
type Data struct {
	Pos coords.ChunkPos

	Blocks []block.ID // dense ChunkSize^3 array, allocated at registry insertion

	fragments    [coords.FragmentsPerChunk / 64]uint64 // bitset of received fragment indices
	fragmentsSet int

	AdjChunks uint8 // 6-bit mask: which of the 6 axis neighbors are in the registry

	State State
	Buf   *MeshBuffer
}

// newData allocates an empty chunk record ready to receive fragments.
func newData(pos coords.ChunkPos) *Data {
	return &Data{
		Pos:    pos,
		Blocks: make([]block.ID, coords.ChunkSize*coords.ChunkSize*coords.ChunkSize),
		State:  StateIncomplete,
	}
}

// Complete reports whether every fragment has arrived.
func (d *Data) Complete() bool {
	return d.fragmentsSet == coords.FragmentsPerChunk
}

// Meshable reports whether this chunk is completed and all six neighbors
// are present.
func (d *Data) Meshable() bool {
	return d.Complete() && d.AdjChunks == coords.AllNeighborsMask
}

// ReceiveFragment stores the blocks for one fragment (one x,y column) and
// reports whether this was a new fragment (not a duplicate). Fragment
// de-duplication is tracked via a bitset rather than a bare counter, since
// a counter alone cannot distinguish a retransmitted fragment from a
// genuinely new one.
func (d *Data) ReceiveFragment(f coords.FragmentPos, column []block.ID) bool {
	idx := f.Index()
	word, bit := idx/64, uint(idx%64)
	if d.fragments[word]&(1<<bit) != 0 {
		return false // duplicate, already applied
	}
	d.fragments[word] |= 1 << bit
	d.fragmentsSet++

	for z, id := range column {
		inner := coords.InnerChunkPos{X: uint8(f.X), Y: uint8(f.Y), Z: uint8(z)}
		d.Blocks[inner.Index()] = id
	}

	if d.Complete() && d.State == StateIncomplete {
		d.State = StateUnmeshed
	}
	return true
}

// BlockAt returns the block at an inner chunk position.
func (d *Data) BlockAt(inner coords.InnerChunkPos) block.ID {
	return d.Blocks[inner.Index()]
}

// SetBlockAt sets the block at an inner chunk position and, if the chunk
// was Meshed, regresses it to Unmeshed so it will be re-enqueued for
// meshing (self-mutation always invalidates the current mesh).
func (d *Data) SetBlockAt(inner coords.InnerChunkPos, id block.ID) {
	d.Blocks[inner.Index()] = id
	if d.State == StateMeshed {
		d.State = StateUnmeshed
		d.Buf = nil
	}
}

// Registry is the Input-owned mapping from ChunkPos to Data. No other actor
// retains live pointers into it; messages to and from other actors carry
// values or snapshots, never registry entries.
//
// Every Registry method takes its mutex, so the map itself is safe for
// concurrent use. The *Data records it hands out are not guarded by it;
// only Input mutates them.
type Registry struct {
	mu     sync.RWMutex
	chunks map[coords.ChunkPos]*Data
}

// NewRegistry returns an empty chunk registry.
func NewRegistry() *Registry {
	return &Registry{chunks: make(map[coords.ChunkPos]*Data)}
}

// Get returns the chunk at pos, if present.
func (r *Registry) Get(pos coords.ChunkPos) (*Data, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.chunks[pos]
	return d, ok
}

// GetOrCreate returns the existing record at pos, or creates one and wires
// up its neighbor mask against chunks already present. remeshOnNeighborLoad
// mirrors Config.RemeshOnNeighborLoad: when true, a neighbor that was
// already Meshed regresses to Unmeshed on this late arrival instead of
// keeping its (now possibly-wrong, since its border faces may have been
// drawn against an Incomplete neighbor) existing mesh.
func (r *Registry) GetOrCreate(pos coords.ChunkPos, remeshOnNeighborLoad bool) *Data {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.chunks[pos]; ok {
		return d
	}
	d := newData(pos)
	r.chunks[pos] = d
	r.linkNeighborsLocked(pos, remeshOnNeighborLoad)
	return d
}

// linkNeighborsLocked updates adjacency masks between pos and whichever of
// its six neighbors already exist in the registry. Caller holds r.mu.
func (r *Registry) linkNeighborsLocked(pos coords.ChunkPos, remeshOnNeighborLoad bool) {
	for i := 0; i < 6; i++ {
		n := pos.Neighbor(i)
		nd, ok := r.chunks[n]
		if !ok {
			continue
		}
		r.chunks[pos].AdjChunks |= 1 << uint(i)
		nd.AdjChunks |= 1 << uint(oppositeDir(i))
		if remeshOnNeighborLoad && nd.State == StateMeshed {
			nd.State = StateUnmeshed
			nd.Buf = nil
		}
	}
}

func oppositeDir(i int) int {
	// NeighborOffsets pairs are (-X,+X),(-Y,+Y),(-Z,+Z) at indices
	// (0,1),(2,3),(4,5).
	if i%2 == 0 {
		return i + 1
	}
	return i - 1
}

// Evict removes a chunk from the registry and unlinks it from its
// neighbors' adjacency masks. Returns the removed buffer (if any) so the
// caller can release the GPU resource exactly once.
func (r *Registry) Evict(pos coords.ChunkPos) *MeshBuffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.chunks[pos]
	if !ok {
		return nil
	}
	delete(r.chunks, pos)
	for i := 0; i < 6; i++ {
		n := pos.Neighbor(i)
		if nd, ok := r.chunks[n]; ok {
			nd.AdjChunks &^= 1 << uint(oppositeDir(i))
		}
	}
	return d.Buf
}

// All returns every ChunkPos currently in the registry.
func (r *Registry) All() []coords.ChunkPos {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]coords.ChunkPos, 0, len(r.chunks))
	for p := range r.chunks {
		out = append(out, p)
	}
	return out
}

// Len returns the number of chunks currently registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chunks)
}

// NeighborSnapshot is a read-only view of one neighbor handed to the
// meshing worker: either the neighbor's block array, or Absent == true if
// it is not present in the registry.
type NeighborSnapshot struct {
	Absent bool
	Blocks []block.ID
}

// Snapshot copies out everything the meshing worker needs for pos: the
// chunk's own blocks and a value-copy snapshot of each of its six
// neighbors, so the worker never retains a live reference into the
// registry.
func (r *Registry) Snapshot(pos coords.ChunkPos) (self []block.ID, neighbors [6]NeighborSnapshot, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, present := r.chunks[pos]
	if !present {
		return nil, neighbors, false
	}
	self = append([]block.ID(nil), d.Blocks...)
	for i := 0; i < 6; i++ {
		n := pos.Neighbor(i)
		nd, exists := r.chunks[n]
		if !exists {
			neighbors[i] = NeighborSnapshot{Absent: true}
			continue
		}
		neighbors[i] = NeighborSnapshot{Blocks: append([]block.ID(nil), nd.Blocks...)}
	}
	return self, neighbors, true
}
