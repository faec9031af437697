package server

import (
	"sync"

	"github.com/brightforge/voxclient/pkg/block"
	"github.com/brightforge/voxclient/pkg/coords"
)

// World is the server's authoritative block store: chunks are generated on
// first access and then mutated in place by player edits. Unlike the
// client's chunk.Registry, the server never evicts or tracks a meshing
// state; it simply owns ground truth.
type World struct {
	gen *WorldGen

	mu     sync.RWMutex
	chunks map[coords.ChunkPos][]block.ID
}

// NewWorld returns a world backed by gen.
func NewWorld(gen *WorldGen) *World {
	return &World{gen: gen, chunks: make(map[coords.ChunkPos][]block.ID)}
}

// Chunk returns the block array for pos, generating it on first access.
func (w *World) Chunk(pos coords.ChunkPos) []block.ID {
	w.mu.RLock()
	blocks, ok := w.chunks[pos]
	w.mu.RUnlock()
	if ok {
		return blocks
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if blocks, ok := w.chunks[pos]; ok {
		return blocks
	}
	blocks = w.gen.Generate(pos)
	w.chunks[pos] = blocks
	return blocks
}

// SetBlock applies an authoritative edit at bp and returns the resulting
// id (always id; SetBlock never rejects an edit in this server).
func (w *World) SetBlock(bp coords.BlockPos, id block.ID) block.ID {
	blocks := w.Chunk(bp.Chunk())
	w.mu.Lock()
	blocks[bp.Inner().Index()] = id
	w.mu.Unlock()
	return id
}
