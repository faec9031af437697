package mesh

import (
	"testing"

	"github.com/brightforge/voxclient/pkg/block"
	"github.com/brightforge/voxclient/pkg/chunk"
	"github.com/brightforge/voxclient/pkg/coords"
)

func emptyChunk() []block.ID {
	return make([]block.ID, coords.ChunkSize*coords.ChunkSize*coords.ChunkSize)
}

func airNeighbors() [6]chunk.NeighborSnapshot {
	var n [6]chunk.NeighborSnapshot
	for i := range n {
		n[i] = chunk.NeighborSnapshot{Blocks: emptyChunk()}
	}
	return n
}

func TestEmptyChunkProducesNoQuads(t *testing.T) {
	reg := block.NewDefaultRegistry()
	result := Build(reg, emptyChunk(), airNeighbors())
	if result.Quads != 0 {
		t.Errorf("Quads = %d, want 0 for an all-air chunk", result.Quads)
	}
}

func TestSingleBlockProducesSixFaces(t *testing.T) {
	reg := block.NewDefaultRegistry()
	self := emptyChunk()
	self[coords.InnerChunkPos{X: 5, Y: 5, Z: 5}.Index()] = block.Stone

	result := Build(reg, self, airNeighbors())
	if result.Quads != 6 {
		t.Errorf("Quads = %d, want 6 for one isolated block", result.Quads)
	}
	if len(result.PackedVertices) != 6*4 {
		t.Errorf("PackedVertices len = %d, want %d", len(result.PackedVertices), 6*4)
	}
}

func TestFullySolidInteriorProducesNoQuads(t *testing.T) {
	reg := block.NewDefaultRegistry()
	self := emptyChunk()
	for i := range self {
		self[i] = block.Stone
	}
	var neighbors [6]chunk.NeighborSnapshot
	for i := range neighbors {
		solid := emptyChunk()
		for j := range solid {
			solid[j] = block.Stone
		}
		neighbors[i] = chunk.NeighborSnapshot{Blocks: solid}
	}

	result := Build(reg, self, neighbors)
	if result.Quads != 0 {
		t.Errorf("Quads = %d, want 0 when surrounded entirely by solid neighbors", result.Quads)
	}
}

func TestBoundaryFaceExposedWhenNeighborIsAir(t *testing.T) {
	reg := block.NewDefaultRegistry()
	self := emptyChunk()
	self[coords.InnerChunkPos{X: 0, Y: 0, Z: 0}.Index()] = block.Stone

	result := Build(reg, self, airNeighbors())
	if result.Quads == 0 {
		t.Errorf("expected exposed faces at chunk boundary when the neighbor chunk is air")
	}
}
