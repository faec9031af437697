// Package server implements the authoritative server actors: world
// generation, the per-tick simulation, and the server side of the UDP wire
// protocol. Grounded on the teacher's fillChunk/generateWorld heightmap and
// pkg/network/client.go's packet-dispatch idiom.
package server

import (
	"math"
	"math/rand"

	"github.com/brightforge/voxclient/pkg/block"
	"github.com/brightforge/voxclient/pkg/coords"
)

// WorldGen synthesizes chunk contents deterministically from chunk
// position, the same sine-wave heightmap shape the teacher used, extended
// across chunk boundaries so terrain is continuous between chunks.
type WorldGen struct {
	Seed int64
}

// NewWorldGen returns a generator with the given seed. A fixed seed makes
// generation reproducible across server restarts for the same world.
func NewWorldGen(seed int64) *WorldGen {
	return &WorldGen{Seed: seed}
}

// Generate fills a dense ChunkSize^3 block array for the chunk at pos.
func (g *WorldGen) Generate(pos coords.ChunkPos) []block.ID {
	const size = coords.ChunkSize
	blocks := make([]block.ID, size*size*size)
	rng := rand.New(rand.NewSource(g.Seed ^ int64(pos.X)*0x9E3779B1 ^ int64(pos.Z)*0x85EBCA6B))

	origin := pos.WorldOrigin()
	for lx := 0; lx < size; lx++ {
		for lz := 0; lz < size; lz++ {
			wx := origin.X + float64(lx)
			wz := origin.Z + float64(lz)

			height := heightAt(wx, wz)
			localHeight := height - int(origin.Y)

			for ly := 0; ly < size; ly++ {
				id := g.blockAt(localHeight, ly, rng)
				if id == block.Air {
					continue
				}
				inner := coords.InnerChunkPos{X: uint8(lx), Y: uint8(ly), Z: uint8(lz)}
				blocks[inner.Index()] = id
			}
		}
	}
	return blocks
}

// heightAt returns the absolute world-space surface height at (wx, wz),
// the same sine/cosine combination the teacher used, parameterized on
// world rather than chunk-local coordinates so it is continuous across
// chunk boundaries.
func heightAt(wx, wz float64) int {
	h := math.Sin(wx/5.0)*3.0 + math.Cos(wz/5.0)*3.0 + 8
	return int(h)
}

const waterLevel = 5

func (g *WorldGen) blockAt(localHeight, ly int, rng *rand.Rand) block.ID {
	switch {
	case ly < localHeight-3:
		return block.Stone
	case ly < localHeight-1:
		return block.Dirt
	case ly == localHeight-1:
		if rng.Float64() < 0.05 {
			return block.GoldBlock
		}
		return block.Grass
	case ly < waterLevel:
		return block.Water
	default:
		return block.Air
	}
}
