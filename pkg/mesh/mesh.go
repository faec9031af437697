// Package mesh implements the meshing worker's contract: given a chunk and
// its six neighbor snapshots, produce quads covering every exposed block
// face as a packed vertex list ready for upload to a GPU buffer. Adjacent
// coplanar exposed faces of the same block id are merged into one quad, so
// the quad count is not one per face.
package mesh

import (
	"github.com/brightforge/voxclient/pkg/block"
	"github.com/brightforge/voxclient/pkg/chunk"
	"github.com/brightforge/voxclient/pkg/coords"
)

// Direction is one of the six cardinal face directions a quad can face.
type Direction int

const (
	North Direction = iota // -Z
	South                  // +Z
	East                   // +X
	West                   // -X
	Up                     // +Y
	Down                   // -Y
)

// Result is the mesher's output: the packed vertex buffer plus the quad
// count the renderer needs to compute index-buffer ranges.
type Result struct {
	PackedVertices []uint32
	Quads          int
}

const size = coords.ChunkSize

// blockLookup answers "what block occupies (x,y,z)" where the coordinate
// may range one step outside [0,size) on any axis, in which case it is
// resolved against the appropriate neighbor snapshot.
type blockLookup struct {
	self      []block.ID
	neighbors [6]chunk.NeighborSnapshot
}

func (l blockLookup) at(x, y, z int) block.ID {
	if x >= 0 && x < size && y >= 0 && y < size && z >= 0 && z < size {
		return l.self[coords.InnerChunkPos{X: uint8(x), Y: uint8(y), Z: uint8(z)}.Index()]
	}

	// Exactly one axis is out of range by exactly one, since callers only
	// probe immediate face-adjacent cells.
	var nb chunk.NeighborSnapshot
	var nx, ny, nz int
	switch {
	case x < 0:
		nb, nx, ny, nz = l.neighbors[0], size-1, y, z
	case x >= size:
		nb, nx, ny, nz = l.neighbors[1], 0, y, z
	case y < 0:
		nb, nx, ny, nz = l.neighbors[2], x, size-1, z
	case y >= size:
		nb, nx, ny, nz = l.neighbors[3], x, 0, z
	case z < 0:
		nb, nx, ny, nz = l.neighbors[4], x, y, size-1
	default: // z >= size
		nb, nx, ny, nz = l.neighbors[5], x, y, 0
	}
	if nb.Absent || nb.Blocks == nil {
		return block.Air
	}
	return nb.Blocks[coords.InnerChunkPos{X: uint8(nx), Y: uint8(ny), Z: uint8(nz)}.Index()]
}

// directionVector returns the unit offset of a face direction.
func directionVector(d Direction) (dx, dy, dz int) {
	switch d {
	case North:
		return 0, 0, -1
	case South:
		return 0, 0, 1
	case East:
		return 1, 0, 0
	case West:
		return -1, 0, 0
	case Up:
		return 0, 1, 0
	default: // Down
		return 0, -1, 0
	}
}

// packVertex packs vertex data into a single uint32: x,y,z (5 bits each),
// u,v (1 bit each), orientation (3 bits), texture id (8 bits), ambient
// occlusion (3 bits).
func packVertex(x, y, z, u, v, o, t, ao int) uint32 {
	return uint32(
		((x & 31) << 0) |
			((y & 31) << 5) |
			((z & 31) << 10) |
			((u & 1) << 15) |
			((v & 1) << 16) |
			((o & 7) << 17) |
			((t & 255) << 20) |
			((ao & 7) << 28))
}

// Build runs greedy meshing over self given its six neighbor snapshots. A
// face is exposed iff the adjacent block -- possibly across a chunk
// boundary, resolved via the neighbor snapshots -- is air. Build does not
// retain references into self or neighbors after returning.
func Build(reg *block.Registry, self []block.ID, neighbors [6]chunk.NeighborSnapshot) Result {
	lookup := blockLookup{self: self, neighbors: neighbors}
	result := Result{PackedVertices: make([]uint32, 0, 1024)}

	visited := make([][][]bool, size)
	for x := range visited {
		visited[x] = make([][]bool, size)
		for y := range visited[x] {
			visited[x][y] = make([]bool, size)
		}
	}

	for dim := 0; dim < 6; dim++ {
		dir := Direction(dim)
		for x := range visited {
			for y := range visited[x] {
				for z := range visited[x][y] {
					visited[x][y][z] = false
				}
			}
		}

		var u, v, w int
		var maskSize [3]int
		switch dir {
		case North, South:
			u, v, w = 0, 1, 2
			maskSize = [3]int{size, size, size}
		case East, West:
			u, v, w = 2, 1, 0
			maskSize = [3]int{size, size, size}
		default: // Up, Down
			u, v, w = 0, 2, 1
			maskSize = [3]int{size, size, size}
		}

		wStart, wEnd, wStep := 0, maskSize[w], 1
		if dir == South || dir == East || dir == Up {
			wStart, wEnd, wStep = maskSize[w]-1, -1, -1
		}

		for w0 := wStart; w0 != wEnd; w0 += wStep {
			mask := make([][]block.ID, maskSize[u])
			for i := range mask {
				mask[i] = make([]block.ID, maskSize[v])
			}

			for v0 := 0; v0 < maskSize[v]; v0++ {
				for u0 := 0; u0 < maskSize[u]; u0++ {
					x, y, z := unproject(dir, u0, v0, w0)
					if visited[x][y][z] {
						continue
					}
					id := lookup.at(x, y, z)
					if reg.IsAir(id) {
						continue
					}
					dx, dy, dz := directionVector(dir)
					neighborID := lookup.at(x+dx, y+dy, z+dz)
					if reg.IsAir(neighborID) {
						mask[u0][v0] = id
					}
				}
			}

			for v0 := 0; v0 < maskSize[v]; v0++ {
				for u0 := 0; u0 < maskSize[u]; u0++ {
					id := mask[u0][v0]
					if reg.IsAir(id) {
						continue
					}
					x, y, z := unproject(dir, u0, v0, w0)
					if visited[x][y][z] {
						continue
					}

					width := 1
					for u1 := u0 + 1; u1 < maskSize[u]; u1++ {
						nx, ny, nz := unproject(dir, u1, v0, w0)
						if mask[u1][v0] != id || visited[nx][ny][nz] {
							break
						}
						width++
					}

					height := 1
					canExtend := true
					for v1 := v0 + 1; v1 < maskSize[v] && canExtend; v1++ {
						for u1 := u0; u1 < u0+width; u1++ {
							nx, ny, nz := unproject(dir, u1, v1, w0)
							if mask[u1][v1] != id || visited[nx][ny][nz] {
								canExtend = false
								break
							}
						}
						if canExtend {
							height++
						}
					}

					for v1 := v0; v1 < v0+height; v1++ {
						for u1 := u0; u1 < u0+width; u1++ {
							vx, vy, vz := unproject(dir, u1, v1, w0)
							visited[vx][vy][vz] = true
						}
					}

					emitQuad(&result, reg, dir, id, u0, v0, w0, width, height)
				}
			}
		}
	}

	return result
}

// unproject maps a (u,v,w) mask coordinate back to (x,y,z) for a given
// sweep direction, matching the axis assignment used when building the
// mask above.
func unproject(dir Direction, u0, v0, w0 int) (x, y, z int) {
	switch dir {
	case North, South:
		return u0, v0, w0
	case East, West:
		return w0, v0, u0
	default: // Up, Down
		return u0, w0, v0
	}
}

func emitQuad(result *Result, reg *block.Registry, dir Direction, id block.ID, u0, v0, w0, width, height int) {
	orientation := int(dir)
	def := reg.Get(id)
	textureID := 0
	if def.Kind == block.KindCube {
		textureID = int(def.Faces[faceIndex(dir)])
	}
	const ambientOcclusion = 7

	var x0, y0, z0, x1, y1, z1, x2, y2, z2, x3, y3, z3 int
	switch dir {
	case North:
		x0, y0, z0 = u0, v0, w0
		x1, y1, z1 = u0+width, v0, w0
		x2, y2, z2 = u0+width, v0+height, w0
		x3, y3, z3 = u0, v0+height, w0
	case South:
		x0, y0, z0 = u0+width, v0, w0+1
		x1, y1, z1 = u0, v0, w0+1
		x2, y2, z2 = u0, v0+height, w0+1
		x3, y3, z3 = u0+width, v0+height, w0+1
	case East:
		x0, y0, z0 = w0+1, v0, u0+width
		x1, y1, z1 = w0+1, v0, u0
		x2, y2, z2 = w0+1, v0+height, u0
		x3, y3, z3 = w0+1, v0+height, u0+width
	case West:
		x0, y0, z0 = w0, v0, u0
		x1, y1, z1 = w0, v0, u0+width
		x2, y2, z2 = w0, v0+height, u0+width
		x3, y3, z3 = w0, v0+height, u0
	case Up:
		x0, y0, z0 = u0, w0+1, v0+height
		x1, y1, z1 = u0+width, w0+1, v0+height
		x2, y2, z2 = u0+width, w0+1, v0
		x3, y3, z3 = u0, w0+1, v0
	default: // Down
		x0, y0, z0 = u0, w0, v0
		x1, y1, z1 = u0+width, w0, v0
		x2, y2, z2 = u0+width, w0, v0+height
		x3, y3, z3 = u0, w0, v0+height
	}

	result.PackedVertices = append(result.PackedVertices,
		packVertex(x0%32, y0%32, z0%32, 0, 0, orientation, textureID, ambientOcclusion),
		packVertex(x1%32, y1%32, z1%32, 1, 0, orientation, textureID, ambientOcclusion),
		packVertex(x2%32, y2%32, z2%32, 1, 1, orientation, textureID, ambientOcclusion),
		packVertex(x3%32, y3%32, z3%32, 0, 1, orientation, textureID, ambientOcclusion),
	)
	result.Quads++
}

func faceIndex(dir Direction) block.Face {
	switch dir {
	case North:
		return block.FaceNorth
	case South:
		return block.FaceSouth
	case East:
		return block.FaceEast
	case West:
		return block.FaceWest
	case Up:
		return block.FaceUp
	default:
		return block.FaceDown
	}
}
