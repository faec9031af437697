// Package input implements the Input/Main actor: the per-frame loop that
// owns the chunk registry, drains events and network messages, ticks the
// player, streams chunks in and out of range, and dispatches to the
// meshing and network workers.
package input

import (
	"sort"

	"github.com/brightforge/voxclient/pkg/chunk"
	"github.com/brightforge/voxclient/pkg/coords"
)

// Plan is the result of one fetch_close_chunks pass: the set of positions
// to request from the server, evict from the registry, and enqueue for
// meshing, each ordered by increasing Chebyshev distance to center.
type Plan struct {
	ToRequest []coords.ChunkPos
	ToEvict   []coords.ChunkPos
	ToMesh    []coords.ChunkPos
}

// FetchCloseChunks computes one streaming pass: chunks inside the render
// sphere of radius renderDist that are missing get requested; chunks
// already registered but past renderDist+hysteresis get evicted; and
// Unmeshed, Meshable chunks inside the sphere get enqueued for meshing.
// Every slice is ordered nearest-to-farthest, matching the spec's streaming
// priority.
func FetchCloseChunks(reg *chunk.Registry, center coords.ChunkPos, renderDist, hysteresis uint32) Plan {
	var plan Plan
	r := int64(renderDist)

	type distPos struct {
		pos  coords.ChunkPos
		dist int64
	}

	var inSphere []distPos
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			for dz := -r; dz <= r; dz++ {
				pos := center.Add(dx, dy, dz)
				d := coords.OrthogonalDist(center, pos)
				if d > r {
					continue
				}
				inSphere = append(inSphere, distPos{pos, d})
			}
		}
	}
	sort.Slice(inSphere, func(i, j int) bool { return inSphere[i].dist < inSphere[j].dist })

	for _, dp := range inSphere {
		if _, ok := reg.Get(dp.pos); !ok {
			plan.ToRequest = append(plan.ToRequest, dp.pos)
		}
	}

	evictRadius := r + int64(hysteresis)
	var toEvict []distPos
	for _, pos := range reg.All() {
		d := coords.OrthogonalDist(center, pos)
		if d > evictRadius {
			toEvict = append(toEvict, distPos{pos, d})
		}
	}
	sort.Slice(toEvict, func(i, j int) bool { return toEvict[i].dist < toEvict[j].dist })
	for _, dp := range toEvict {
		plan.ToEvict = append(plan.ToEvict, dp.pos)
	}

	for _, dp := range inSphere {
		d, ok := reg.Get(dp.pos)
		if !ok {
			continue
		}
		if d.State == chunk.StateUnmeshed && d.Meshable() {
			plan.ToMesh = append(plan.ToMesh, dp.pos)
		}
	}

	return plan
}
