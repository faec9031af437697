// Package meshing runs the meshing worker actor: it turns Unmeshed chunk
// snapshots into packed vertex buffers off the main thread, one request in
// flight per chunk at a time.
package meshing

import (
	"github.com/brightforge/voxclient/pkg/block"
	"github.com/brightforge/voxclient/pkg/chunk"
	"github.com/brightforge/voxclient/pkg/coords"
	"github.com/brightforge/voxclient/pkg/mesh"
)

// Request asks the worker to mesh the chunk at Pos using the given
// self/neighbor snapshots, captured at request time by the caller.
type Request struct {
	Pos       coords.ChunkPos
	Self      []block.ID
	Neighbors [6]chunk.NeighborSnapshot
}

// Response carries the finished mesh back to the main actor.
type Response struct {
	Pos    coords.ChunkPos
	Result mesh.Result
}

// Worker owns the SPSC channel pair (each buffered to 64 entries) the main
// actor talks to it through; Submit blocks while the request buffer is full. Requests and Responses are plain structs; the channels are the
// only synchronization.
type Worker struct {
	reg      *block.Registry
	requests chan Request
	results  chan Response
	done     chan struct{}
}

// NewWorker starts the meshing goroutine. reg is shared read-only; callers
// must not mutate it while the worker runs.
func NewWorker(reg *block.Registry) *Worker {
	w := &Worker{
		reg:      reg,
		requests: make(chan Request, 64),
		results:  make(chan Response, 64),
		done:     make(chan struct{}),
	}
	go w.run()
	return w
}

// Submit enqueues a mesh request. The caller is responsible for ensuring at
// most one outstanding request per chunk position exists at a time.
func (w *Worker) Submit(req Request) {
	w.requests <- req
}

// Results returns the channel the main actor drains finished meshes from.
func (w *Worker) Results() <-chan Response {
	return w.results
}

// Stop terminates the worker goroutine. It does not drain pending requests.
func (w *Worker) Stop() {
	close(w.done)
}

func (w *Worker) run() {
	for {
		select {
		case <-w.done:
			return
		case req := <-w.requests:
			result := mesh.Build(w.reg, req.Self, req.Neighbors)
			select {
			case w.results <- Response{Pos: req.Pos, Result: result}:
			case <-w.done:
				return
			}
		}
	}
}
