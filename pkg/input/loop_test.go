package input

import (
	"testing"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/brightforge/voxclient/pkg/block"
	"github.com/brightforge/voxclient/pkg/chunk"
	"github.com/brightforge/voxclient/pkg/config"
	"github.com/brightforge/voxclient/pkg/coords"
	"github.com/brightforge/voxclient/pkg/mesh"
	"github.com/brightforge/voxclient/pkg/meshing"
	"github.com/brightforge/voxclient/pkg/netclient"
	"github.com/brightforge/voxclient/pkg/player"
	"github.com/brightforge/voxclient/pkg/protocol"
	"github.com/brightforge/voxclient/pkg/render"
)

type fakeDisplay struct {
	closed       bool
	keys         map[glfw.Key]glfw.Action
	buttons      map[glfw.MouseButton]glfw.Action
	yaw, pitch   float32
	syncedPos    [3]float64
	lastChunks   []*render.ChunkMesh
	polledEvents int
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{keys: make(map[glfw.Key]glfw.Action), buttons: make(map[glfw.MouseButton]glfw.Action)}
}

func (f *fakeDisplay) PollEvents()      { f.polledEvents++ }
func (f *fakeDisplay) RecenterCursor()  {}
func (f *fakeDisplay) ShouldClose() bool { return f.closed }
func (f *fakeDisplay) SyncCamera(x, y, z float64, yaw, pitch float32) {
	f.syncedPos = [3]float64{x, y, z}
}
func (f *fakeDisplay) Orientation() (float32, float32) { return f.yaw, f.pitch }
func (f *fakeDisplay) KeyState(key glfw.Key) glfw.Action {
	return f.keys[key]
}
func (f *fakeDisplay) MouseButtonState(button glfw.MouseButton) glfw.Action {
	return f.buttons[button]
}
func (f *fakeDisplay) SetChunks(chunks []*render.ChunkMesh)   { f.lastChunks = chunks }
func (f *fakeDisplay) RenderFrame(chunks []*render.ChunkMesh) {}
func (f *fakeDisplay) Cleanup()                               {}

type fakeNetwork struct {
	events   chan netclient.Event
	requests []protocol.RequestChunk
}

func newFakeNetwork() *fakeNetwork {
	return &fakeNetwork{events: make(chan netclient.Event, 64)}
}

func (n *fakeNetwork) Events() <-chan netclient.Event { return n.events }
func (n *fakeNetwork) RequestChunk(msg protocol.RequestChunk) error {
	n.requests = append(n.requests, msg)
	return nil
}
func (n *fakeNetwork) SendInput(msg protocol.PlayerInput) error         { return nil }
func (n *fakeNetwork) SendBlockChange(msg protocol.BlockChange) error   { return nil }

type fakeMesher struct {
	submitted []meshing.Request
	results   chan meshing.Response
}

func newFakeMesher() *fakeMesher {
	return &fakeMesher{results: make(chan meshing.Response, 64)}
}

func (m *fakeMesher) Submit(req meshing.Request)         { m.submitted = append(m.submitted, req) }
func (m *fakeMesher) Results() <-chan meshing.Response   { return m.results }

func newTestActor() (*Actor, *fakeDisplay, *fakeNetwork, *fakeMesher, *chunk.Registry) {
	d := newFakeDisplay()
	net := newFakeNetwork()
	mesh := newFakeMesher()
	blocks := block.NewDefaultRegistry()
	chunks := chunk.NewRegistry()
	p := &player.Player{}
	cfg := config.Config{RenderDistance: 1, PlayerSpeed: 1, CtrlSpeedup: 1}
	return NewActor(d, net, mesh, blocks, chunks, p, cfg), d, net, mesh, chunks
}

func TestFrameRunsEventDrainFirst(t *testing.T) {
	a, d, _, _, _ := newTestActor()
	a.Frame(10 * time.Millisecond)
	if d.polledEvents != 1 {
		t.Errorf("PollEvents called %d times, want 1", d.polledEvents)
	}
}

func TestFrameAppliesChunkFragmentFromNetwork(t *testing.T) {
	a, _, net, _, chunks := newTestActor()
	pos := coords.ChunkPos{}
	col := [coords.ChunkSize]block.ID{}
	net.events <- netclient.Event{Msg: protocol.ChunkFragment{Pos: pos, Fragment: coords.FragmentPos{X: 0, Y: 0}, Column: col}}

	a.Frame(0)

	d, ok := chunks.Get(pos)
	if !ok {
		t.Fatal("expected chunk to be created by the drained fragment")
	}
	if d.BlockAt(coords.InnerChunkPos{}) != block.Air {
		t.Errorf("expected the fragment's first block to be air")
	}
}

func TestFrameDropsFragmentOutsideRenderSphere(t *testing.T) {
	a, _, net, _, chunks := newTestActor() // RenderDistance: 1, player at chunk (0,0,0)
	far := coords.ChunkPos{X: 100}
	col := [coords.ChunkSize]block.ID{}
	net.events <- netclient.Event{Msg: protocol.ChunkFragment{Pos: far, Fragment: coords.FragmentPos{X: 0, Y: 0}, Column: col}}

	a.Frame(0)

	if _, ok := chunks.Get(far); ok {
		t.Error("fragment for a chunk outside the render sphere should not create a registry entry")
	}
	if len(a.pending) != 0 {
		t.Errorf("expected the out-of-sphere fragment to be dropped, not retried, got %d pending", len(a.pending))
	}
}

func TestFrameDropsBlockUpdateOutsideRenderSphere(t *testing.T) {
	a, _, net, _, _ := newTestActor() // RenderDistance: 1, player at chunk (0,0,0)
	far := coords.BlockPos{X: 100 * coords.ChunkSize}
	net.events <- netclient.Event{Msg: protocol.BlockUpdate{Pos: far, ID: block.Stone}}

	a.Frame(0)

	if len(a.pending) != 0 {
		t.Errorf("expected the out-of-sphere BlockUpdate to be dropped rather than retried forever, got %d pending", len(a.pending))
	}
}

func TestFrameRetriesBlockUpdateForUnregisteredChunk(t *testing.T) {
	a, _, net, _, chunks := newTestActor()
	pos := coords.BlockPos{X: 16, Y: 0, Z: 0} // within render distance 1, just not registered yet
	net.events <- netclient.Event{Msg: protocol.BlockUpdate{Pos: pos, ID: block.Stone}}

	a.Frame(0) // chunk not registered yet: BlockUpdate should be retried, not dropped

	if len(a.pending) != 1 {
		t.Fatalf("expected the BlockUpdate to remain pending, got %d pending messages", len(a.pending))
	}

	chunks.GetOrCreate(pos.Chunk(), false)
	a.Frame(0)

	if len(a.pending) != 0 {
		t.Errorf("expected the BlockUpdate to apply once its chunk exists, %d still pending", len(a.pending))
	}
}

func TestFrameRequestsMissingChunksWithinRenderDistance(t *testing.T) {
	a, _, net, _, _ := newTestActor()
	a.Frame(0)
	if len(net.requests) == 0 {
		t.Error("expected at least the center chunk to be requested")
	}
}

func TestFrameDoesNotDoubleRequestOutstandingChunks(t *testing.T) {
	a, _, net, _, _ := newTestActor()
	a.Frame(0)
	first := len(net.requests)
	a.Frame(0)
	if len(net.requests) != first {
		t.Errorf("expected no new requests once chunks are outstanding, went from %d to %d", first, len(net.requests))
	}
}

func TestFrameCameraTickAppliesHitAsOptimisticEdit(t *testing.T) {
	a, d, _, _, chunks := newTestActor()
	center := coords.ChunkPos{}
	cd := chunks.GetOrCreate(center, false)
	cd.State = chunk.StateUnmeshed
	cd.Blocks[coords.InnerChunkPos{}.Index()] = block.Stone // the block the player stands in
	d.buttons[glfw.MouseButtonLeft] = glfw.Press

	// Force a camera tick to run by using a dt >= one camera period.
	a.Frame(time.Second / 30)

	if got := cd.BlockAt(coords.InnerChunkPos{}); got != block.Air {
		t.Fatalf("block at the player's position = %v, want Air after Hit", got)
	}
}

func TestFrameDrainsMeshResultsIntoMeshedState(t *testing.T) {
	a, _, _, mesh, chunks := newTestActor()
	center := coords.ChunkPos{}
	d := chunks.GetOrCreate(center, false)
	d.State = chunk.StateMeshing
	mesh.results <- meshing.Response{Pos: center, Result: meshResult(3)}

	a.stream()

	got, _ := chunks.Get(center)
	if got.State != chunk.StateMeshed {
		t.Errorf("State = %v, want Meshed", got.State)
	}
	if got.Buf == nil || got.Buf.Quads != 3 {
		t.Errorf("expected Buf with 3 quads, got %+v", got.Buf)
	}
}

func meshResult(quads int) mesh.Result {
	return mesh.Result{Quads: quads, PackedVertices: make([]uint32, quads*4)}
}
