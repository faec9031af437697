package input

import (
	"log"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/brightforge/voxclient/pkg/block"
	"github.com/brightforge/voxclient/pkg/chunk"
	"github.com/brightforge/voxclient/pkg/config"
	"github.com/brightforge/voxclient/pkg/coords"
	"github.com/brightforge/voxclient/pkg/meshing"
	"github.com/brightforge/voxclient/pkg/netclient"
	"github.com/brightforge/voxclient/pkg/player"
	"github.com/brightforge/voxclient/pkg/protocol"
	"github.com/brightforge/voxclient/pkg/render"
)

// Display is what the main actor needs from the render façade: drain
// events, sync the camera from authoritative player state, and draw the
// current set of Meshed chunks. Implemented by *render.Renderer; tests use
// a fake. Input translates raw key/button state into a player.Keys mask
// itself, so Display stays ignorant of player's control scheme.
type Display interface {
	PollEvents()
	RecenterCursor()
	ShouldClose() bool
	SyncCamera(x, y, z float64, yaw, pitch float32)
	Orientation() (yaw, pitch float32)
	KeyState(key glfw.Key) glfw.Action
	MouseButtonState(button glfw.MouseButton) glfw.Action
	SetChunks(chunks []*render.ChunkMesh)
	RenderFrame(chunks []*render.ChunkMesh)
	Cleanup()
}

// Network is what the main actor needs from the network worker.
type Network interface {
	Events() <-chan netclient.Event
	RequestChunk(msg protocol.RequestChunk) error
	SendInput(msg protocol.PlayerInput) error
	SendBlockChange(msg protocol.BlockChange) error
}

// Mesher is what the main actor needs from the meshing worker.
type Mesher interface {
	Submit(req meshing.Request)
	Results() <-chan meshing.Response
}

// Actor is the Input/Main actor: it owns the chunk registry and player
// state and drives the fixed per-frame loop.
type Actor struct {
	Display Display
	Net     Network
	Mesh    Mesher
	Blocks  *block.Registry
	Chunks  *chunk.Registry
	Player  *player.Player
	Cfg     config.Config

	cameraAccum  time.Duration
	cameraPeriod time.Duration
	pending      []pendingMsg
	outstanding  map[coords.ChunkPos]bool
}

type pendingMsg struct {
	msg any
}

// NewActor wires an Actor from its collaborators, ready to run.
func NewActor(d Display, net Network, mesh Mesher, blocks *block.Registry, chunks *chunk.Registry, p *player.Player, cfg config.Config) *Actor {
	period := time.Second / 30
	if cfg.TickRate > 0 {
		period = time.Second / time.Duration(cfg.TickRate)
	}
	return &Actor{
		Display:      d,
		Net:          net,
		Mesh:         mesh,
		Blocks:       blocks,
		Chunks:       chunks,
		Player:       p,
		Cfg:          cfg,
		cameraPeriod: period,
		outstanding:  make(map[coords.ChunkPos]bool),
	}
}

// Run drives frames until the display reports it should close.
func (a *Actor) Run() {
	last := time.Now()
	for !a.Display.ShouldClose() {
		now := time.Now()
		dt := now.Sub(last)
		last = now
		a.Frame(dt)
	}
	a.Display.Cleanup()
}

// Frame executes the fixed 8-phase order for a single frame: event drain,
// cursor recenter, message drain (retried until a full pass makes no
// progress), camera tick at Cfg.TickRate (30Hz when unset), stream, a second pending drain,
// render, and accounting.
func (a *Actor) Frame(dt time.Duration) {
	// 1. event drain
	a.Display.PollEvents()

	// 2. cursor recenter
	a.Display.RecenterCursor()

	// 3. message drain, first pass
	a.drainNetwork()
	a.drainPendingUntilStable()

	// 4. camera tick, fixed step of cameraPeriod
	a.cameraAccum += dt
	for a.cameraAccum >= a.cameraPeriod {
		a.cameraAccum -= a.cameraPeriod
		a.tickCamera()
	}

	// 5. stream
	a.stream()

	// 6. pending drain, second pass
	a.drainPendingUntilStable()

	// 7. render
	a.render()

	// 8. accounting is implicit: loop-local state above already updated.
}

func (a *Actor) drainNetwork() {
	for {
		select {
		case ev, ok := <-a.Net.Events():
			if !ok {
				return
			}
			if ev.Err != nil {
				a.pending = append(a.pending, pendingMsg{msg: ev.Err})
				continue
			}
			a.pending = append(a.pending, pendingMsg{msg: ev.Msg})
		default:
			return
		}
	}
}

// drainPendingUntilStable retries the FIFO of buffered messages until a
// full pass makes no progress, matching the spec's requirement that a
// message whose chunk isn't registered yet be retried rather than dropped.
func (a *Actor) drainPendingUntilStable() {
	for {
		progressed := false
		remaining := a.pending[:0]
		for _, m := range a.pending {
			if a.apply(m.msg) {
				progressed = true
			} else {
				remaining = append(remaining, m)
			}
		}
		a.pending = remaining
		if !progressed || len(a.pending) == 0 {
			return
		}
	}
}

// apply applies one buffered message, returning whether it made progress
// (and so should be dropped from the FIFO) or should be retried later.
func (a *Actor) apply(msg any) bool {
	switch m := msg.(type) {
	case protocol.ChunkFragment:
		if a.outOfSphere(m.Pos) {
			log.Printf("input: dropping fragment for %v outside render sphere", m.Pos)
			delete(a.outstanding, m.Pos)
			return true
		}
		d := a.Chunks.GetOrCreate(m.Pos, a.Cfg.RemeshOnNeighborLoad)
		d.ReceiveFragment(m.Fragment, m.Column[:])
		delete(a.outstanding, m.Pos)
		return true
	case protocol.ChunkComplete:
		return true
	case protocol.BlockUpdate:
		d, ok := a.Chunks.Get(m.Pos.Chunk())
		if !ok {
			if a.outOfSphere(m.Pos.Chunk()) {
				log.Printf("input: dropping BlockUpdate for %v outside render sphere", m.Pos.Chunk())
				return true
			}
			return false
		}
		d.SetBlockAt(m.Pos.Inner(), m.ID)
		return true
	case protocol.PlayerState:
		return true
	case error:
		return true
	default:
		return true
	}
}

// outOfSphere reports whether pos is beyond the player's render sphere, per
// the rule that a chunk is only created when its first fragment arrives
// within render_distance; anything further out is a stale or late message
// for a chunk the player has already moved away from.
func (a *Actor) outOfSphere(pos coords.ChunkPos) bool {
	return coords.OrthogonalDist(a.Player.Pos.Chunk(), pos) > int64(a.Cfg.RenderDistance)
}

func (a *Actor) tickCamera() {
	yaw, pitch := a.Display.Orientation()
	a.Player.Yaw, a.Player.Pitch = yaw, pitch
	a.Player.Keys = a.keysDown()

	cfg := player.Config{Speed: a.Cfg.PlayerSpeed, CtrlSpeedup: a.Cfg.CtrlSpeedup}
	bp, hit := a.Player.Tick(a.cameraPeriod.Seconds(), cfg, a.Chunks)
	if hit {
		player.ApplyOptimisticEdit(a.Chunks, bp)
		_ = a.Net.SendBlockChange(protocol.BlockChange{Pos: bp, ID: block.Air})
	}
	_ = a.Net.SendInput(protocol.PlayerInput{
		Keys:  uint8(a.Player.Keys),
		Yaw:   a.Player.Yaw,
		Pitch: a.Player.Pitch,
	})
}

func (a *Actor) stream() {
	center := a.Player.Pos.Chunk()
	plan := FetchCloseChunks(a.Chunks, center, a.Cfg.RenderDistance, hysteresis)

	for _, pos := range plan.ToRequest {
		if a.outstanding[pos] {
			continue
		}
		if err := a.Net.RequestChunk(protocol.RequestChunk{Pos: pos}); err == nil {
			a.outstanding[pos] = true
		}
	}

	for _, pos := range plan.ToEvict {
		a.Chunks.Evict(pos)
		delete(a.outstanding, pos)
	}

	for _, pos := range plan.ToMesh {
		d, ok := a.Chunks.Get(pos)
		if !ok {
			continue
		}
		self, neighbors, ok := a.Chunks.Snapshot(pos)
		if !ok {
			continue
		}
		d.State = chunk.StateMeshing
		a.Mesh.Submit(meshing.Request{Pos: pos, Self: self, Neighbors: neighbors})
	}

	a.drainMeshResults()
}

// hysteresis is the eviction margin beyond the render sphere, matching the
// default in original_source; it is intentionally not separately
// configurable from cfg.toml.
const hysteresis = 2

func (a *Actor) drainMeshResults() {
	for {
		select {
		case resp := <-a.Mesh.Results():
			d, ok := a.Chunks.Get(resp.Pos)
			if !ok {
				continue
			}
			if d.State != chunk.StateMeshing {
				continue // stale response for a chunk that regressed or was evicted
			}
			d.State = chunk.StateMeshed
			d.Buf = &chunk.MeshBuffer{Quads: resp.Result.Quads, PackedVertices: resp.Result.PackedVertices}
		default:
			return
		}
	}
}

// keysDown translates the raw keyboard and mouse state into the control
// mask player.Player.Tick expects.
func (a *Actor) keysDown() player.Keys {
	var k player.Keys
	if a.Display.KeyState(render.KeyW) == render.Press {
		k |= player.Forward
	}
	if a.Display.KeyState(render.KeyA) == render.Press {
		k |= player.Left
	}
	if a.Display.KeyState(render.KeyS) == render.Press {
		k |= player.Backward
	}
	if a.Display.KeyState(render.KeyD) == render.Press {
		k |= player.Right
	}
	if a.Display.KeyState(render.KeySpace) == render.Press {
		k |= player.Up
	}
	if a.Display.KeyState(render.KeyLeftShift) == render.Press {
		k |= player.Down
	}
	if a.Display.KeyState(render.KeyLeftCtrl) == render.Press {
		k |= player.Control
	}
	if a.Display.MouseButtonState(glfw.MouseButtonLeft) == render.Press {
		k |= player.Hit
	}
	return k
}

func (a *Actor) render() {
	yaw, pitch := a.Player.Yaw, a.Player.Pitch
	a.Display.SyncCamera(a.Player.Pos.X, a.Player.Pos.Y, a.Player.Pos.Z, yaw, pitch)

	var meshes []*render.ChunkMesh
	for _, pos := range a.Chunks.All() {
		d, ok := a.Chunks.Get(pos)
		if !ok || d.State != chunk.StateMeshed || d.Buf == nil {
			continue
		}
		origin := pos.WorldOrigin()
		meshes = append(meshes, &render.ChunkMesh{
			Pos:            mgl32.Vec3{float32(origin.X), float32(origin.Y), float32(origin.Z)},
			PackedVertices: d.Buf.PackedVertices,
		})
	}
	a.Display.SetChunks(meshes)
	a.Display.RenderFrame(meshes)
}
