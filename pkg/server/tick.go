package server

import (
	"sync"

	"github.com/brightforge/voxclient/pkg/block"
	"github.com/brightforge/voxclient/pkg/coords"
	"github.com/brightforge/voxclient/pkg/protocol"
)

// PlayerID identifies a connected player for the lifetime of the process.
type PlayerID uint32

// PlayerSession is the server's authoritative record of one connected
// player: its last reported control state and render distance.
type PlayerSession struct {
	ID             PlayerID
	Pos            coords.WorldPos
	Yaw, Pitch     float32
	RenderDistance uint32
}

// Tick is the server's game-tick actor: it applies received inputs and
// edits to World and produces the broadcasts that need to go out this
// tick. It holds no network state of its own; Network feeds it client
// messages and drains its outbox.
type Tick struct {
	World *World

	mu       sync.Mutex
	sessions map[PlayerID]*PlayerSession
	outbox   []Broadcast
}

// Broadcast pairs a wire message with the set of players it must be sent
// to (nil means every connected player).
type Broadcast struct {
	Msg any
	To  []PlayerID
}

// NewTick returns a Tick actor over the given world.
func NewTick(world *World) *Tick {
	return &Tick{World: world, sessions: make(map[PlayerID]*PlayerSession)}
}

// Connect registers a new player session and returns its ID.
func (t *Tick) Connect(renderDistance uint32) PlayerID {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := PlayerID(len(t.sessions) + 1)
	for t.sessions[id] != nil {
		id++
	}
	t.sessions[id] = &PlayerSession{ID: id, RenderDistance: renderDistance}
	return id
}

// Disconnect drops a player session.
func (t *Tick) Disconnect(id PlayerID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, id)
}

// ApplyInput updates a player's last-known control state.
func (t *Tick) ApplyInput(id PlayerID, msg protocol.PlayerInput) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[id]
	if !ok {
		return
	}
	s.Yaw, s.Pitch = msg.Yaw, msg.Pitch
}

// ApplyBlockChange commits a requested edit (World.SetBlock accepts every
// edit), queuing the authoritative BlockUpdate echo to every connected
// player.
func (t *Tick) ApplyBlockChange(id PlayerID, msg protocol.BlockChange) {
	resolved := t.World.SetBlock(msg.Pos, msg.ID)
	t.queue(protocol.BlockUpdate{Pos: msg.Pos, ID: resolved}, nil)
}

// RequestChunk streams every fragment of the chunk at pos to the
// requesting player, followed by a ChunkComplete hint.
func (t *Tick) RequestChunk(id PlayerID, pos coords.ChunkPos) {
	blocks := t.World.Chunk(pos)
	const size = coords.ChunkSize
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			frag := coords.FragmentPos{X: x, Y: y}
			var column [size]block.ID
			for z := 0; z < size; z++ {
				inner := coords.InnerChunkPos{X: uint8(x), Y: uint8(y), Z: uint8(z)}
				column[z] = blocks[inner.Index()]
			}
			t.queue(protocol.ChunkFragment{Pos: pos, Fragment: frag, Column: column}, []PlayerID{id})
		}
	}
	t.queue(protocol.ChunkComplete{Pos: pos}, []PlayerID{id})
}

func (t *Tick) queue(msg any, to []PlayerID) {
	t.mu.Lock()
	t.outbox = append(t.outbox, Broadcast{Msg: msg, To: to})
	t.mu.Unlock()
}

// DrainOutbox returns and clears the accumulated broadcasts.
func (t *Tick) DrainOutbox() []Broadcast {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.outbox
	t.outbox = nil
	return out
}

// BroadcastStates queues a PlayerState update for every session other than the
// one it originated from, so remote players see each other move.
func (t *Tick) BroadcastStates() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.sessions {
		msg := protocol.PlayerState{
			EntityID: uint32(s.ID),
			X:        s.Pos.X,
			Y:        s.Pos.Y,
			Z:        s.Pos.Z,
			Yaw:      s.Yaw,
			Pitch:    s.Pitch,
		}
		var to []PlayerID
		for otherID := range t.sessions {
			if otherID != s.ID {
				to = append(to, otherID)
			}
		}
		t.outbox = append(t.outbox, Broadcast{Msg: msg, To: to})
	}
}
