// Package protocol defines the wire messages exchanged between the
// network worker and its authoritative server counterpart, and their
// encoding onto UDP datagrams capped at 576 bytes. The core treats these
// as opaque, well-typed messages; this package is the thin translation
// layer the spec calls the network worker's own problem.
package protocol

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/brightforge/voxclient/pkg/block"
	"github.com/brightforge/voxclient/pkg/coords"
)

// MaxDatagramSize bounds every message this package encodes.
const MaxDatagramSize = 576

// Client-bound-to-server packet IDs.
const (
	idRequestChunk uint8 = iota
	idSetRenderDistance
	idPlayerInput
	idBlockChange
)

// Server-bound-to-client packet IDs.
const (
	idChunkFragment uint8 = iota
	idChunkComplete
	idBlockUpdate
	idPlayerState
)

// RequestChunk asks the server to start streaming a chunk. Repeating it is
// harmless but not free: the server streams the whole chunk again, and the
// client's fragment bitset discards the duplicates.
type RequestChunk struct {
	Pos coords.ChunkPos
}

// SetRenderDistance tells the server the radius (in chunks) the client
// wants streamed. Must be observed by the server before RequestChunk can
// usefully bound its behavior.
type SetRenderDistance struct {
	N uint32
}

// PlayerInput is a snapshot of the local player's controls sent once per
// camera tick.
type PlayerInput struct {
	Keys  uint8
	Yaw   float32
	Pitch float32
}

// BlockChange is a client-requested, server-authoritative edit. The local
// change is applied optimistically before this is even sent.
type BlockChange struct {
	Pos coords.BlockPos
	ID  block.ID
}

// ChunkFragment carries one (x,y) column slice of a chunk's blocks.
type ChunkFragment struct {
	Pos      coords.ChunkPos
	Fragment coords.FragmentPos
	Column   [coords.ChunkSize]block.ID
}

// ChunkComplete is an optional hint that every fragment for Pos has been
// sent; the client does not depend on it arriving (it tracks completeness
// itself via the fragment bitset).
type ChunkComplete struct {
	Pos coords.ChunkPos
}

// BlockUpdate is the server-authoritative echo of a block change. It
// overwrites the client's optimistic local edit unconditionally.
type BlockUpdate struct {
	Pos coords.BlockPos
	ID  block.ID
}

// PlayerState is a remote player's position/orientation broadcast.
type PlayerState struct {
	EntityID uint32
	X, Y, Z  float64
	Yaw      float32
	Pitch    float32
}

func putInt64(b []byte, v int64) { binary.BigEndian.PutUint64(b, uint64(v)) }
func getInt64(b []byte) int64    { return int64(binary.BigEndian.Uint64(b)) }

func putFloat32(b []byte, v float32) { binary.BigEndian.PutUint32(b, math.Float32bits(v)) }
func getFloat32(b []byte) float32    { return math.Float32frombits(binary.BigEndian.Uint32(b)) }

func putFloat64(b []byte, v float64) { binary.BigEndian.PutUint64(b, math.Float64bits(v)) }
func getFloat64(b []byte) float64    { return math.Float64frombits(binary.BigEndian.Uint64(b)) }

func putChunkPos(b []byte, p coords.ChunkPos) {
	putInt64(b[0:8], p.X)
	putInt64(b[8:16], p.Y)
	putInt64(b[16:24], p.Z)
}

func getChunkPos(b []byte) coords.ChunkPos {
	return coords.ChunkPos{X: getInt64(b[0:8]), Y: getInt64(b[8:16]), Z: getInt64(b[16:24])}
}

func putBlockPos(b []byte, p coords.BlockPos) {
	putInt64(b[0:8], p.X)
	putInt64(b[8:16], p.Y)
	putInt64(b[16:24], p.Z)
}

func getBlockPos(b []byte) coords.BlockPos {
	return coords.BlockPos{X: getInt64(b[0:8]), Y: getInt64(b[8:16]), Z: getInt64(b[16:24])}
}

// Encode returns the wire bytes for a RequestChunk message.
func (m RequestChunk) Encode() []byte {
	buf := make([]byte, 1+24)
	buf[0] = idRequestChunk
	putChunkPos(buf[1:], m.Pos)
	return buf
}

// Encode returns the wire bytes for a SetRenderDistance message.
func (m SetRenderDistance) Encode() []byte {
	buf := make([]byte, 1+4)
	buf[0] = idSetRenderDistance
	binary.BigEndian.PutUint32(buf[1:], m.N)
	return buf
}

// Encode returns the wire bytes for a PlayerInput message.
func (m PlayerInput) Encode() []byte {
	buf := make([]byte, 1+1+4+4)
	buf[0] = idPlayerInput
	buf[1] = m.Keys
	putFloat32(buf[2:], m.Yaw)
	putFloat32(buf[6:], m.Pitch)
	return buf
}

// Encode returns the wire bytes for a BlockChange message.
func (m BlockChange) Encode() []byte {
	buf := make([]byte, 1+24+1)
	buf[0] = idBlockChange
	putBlockPos(buf[1:], m.Pos)
	buf[25] = uint8(m.ID)
	return buf
}

// Encode returns the wire bytes for a ChunkFragment message. Fits within
// MaxDatagramSize for the default ChunkSize of 32 (1 + 24 + 8 + 32 = 65B).
func (m ChunkFragment) Encode() []byte {
	buf := make([]byte, 1+24+8+len(m.Column))
	buf[0] = idChunkFragment
	putChunkPos(buf[1:], m.Pos)
	binary.BigEndian.PutUint32(buf[25:], uint32(m.Fragment.X))
	binary.BigEndian.PutUint32(buf[29:], uint32(m.Fragment.Y))
	for i, id := range m.Column {
		buf[33+i] = uint8(id)
	}
	return buf
}

// Encode returns the wire bytes for a ChunkComplete message.
func (m ChunkComplete) Encode() []byte {
	buf := make([]byte, 1+24)
	buf[0] = idChunkComplete
	putChunkPos(buf[1:], m.Pos)
	return buf
}

// Encode returns the wire bytes for a BlockUpdate message.
func (m BlockUpdate) Encode() []byte {
	buf := make([]byte, 1+24+1)
	buf[0] = idBlockUpdate
	putBlockPos(buf[1:], m.Pos)
	buf[25] = uint8(m.ID)
	return buf
}

// Encode returns the wire bytes for a PlayerState message.
func (m PlayerState) Encode() []byte {
	buf := make([]byte, 1+4+8+8+8+4+4)
	buf[0] = idPlayerState
	binary.BigEndian.PutUint32(buf[1:], m.EntityID)
	putFloat64(buf[5:], m.X)
	putFloat64(buf[13:], m.Y)
	putFloat64(buf[21:], m.Z)
	putFloat32(buf[29:], m.Yaw)
	putFloat32(buf[33:], m.Pitch)
	return buf
}

// ErrShortPacket is returned by Decode when a datagram is truncated.
var ErrShortPacket = fmt.Errorf("protocol: short packet")

// DecodeFromServer decodes a server-to-client datagram into one of
// ChunkFragment, ChunkComplete, BlockUpdate, or PlayerState.
func DecodeFromServer(buf []byte) (any, error) {
	if len(buf) < 1 {
		return nil, ErrShortPacket
	}
	switch buf[0] {
	case idChunkFragment:
		if len(buf) < 33+coords.ChunkSize {
			return nil, ErrShortPacket
		}
		var m ChunkFragment
		m.Pos = getChunkPos(buf[1:])
		m.Fragment = coords.FragmentPos{
			X: int(binary.BigEndian.Uint32(buf[25:])),
			Y: int(binary.BigEndian.Uint32(buf[29:])),
		}
		for i := range m.Column {
			m.Column[i] = block.ID(buf[33+i])
		}
		return m, nil
	case idChunkComplete:
		if len(buf) < 25 {
			return nil, ErrShortPacket
		}
		return ChunkComplete{Pos: getChunkPos(buf[1:])}, nil
	case idBlockUpdate:
		if len(buf) < 26 {
			return nil, ErrShortPacket
		}
		return BlockUpdate{Pos: getBlockPos(buf[1:]), ID: block.ID(buf[25])}, nil
	case idPlayerState:
		if len(buf) < 37 {
			return nil, ErrShortPacket
		}
		return PlayerState{
			EntityID: binary.BigEndian.Uint32(buf[1:]),
			X:        getFloat64(buf[5:]),
			Y:        getFloat64(buf[13:]),
			Z:        getFloat64(buf[21:]),
			Yaw:      getFloat32(buf[29:]),
			Pitch:    getFloat32(buf[33:]),
		}, nil
	default:
		return nil, fmt.Errorf("protocol: unknown server packet id %d", buf[0])
	}
}

// DecodeFromClient decodes a client-to-server datagram into one of
// RequestChunk, SetRenderDistance, PlayerInput, or BlockChange.
func DecodeFromClient(buf []byte) (any, error) {
	if len(buf) < 1 {
		return nil, ErrShortPacket
	}
	switch buf[0] {
	case idRequestChunk:
		if len(buf) < 25 {
			return nil, ErrShortPacket
		}
		return RequestChunk{Pos: getChunkPos(buf[1:])}, nil
	case idSetRenderDistance:
		if len(buf) < 5 {
			return nil, ErrShortPacket
		}
		return SetRenderDistance{N: binary.BigEndian.Uint32(buf[1:])}, nil
	case idPlayerInput:
		if len(buf) < 10 {
			return nil, ErrShortPacket
		}
		return PlayerInput{
			Keys:  buf[1],
			Yaw:   getFloat32(buf[2:]),
			Pitch: getFloat32(buf[6:]),
		}, nil
	case idBlockChange:
		if len(buf) < 26 {
			return nil, ErrShortPacket
		}
		return BlockChange{Pos: getBlockPos(buf[1:]), ID: block.ID(buf[25])}, nil
	default:
		return nil, fmt.Errorf("protocol: unknown client packet id %d", buf[0])
	}
}
