package protocol

import (
	"testing"

	"github.com/brightforge/voxclient/pkg/block"
	"github.com/brightforge/voxclient/pkg/coords"
)

func TestRequestChunkRoundTrip(t *testing.T) {
	want := RequestChunk{Pos: coords.ChunkPos{X: -3, Y: 1, Z: 42}}
	got, err := DecodeFromClient(want.Encode())
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestPlayerInputRoundTrip(t *testing.T) {
	want := PlayerInput{Keys: 0b00101010, Yaw: 90.5, Pitch: -12.25}
	got, err := DecodeFromClient(want.Encode())
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestChunkFragmentRoundTripAndSize(t *testing.T) {
	want := ChunkFragment{
		Pos:      coords.ChunkPos{X: 1, Y: 2, Z: 3},
		Fragment: coords.FragmentPos{X: 7, Y: 9},
	}
	for i := range want.Column {
		want.Column[i] = block.ID(i % 8)
	}

	encoded := want.Encode()
	if len(encoded) > MaxDatagramSize {
		t.Errorf("ChunkFragment encodes to %d bytes, exceeds MaxDatagramSize %d", len(encoded), MaxDatagramSize)
	}

	got, err := DecodeFromServer(encoded)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	gf, ok := got.(ChunkFragment)
	if !ok {
		t.Fatalf("decoded type = %T, want ChunkFragment", got)
	}
	if gf != want {
		t.Errorf("got %+v, want %+v", gf, want)
	}
}

func TestBlockUpdateRoundTrip(t *testing.T) {
	want := BlockUpdate{Pos: coords.BlockPos{X: -100, Y: 5, Z: 3200}, ID: block.GoldBlock}
	got, err := DecodeFromServer(want.Encode())
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestDecodeShortPacket(t *testing.T) {
	if _, err := DecodeFromServer(nil); err != ErrShortPacket {
		t.Errorf("expected ErrShortPacket for empty buffer, got %v", err)
	}
	if _, err := DecodeFromServer([]byte{0, 1, 2}); err != ErrShortPacket {
		t.Errorf("expected ErrShortPacket for truncated ChunkFragment, got %v", err)
	}
}
