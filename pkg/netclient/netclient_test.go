package netclient

import (
	"net"
	"testing"
	"time"

	"github.com/brightforge/voxclient/pkg/coords"
	"github.com/brightforge/voxclient/pkg/protocol"
)

// fakeServer answers the handshake ping with a ChunkComplete and then
// echoes any RequestChunk it receives back as the same ChunkComplete, so
// tests can observe a full round trip without a real game server.
func fakeServer(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		buf := make([]byte, 2048)
		for {
			n, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			_, _ = protocol.DecodeFromClient(buf[:n])
			reply := protocol.ChunkComplete{Pos: coords.ChunkPos{X: 1, Y: 2, Z: 3}}.Encode()
			_, _ = conn.WriteToUDP(reply, addr)
		}
	}()
	return conn
}

func TestDialHandshakeSucceeds(t *testing.T) {
	srv := fakeServer(t)
	defer srv.Close()

	c, err := Dial(srv.LocalAddr().String(), 8)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	select {
	case ev := <-c.Events():
		if ev.Err != nil {
			t.Fatalf("unexpected event error: %v", ev.Err)
		}
		if _, ok := ev.Msg.(protocol.ChunkComplete); !ok {
			t.Fatalf("got %T, want protocol.ChunkComplete", ev.Msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for handshake event")
	}
}

func TestDialFailsWhenServerSilent(t *testing.T) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer conn.Close()

	if _, err := Dial(conn.LocalAddr().String(), 8); err == nil {
		t.Error("expected Dial to fail against a server that never responds")
	}
}

func TestRequestChunkRoundTrip(t *testing.T) {
	srv := fakeServer(t)
	defer srv.Close()

	c, err := Dial(srv.LocalAddr().String(), 8)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()
	<-c.Events() // drain handshake event

	if err := c.RequestChunk(protocol.RequestChunk{Pos: coords.ChunkPos{X: 1, Y: 2, Z: 3}}); err != nil {
		t.Fatalf("RequestChunk: %v", err)
	}

	select {
	case ev := <-c.Events():
		if ev.Err != nil {
			t.Fatalf("unexpected event error: %v", ev.Err)
		}
		cc, ok := ev.Msg.(protocol.ChunkComplete)
		if !ok || cc.Pos != (coords.ChunkPos{X: 1, Y: 2, Z: 3}) {
			t.Errorf("got %+v, want ChunkComplete{1,2,3}", ev.Msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for echoed response")
	}
}
