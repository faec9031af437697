package server

import (
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/brightforge/voxclient/pkg/protocol"
)

// Network is the server-side half of the UDP wire protocol: one socket
// shared by every connected client, dispatching by packet ID the same way
// the teacher's TCP client did, but keyed by remote address since UDP has
// no per-connection socket.
type Network struct {
	conn *net.UDPConn
	tick *Tick

	mu       sync.Mutex
	byAddr   map[string]PlayerID
	addrByID map[PlayerID]*net.UDPAddr
}

// NewNetwork binds addr (e.g. ":20000") and wires the dispatcher to tick.
func NewNetwork(addr string, tick *Tick) (*Network, error) {
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("server: resolve %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return &Network{
		conn:     conn,
		tick:     tick,
		byAddr:   make(map[string]PlayerID),
		addrByID: make(map[PlayerID]*net.UDPAddr),
	}, nil
}

// Serve runs the read loop until the socket is closed. Run it in its own
// goroutine.
func (n *Network) Serve() {
	buf := make([]byte, 2048)
	for {
		sz, raddr, err := n.conn.ReadFromUDP(buf)
		if err != nil {
			return // socket closed
		}
		n.handle(raddr, buf[:sz])
	}
}

func (n *Network) handle(raddr *net.UDPAddr, data []byte) {
	msg, err := protocol.DecodeFromClient(data)
	if err != nil {
		log.Printf("server: dropping malformed datagram from %s: %v", raddr, err)
		return
	}

	id, ok := n.sessionFor(raddr)

	switch m := msg.(type) {
	case protocol.SetRenderDistance:
		if !ok {
			id = n.tick.Connect(m.N)
			n.register(raddr, id)
		}
		n.send(raddr, protocol.ChunkComplete{})
	case protocol.RequestChunk:
		if ok {
			n.tick.RequestChunk(id, m.Pos)
		}
	case protocol.PlayerInput:
		if ok {
			n.tick.ApplyInput(id, m)
		}
	case protocol.BlockChange:
		if ok {
			n.tick.ApplyBlockChange(id, m)
		}
	}
}

func (n *Network) sessionFor(raddr *net.UDPAddr) (PlayerID, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id, ok := n.byAddr[raddr.String()]
	return id, ok
}

func (n *Network) register(raddr *net.UDPAddr, id PlayerID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.byAddr[raddr.String()] = id
	n.addrByID[id] = raddr
}

// FlushOutbox runs on a timer, pulling Tick's queued broadcasts and
// writing them out to their recipients (or everyone, when To is nil).
func (n *Network) FlushOutbox(period time.Duration, stop <-chan structEmpty) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			n.deliver(n.tick.DrainOutbox())
		}
	}
}

// structEmpty avoids importing an empty-struct alias from elsewhere; it is
// only ever used as a stop-channel element type.
type structEmpty = struct{}

func (n *Network) deliver(broadcasts []Broadcast) {
	for _, b := range broadcasts {
		enc, ok := encode(b.Msg)
		if !ok {
			continue
		}
		if b.To == nil {
			n.mu.Lock()
			addrs := make([]*net.UDPAddr, 0, len(n.addrByID))
			for _, a := range n.addrByID {
				addrs = append(addrs, a)
			}
			n.mu.Unlock()
			for _, a := range addrs {
				n.writeTo(a, enc)
			}
			continue
		}
		for _, id := range b.To {
			n.mu.Lock()
			addr := n.addrByID[id]
			n.mu.Unlock()
			if addr != nil {
				n.writeTo(addr, enc)
			}
		}
	}
}

func (n *Network) send(raddr *net.UDPAddr, msg any) {
	enc, ok := encode(msg)
	if !ok {
		return
	}
	n.writeTo(raddr, enc)
}

func (n *Network) writeTo(addr *net.UDPAddr, data []byte) {
	if _, err := n.conn.WriteToUDP(data, addr); err != nil {
		log.Printf("server: write to %s: %v", addr, err)
	}
}

func encode(msg any) ([]byte, bool) {
	switch m := msg.(type) {
	case protocol.ChunkFragment:
		return m.Encode(), true
	case protocol.ChunkComplete:
		return m.Encode(), true
	case protocol.BlockUpdate:
		return m.Encode(), true
	case protocol.PlayerState:
		return m.Encode(), true
	default:
		return nil, false
	}
}

// Close releases the socket.
func (n *Network) Close() error {
	return n.conn.Close()
}
