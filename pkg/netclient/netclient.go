// Package netclient is the network worker actor: it owns the UDP socket to
// the server, translates pkg/protocol messages to and from datagrams, and
// exposes a buffered channel (capacity 256) of decoded server events to the
// main actor; the read loop blocks while that buffer is full.
// Modeled on the teacher's packet-ID dispatch loop in pkg/network, adapted
// from TCP framing to a connectionless UDP socket.
package netclient

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/brightforge/voxclient/pkg/protocol"
)

// Timeouts for the connection handshake and liveness check, per the wire
// protocol's external-interface contract.
const (
	ConnectTimeout = 1 * time.Second
	DropTimeout    = 4 * time.Second
)

// ErrDropped is sent on Events when no datagram has arrived from the server
// within DropTimeout of the last one.
var ErrDropped = fmt.Errorf("netclient: connection dropped")

// Event wraps either a decoded server message (Msg) or a terminal error
// (Err, after which the worker has stopped and Events will be closed).
type Event struct {
	Msg any
	Err error
}

// Client is the client-side half of the UDP protocol. All exported methods
// are safe for concurrent use.
type Client struct {
	conn   *net.UDPConn
	events chan Event
	done   chan struct{}
	once   sync.Once
}

// Dial opens the UDP socket and performs the connection-init handshake: a
// RequestChunk-free SetRenderDistance(renderDistance) ping-and-wait, since UDP has no
// handshake of its own. If no datagram arrives within ConnectTimeout, Dial
// returns an error instead of a Client that will never receive anything.
func Dial(addr string, renderDistance uint32) (*Client, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("netclient: resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("netclient: dial %s: %w", addr, err)
	}

	c := &Client{
		conn:   conn,
		events: make(chan Event, 256),
		done:   make(chan struct{}),
	}

	if err := c.handshake(renderDistance); err != nil {
		conn.Close()
		return nil, err
	}

	go c.readLoop()
	return c, nil
}

func (c *Client) handshake(renderDistance uint32) error {
	if _, err := c.conn.Write(protocol.SetRenderDistance{N: renderDistance}.Encode()); err != nil {
		return fmt.Errorf("netclient: handshake write: %w", err)
	}
	if err := c.conn.SetReadDeadline(time.Now().Add(ConnectTimeout)); err != nil {
		return fmt.Errorf("netclient: set read deadline: %w", err)
	}
	buf := make([]byte, 2048)
	n, err := c.conn.Read(buf)
	if err != nil {
		return fmt.Errorf("netclient: server did not respond within %s: %w", ConnectTimeout, err)
	}
	msg, err := protocol.DecodeFromServer(buf[:n])
	if err != nil {
		return fmt.Errorf("netclient: handshake decode: %w", err)
	}
	c.events <- Event{Msg: msg}
	return c.conn.SetReadDeadline(time.Time{})
}

// Events returns the channel of decoded server messages and terminal
// errors. The channel is closed once the worker has stopped.
func (c *Client) Events() <-chan Event {
	return c.events
}

// RequestChunk asks the server to begin streaming the chunk at pos.
// The caller may call this repeatedly for the same position: the server
// streams every fragment again on each request, and the chunk's fragment
// bitset ignores the ones already applied.
func (c *Client) RequestChunk(msg protocol.RequestChunk) error {
	return c.send(msg.Encode())
}

// SendInput reports the local player's current control state.
func (c *Client) SendInput(msg protocol.PlayerInput) error {
	return c.send(msg.Encode())
}

// SendBlockChange reports a requested block edit to the server.
func (c *Client) SendBlockChange(msg protocol.BlockChange) error {
	return c.send(msg.Encode())
}

func (c *Client) send(buf []byte) error {
	if len(buf) > protocol.MaxDatagramSize {
		return fmt.Errorf("netclient: message of %d bytes exceeds MaxDatagramSize %d", len(buf), protocol.MaxDatagramSize)
	}
	_, err := c.conn.Write(buf)
	return err
}

// Close stops the read loop and releases the socket.
func (c *Client) Close() error {
	c.once.Do(func() { close(c.done) })
	return c.conn.Close()
}

func (c *Client) readLoop() {
	defer close(c.events)
	buf := make([]byte, 2048)

	for {
		if err := c.conn.SetReadDeadline(time.Now().Add(DropTimeout)); err != nil {
			c.emit(Event{Err: err})
			return
		}
		n, err := c.conn.Read(buf)
		if err != nil {
			select {
			case <-c.done:
				return
			default:
			}
			if isTimeout(err) {
				c.emit(Event{Err: ErrDropped})
				return
			}
			c.emit(Event{Err: fmt.Errorf("netclient: read: %w", err)})
			return
		}

		msg, err := protocol.DecodeFromServer(buf[:n])
		if err != nil {
			// A malformed datagram is dropped, not fatal; the stream
			// continues.
			continue
		}
		c.emit(Event{Msg: msg})
	}
}

func (c *Client) emit(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
