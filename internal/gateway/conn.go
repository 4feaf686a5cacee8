package gateway

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/websocket"

	"github.com/botlab/robot-access/internal/core/domain"
)

const writeTimeout = 10 * time.Second

// State is the lifecycle position of a streaming connection.
type State int32

const (
	StateHandshaking State = iota
	StateAuthorized
	StateRejected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateHandshaking:
		return "handshaking"
	case StateAuthorized:
		return "authorized"
	case StateRejected:
		return "rejected"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// conn is one client connection. The reader goroutine owns ws reads, the
// writer goroutine owns ws writes; everybody else talks to it through send
// and done.
type conn struct {
	id        string
	ws        *websocket.Conn
	token     string
	username  string
	// resources is guarded by Hub.mu once the connection is registered.
	resources []domain.Resource

	send chan Frame
	done chan struct{}

	mu    sync.Mutex
	state State
	final *Frame
	once  sync.Once

	log zerolog.Logger
}

func newConn(id string, ws *websocket.Conn, buffer int, log zerolog.Logger) *conn {
	return &conn{
		id:    id,
		ws:    ws,
		send:  make(chan Frame, buffer),
		done:  make(chan struct{}),
		state: StateHandshaking,
		log:   log,
	}
}

func (c *conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *conn) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// enqueue hands f to the writer without blocking. It reports false when the
// connection is closing or its buffer is full.
func (c *conn) enqueue(f Frame) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- f:
		return true
	default:
		return false
	}
}

// shutdown stops the writer. When final is non-nil it is written before the
// socket closes.
func (c *conn) shutdown(final *Frame) {
	c.once.Do(func() {
		c.mu.Lock()
		c.final = final
		c.state = StateClosed
		c.mu.Unlock()
		close(c.done)
	})
}

// writeLoop drains send until shutdown, then closes the socket so the reader
// unblocks.
func (c *conn) writeLoop() {
	defer c.ws.Close()
	for {
		select {
		case f := <-c.send:
			if err := c.write(f); err != nil {
				c.log.Debug().Err(err).Str("conn_id", c.id).Msg("write failed")
				c.shutdown(nil)
				return
			}
		case <-c.done:
			c.mu.Lock()
			final := c.final
			c.mu.Unlock()
			if final != nil {
				_ = c.write(*final)
			}
			return
		}
	}
}

func (c *conn) write(f Frame) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return websocket.JSON.Send(c.ws, f)
}

// readLoop discards client frames until the peer goes away or the socket is
// closed by writeLoop.
func (c *conn) readLoop() {
	for {
		var msg string
		if err := websocket.Message.Receive(c.ws, &msg); err != nil {
			return
		}
	}
}
