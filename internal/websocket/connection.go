package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// Connection wraps a WebSocket connection behind a single writer goroutine
// so concurrent relays, broadcasts, and notifications never race on the
// socket. It implements interfaces.Connection; no pairing logic lives here.
type Connection struct {
	id        string
	conn      *websocket.Conn
	writeCh   chan []byte
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection wraps a raw WebSocket connection, assigns it a connection
// id, and starts its writer goroutine. sendBuffer caps how many outbound
// events may queue before writes start failing.
func NewConnection(conn *websocket.Conn, sendBuffer int) *Connection {
	if sendBuffer <= 0 {
		sendBuffer = 100
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		id:      uuid.NewString(),
		conn:    conn,
		writeCh: make(chan []byte, sendBuffer),
		ctx:     ctx,
		cancel:  cancel,
	}

	go c.writeLoop()

	return c
}

// ID returns the server-assigned connection identifier.
func (c *Connection) ID() string {
	return c.id
}

// writeLoop is the sole socket writer. writeCh is never closed: a write
// failure cancels the context instead, so a concurrent WriteJSON observes
// ErrConnectionClosed rather than a send on a closed channel.
func (c *Connection) writeLoop() {
	for {
		select {
		case data := <-c.writeCh:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				_ = c.Close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				_ = c.Close()
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// WriteJSON queues a JSON event for delivery. It fails with a benign error
// once the connection is closed or when the send buffer stays full past the
// write timeout.
func (c *Connection) WriteJSON(v interface{}) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	data, err := json.Marshal(v)
	if err != nil {
		return ErrInvalidJSON
	}

	select {
	case c.writeCh <- data:
		return nil
	case <-time.After(writeTimeout):
		return ErrWriteTimeout
	case <-c.ctx.Done():
		return ErrConnectionClosed
	}
}

// Close tears down the connection. Safe to call more than once; the writer
// goroutine exits via context cancellation.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		if c.conn != nil {
			err = c.conn.Close()
		}
	})
	return err
}
