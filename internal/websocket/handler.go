package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"tandem/internal/hub"
	"tandem/pkg/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Clients are anonymous; there is no origin-bound identity to
		// protect. Deployments fronting a fixed site should restrict this.
		return true
	},
	HandshakeTimeout: 10 * time.Second,
}

// Options tunes per-connection transport behavior.
type Options struct {
	PingInterval time.Duration
	ReadTimeout  time.Duration
	SendBuffer   int
}

// DefaultOptions mirrors the config defaults for tests and bare usage.
func DefaultOptions() Options {
	return Options{
		PingInterval: 30 * time.Second,
		ReadTimeout:  60 * time.Second,
		SendBuffer:   100,
	}
}

// Handler upgrades HTTP requests to WebSocket connections and pumps decoded
// client events into the lifecycle coordinator.
type Handler struct {
	coordinator *hub.Coordinator
	opts        Options
}

// NewHandler creates a WebSocket handler bound to the coordinator.
func NewHandler(coordinator *hub.Coordinator, opts Options) *Handler {
	if opts.PingInterval <= 0 || opts.ReadTimeout <= 0 {
		opts = DefaultOptions()
	}
	return &Handler{
		coordinator: coordinator,
		opts:        opts,
	}
}

// HandleWebSocket upgrades the request, registers the connection, and runs
// its read loop.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket: upgrade failed: %v", err)
		return
	}

	conn := NewConnection(wsConn, h.opts.SendBuffer)
	if _, err := h.coordinator.Connect(conn); err != nil {
		log.Printf("websocket: registration failed for %s: %v", conn.ID(), err)
		_ = conn.Close()
		return
	}

	go h.handleConnection(conn)
}

// handleConnection reads client frames until transport loss, with ping/pong
// heartbeat supervision. Every exit path runs the unconditional disconnect
// cleanup.
func (h *Handler) handleConnection(conn *Connection) {
	defer func() {
		h.coordinator.Disconnect(conn.ID())
		_ = conn.Close()
	}()

	if err := conn.conn.SetReadDeadline(time.Now().Add(h.opts.ReadTimeout)); err != nil {
		log.Printf("websocket: failed to set read deadline: %v", err)
		return
	}
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(h.opts.ReadTimeout))
	})

	ticker := time.NewTicker(h.opts.PingInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			case <-conn.ctx.Done():
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("websocket: read error on %s: %v", conn.ID(), err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var event types.ClientEvent
		if err := json.Unmarshal(data, &event); err != nil {
			// Malformed frames are dropped; the connection stays up.
			log.Printf("websocket: malformed frame from %s: %v", conn.ID(), err)
			continue
		}

		h.coordinator.HandleEvent(conn.ID(), event)
	}
}
