package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"tandem/pkg/interfaces"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// createTestWebSocketConnection dials a throwaway echo-less server and
// returns the client side of the socket.
func createTestWebSocketConnection(t *testing.T) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade connection: %v", err)
			return
		}
		defer conn.Close()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}))
	t.Cleanup(func() { server.Close() })

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to create test WebSocket connection: %v", err)
	}

	return conn
}

func TestConnection_InterfaceCompliance(t *testing.T) {
	var _ interfaces.Connection = &Connection{}
}

func TestConnection_NewConnectionInitialization(t *testing.T) {
	wsConn := createTestWebSocketConnection(t)
	defer wsConn.Close()

	conn := NewConnection(wsConn, 100)
	defer conn.Close()

	if conn.ID() == "" {
		t.Error("connection should be assigned an id")
	}
	if cap(conn.writeCh) != 100 {
		t.Errorf("expected send buffer of 100, got %d", cap(conn.writeCh))
	}
}

func TestConnection_DefaultSendBuffer(t *testing.T) {
	wsConn := createTestWebSocketConnection(t)
	defer wsConn.Close()

	conn := NewConnection(wsConn, 0)
	defer conn.Close()

	if cap(conn.writeCh) != 100 {
		t.Errorf("non-positive buffer should fall back to 100, got %d", cap(conn.writeCh))
	}
}

func TestConnection_UniqueIDs(t *testing.T) {
	wsConn1 := createTestWebSocketConnection(t)
	defer wsConn1.Close()
	wsConn2 := createTestWebSocketConnection(t)
	defer wsConn2.Close()

	conn1 := NewConnection(wsConn1, 10)
	defer conn1.Close()
	conn2 := NewConnection(wsConn2, 10)
	defer conn2.Close()

	if conn1.ID() == conn2.ID() {
		t.Error("connections must receive distinct ids")
	}
}

func TestConnection_WriteJSON(t *testing.T) {
	wsConn := createTestWebSocketConnection(t)
	defer wsConn.Close()

	conn := NewConnection(wsConn, 10)
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "test"}); err != nil {
		t.Errorf("WriteJSON failed: %v", err)
	}
}

func TestConnection_WriteJSONInvalidValue(t *testing.T) {
	wsConn := createTestWebSocketConnection(t)
	defer wsConn.Close()

	conn := NewConnection(wsConn, 10)
	defer conn.Close()

	// Channels cannot be marshaled.
	if err := conn.WriteJSON(make(chan int)); err != ErrInvalidJSON {
		t.Errorf("expected ErrInvalidJSON, got %v", err)
	}
}

func TestConnection_WriteAfterClose(t *testing.T) {
	wsConn := createTestWebSocketConnection(t)

	conn := NewConnection(wsConn, 10)
	if err := conn.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	// The writer goroutine observes cancellation asynchronously; the
	// context check in WriteJSON is immediate.
	time.Sleep(10 * time.Millisecond)
	if err := conn.WriteJSON(map[string]string{"type": "test"}); err != ErrConnectionClosed {
		t.Errorf("expected ErrConnectionClosed, got %v", err)
	}
}

func TestConnection_WriteAfterTransportLoss(t *testing.T) {
	wsConn := createTestWebSocketConnection(t)

	conn := NewConnection(wsConn, 10)
	defer conn.Close()

	// Kill the transport underneath the writer without calling Close.
	wsConn.Close()

	// Queue a write so the writer goroutine hits the error path and shuts
	// the connection down.
	_ = conn.WriteJSON(map[string]string{"type": "test"})

	select {
	case <-conn.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("writer did not shut the connection down after transport loss")
	}

	// Subsequent writes must fail benignly, never panic.
	if err := conn.WriteJSON(map[string]string{"type": "test"}); err != ErrConnectionClosed {
		t.Errorf("expected ErrConnectionClosed after writer exit, got %v", err)
	}
}

func TestConnection_CloseIsIdempotent(t *testing.T) {
	wsConn := createTestWebSocketConnection(t)

	conn := NewConnection(wsConn, 10)
	if err := conn.Close(); err != nil {
		t.Fatalf("first close failed: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
}
