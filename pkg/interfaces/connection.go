package interfaces

// Connection is the send-handle for a connected client. It abstracts the
// WebSocket transport so registry, matching, and routing logic can be tested
// against in-memory implementations.
type Connection interface {
	// ID returns the server-assigned connection identifier.
	ID() string

	// WriteJSON sends a JSON-encoded event to the client. Implementations
	// must be safe for concurrent use; writes after Close fail with a
	// benign error.
	WriteJSON(v interface{}) error

	// Close tears down the transport. Safe to call more than once.
	Close() error
}
