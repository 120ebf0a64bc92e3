package registry

import (
	"sync"

	"tandem/pkg/interfaces"
	"tandem/pkg/types"
)

// Registry tracks every live connection. It owns Client records exclusively:
// created on connect, destroyed on disconnect, never readable after removal.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]*Client),
	}
}

// Register adds a connection and returns its Client record in the Idle state.
func (r *Registry) Register(conn interfaces.Connection) (*Client, error) {
	if conn == nil {
		return nil, ErrNilConnection
	}

	client := NewClient(conn)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.clients[client.ID()]; exists {
		return nil, ErrDuplicateClient
	}
	r.clients[client.ID()] = client

	return client, nil
}

// Get returns the client for an id.
func (r *Registry) Get(id string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, exists := r.clients[id]
	return client, exists
}

// Remove deletes the client record and returns it so the caller can close
// the connection. Idempotent: removing an unknown id returns false.
func (r *Registry) Remove(id string) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	client, exists := r.clients[id]
	if !exists {
		return nil, false
	}
	delete(r.clients, id)

	return client, true
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// All returns a snapshot of the live clients, for broadcasts.
func (r *Registry) All() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, client)
	}
	return clients
}

// CountByState tallies live connections per lifecycle state, for monitoring.
func (r *Registry) CountByState() map[types.ClientState]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[types.ClientState]int, 3)
	for _, client := range r.clients {
		counts[client.State()]++
	}
	return counts
}
