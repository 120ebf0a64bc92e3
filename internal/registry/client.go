package registry

import (
	"sync"
	"time"

	"tandem/pkg/interfaces"
	"tandem/pkg/types"
)

// Client is the registry's record of one live connection: the send-handle
// plus the pairing-lifecycle state the matching engine drives. The id,
// connection, and connected-at timestamp are immutable; the mutable fields
// are guarded per-client so routing can read them while the engine writes.
type Client struct {
	id          string
	conn        interfaces.Connection
	connectedAt time.Time

	mu        sync.RWMutex
	state     types.ClientState
	partnerID string
	typing    bool
}

// NewClient wraps a connection in a registry record. New clients start Idle
// with no partner.
func NewClient(conn interfaces.Connection) *Client {
	return &Client{
		id:          conn.ID(),
		conn:        conn,
		connectedAt: time.Now(),
		state:       types.StateIdle,
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) ConnectedAt() time.Time {
	return c.connectedAt
}

func (c *Client) State() types.ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) SetState(state types.ClientState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
}

// PartnerID returns the current partner identifier, empty when unpaired.
func (c *Client) PartnerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.partnerID
}

func (c *Client) SetPartner(partnerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.partnerID = partnerID
}

// ClearPartner drops the partner reference; the old partner id is never
// retained across a break.
func (c *Client) ClearPartner() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.partnerID = ""
}

func (c *Client) Typing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.typing
}

func (c *Client) SetTyping(typing bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.typing = typing
}

// Send writes an event to the client's connection.
func (c *Client) Send(v interface{}) error {
	return c.conn.WriteJSON(v)
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
