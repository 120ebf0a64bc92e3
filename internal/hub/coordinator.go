package hub

import (
	"log"
	"time"

	"tandem/internal/match"
	"tandem/internal/registry"
	"tandem/internal/router"
	"tandem/pkg/interfaces"
	"tandem/pkg/types"
)

// Coordinator translates client-originated events into state transitions,
// matching runs, and relays. Each inbound event is handled synchronously:
// the structural mutation happens under the engine's exclusion domain and
// the outbound notifications are direct side effects of the handler, not
// separately scheduled work. The one exception is the skip re-match, which
// may be deferred by a short tunable delay; the break always completes
// before the new search begins either way.
type Coordinator struct {
	registry     *registry.Registry
	engine       *match.Engine
	router       *router.Router
	rematchDelay time.Duration
}

// NewCoordinator creates a lifecycle coordinator. rematchDelay is the pause
// between breaking a skipped pairing and searching for a new partner; zero
// makes the re-match synchronous.
func NewCoordinator(reg *registry.Registry, engine *match.Engine, r *router.Router, rematchDelay time.Duration) *Coordinator {
	return &Coordinator{
		registry:     reg,
		engine:       engine,
		router:       r,
		rematchDelay: rematchDelay,
	}
}

// Connect registers a new connection (state Idle) and broadcasts the updated
// online count to everyone.
func (c *Coordinator) Connect(conn interfaces.Connection) (*registry.Client, error) {
	client, err := c.registry.Register(conn)
	if err != nil {
		return nil, err
	}

	log.Printf("hub: connected %s", client.ID())
	c.broadcastOnlineCount()
	return client, nil
}

// Disconnect unconditionally removes a connection from the pairing table,
// waiting pool, and registry, from any state. A paired partner is notified
// and returned to Waiting, never left dangling. Safe to invoke concurrently
// with any other event for the same connection.
func (c *Coordinator) Disconnect(id string) {
	if partnerID, hadPartner := c.engine.Break(id, types.NoticePartnerDisconnected); hadPartner {
		log.Printf("hub: %s disconnected, partner %s returned to pool", id, partnerID)
	}

	client, existed := c.registry.Remove(id)
	if !existed {
		return // already gone, concurrent disconnect
	}
	if err := client.Close(); err != nil {
		log.Printf("hub: close failed for %s: %v", id, err)
	}

	c.router.Forget(id)

	log.Printf("hub: disconnected %s", id)
	c.broadcastOnlineCount()
}

// HandleEvent dispatches one decoded client event. Protocol misuse is never
// fatal: the offending event is dropped or answered with a non-fatal error
// notice and the connection stays up.
func (c *Coordinator) HandleEvent(id string, event types.ClientEvent) {
	switch event.Type {
	case types.EventFindPartner:
		if err := c.engine.FindPartnerFor(id); err != nil {
			c.sendError(id, err)
		}

	case types.EventSendMessage:
		if err := c.router.RelayMessage(id, event.Text); err != nil {
			c.sendError(id, err)
		}

	case types.EventTypingStart, types.EventTypingStop:
		// Typing signals from an unpaired sender are dropped silently;
		// there is nothing actionable for the client in that race.
		if err := c.router.RelayTyping(id, event.Type == types.EventTypingStart); err != nil {
			log.Printf("hub: dropped %s from %s: %v", event.Type, id, err)
		}

	case types.EventNextPartner:
		c.nextPartner(id)

	case types.EventDisconnectChat:
		c.engine.Break(id, types.NoticePartnerLeft)

	default:
		c.sendError(id, types.ErrInvalidEventType)
	}
}

// nextPartner breaks the current pairing and re-runs matching for the
// skipper. The break always completes first, and the search avoids the
// just-skipped partner so the same two connections are not instantly
// re-paired by the event that separated them. A skip from an unpaired
// sender is protocol misuse: it is answered with an error notice and
// never enqueues the sender.
func (c *Coordinator) nextPartner(id string) {
	if _, paired := c.engine.PartnerOf(id); !paired {
		c.sendError(id, router.ErrNotPaired)
		return
	}

	skipped, hadPartner := c.engine.Break(id, types.NoticePartnerSkipped)
	if !hadPartner {
		return // pairing dissolved concurrently, nothing to re-run
	}

	if c.rematchDelay <= 0 {
		c.rematch(id, skipped)
		return
	}
	time.AfterFunc(c.rematchDelay, func() {
		c.rematch(id, skipped)
	})
}

// rematch runs a partner search after a skip, skipping clients that
// vanished or re-paired while a deferred timer was pending.
func (c *Coordinator) rematch(id, avoid string) {
	if _, exists := c.registry.Get(id); !exists {
		return
	}
	if err := c.engine.Rematch(id, avoid); err != nil && err != match.ErrAlreadyPaired {
		log.Printf("hub: re-match failed for %s: %v", id, err)
	}
}

// broadcastOnlineCount pushes the live connection count to every client.
func (c *Coordinator) broadcastOnlineCount() {
	count := c.registry.Count()
	event := types.OnlineCount{Type: types.EventOnlineCount, Count: count}
	for _, client := range c.registry.All() {
		if err := client.Send(event); err != nil {
			log.Printf("hub: online count not delivered to %s: %v", client.ID(), err)
		}
	}
}

// sendError answers protocol misuse with a non-fatal error notice.
func (c *Coordinator) sendError(id string, cause error) {
	client, exists := c.registry.Get(id)
	if !exists {
		return
	}
	notice := types.Notice{Type: types.EventError, Message: cause.Error()}
	if err := client.Send(notice); err != nil {
		log.Printf("hub: error notice not delivered to %s: %v", id, err)
	}
}
