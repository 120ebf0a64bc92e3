package router

import (
	"log"
	"time"

	"github.com/google/uuid"

	"tandem/internal/match"
	"tandem/internal/registry"
	"tandem/pkg/types"
)

// Router relays chat messages and typing signals strictly within an active
// pairing. The pairing table is the authority on who may talk to whom: a
// sender without a live pairing gets a benign error and nothing is ever
// forwarded to a stale or departed partner.
type Router struct {
	registry      *registry.Registry
	engine        *match.Engine
	limiter       *RateLimiter
	maxMessageLen int
}

// NewRouter creates a session event router. messagesPerMinute <= 0 disables
// rate limiting; maxMessageLen <= 0 falls back to types.MaxMessageLength.
func NewRouter(reg *registry.Registry, engine *match.Engine, maxMessageLen, messagesPerMinute int) *Router {
	if maxMessageLen <= 0 {
		maxMessageLen = types.MaxMessageLength
	}
	return &Router{
		registry:      reg,
		engine:        engine,
		limiter:       NewRateLimiter(messagesPerMinute),
		maxMessageLen: maxMessageLen,
	}
}

// RelayMessage validates and forwards a chat message from senderID to its
// partner. The message id and timestamp are assigned here, at relay time.
// The sender receives nothing back: its own echo is a local client concern.
func (r *Router) RelayMessage(senderID, text string) error {
	sender, partner, err := r.pairedEndpoints(senderID)
	if err != nil {
		return err
	}

	trimmed, err := types.ValidateMessageText(text, r.maxMessageLen)
	if err != nil {
		return err
	}

	if !r.limiter.Allow(senderID) {
		return ErrRateLimited
	}

	// A delivered message implies the sender stopped typing.
	sender.SetTyping(false)

	relayed := types.ChatMessage{
		Type:      types.EventMessageReceived,
		ID:        uuid.New().String(),
		Text:      trimmed,
		Sender:    types.SenderPartner,
		Timestamp: time.Now(),
	}
	if err := partner.Send(relayed); err != nil {
		// The partner's own disconnect path unwinds the pairing.
		log.Printf("router: failed to deliver message to %s: %v", partner.ID(), err)
	}

	return nil
}

// RelayTyping forwards a typing-start or typing-stop signal to the sender's
// partner as-is. There is no server-side timer: the 1-second auto-stop is a
// sender-side policy, and a client silent for longer than that is assumed
// idle by its peer.
func (r *Router) RelayTyping(senderID string, active bool) error {
	sender, partner, err := r.pairedEndpoints(senderID)
	if err != nil {
		return err
	}

	sender.SetTyping(active)

	eventType := types.EventPartnerTypingStop
	if active {
		eventType = types.EventPartnerTypingStart
	}
	if err := partner.Send(types.Notice{Type: eventType}); err != nil {
		log.Printf("router: failed to deliver typing signal to %s: %v", partner.ID(), err)
	}

	return nil
}

// Forget releases per-sender relay state on disconnect.
func (r *Router) Forget(id string) {
	r.limiter.Forget(id)
}

// pairedEndpoints resolves the sender and its partner, requiring an active
// pairing for both.
func (r *Router) pairedEndpoints(senderID string) (sender, partner *registry.Client, err error) {
	sender, exists := r.registry.Get(senderID)
	if !exists {
		return nil, nil, ErrSenderNotConnected
	}

	partnerID, paired := r.engine.PartnerOf(senderID)
	if !paired {
		return nil, nil, ErrNotPaired
	}

	partner, exists = r.registry.Get(partnerID)
	if !exists {
		// Registry removal races ahead of the pairing break only within the
		// disconnect path itself; treat as not-paired rather than relay to
		// a departed connection.
		return nil, nil, ErrNotPaired
	}

	return sender, partner, nil
}
