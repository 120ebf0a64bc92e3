package types

import (
	"time"
)

// Client-to-server event types.
const (
	EventFindPartner    = "find_partner"
	EventSendMessage    = "send_message"
	EventTypingStart    = "typing_start"
	EventTypingStop     = "typing_stop"
	EventNextPartner    = "next_partner"
	EventDisconnectChat = "disconnect_chat"
)

// Server-to-client event types.
const (
	EventWaitingForPartner   = "waiting_for_partner"
	EventPartnerFound        = "partner_found"
	EventPartnerDisconnected = "partner_disconnected"
	EventMessageReceived     = "message_received"
	EventPartnerTypingStart  = "partner_typing_start"
	EventPartnerTypingStop   = "partner_typing_stop"
	EventOnlineCount         = "online_count"
	EventError               = "error"
)

// SenderPartner tags relayed messages as originating from the recipient's
// partner. The sender's own echo is a client-side concern and is never
// relayed back.
const SenderPartner = "partner"

// MaxMessageLength is the relay cap on chat message text, counted in runes.
const MaxMessageLength = 500

// ClientState tracks where a connection is in the pairing lifecycle.
// Transitions: Idle -> Waiting -> Paired -> {Waiting | Idle}, repeating
// until disconnect.
type ClientState string

const (
	StateIdle    ClientState = "idle"
	StateWaiting ClientState = "waiting"
	StatePaired  ClientState = "paired"
)

// ClientEvent is the decoded client-to-server frame. Text is only set for
// send_message; the remaining event types carry no payload.
type ClientEvent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Notice is the generic server-to-client frame for events whose only payload
// is an optional human-readable message (waiting_for_partner,
// partner_disconnected, partner_typing_start/stop, error).
type Notice struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// PartnerFound announces a formed pairing to both sides.
type PartnerFound struct {
	Type      string `json:"type"`
	PartnerID string `json:"partnerId"`
	Message   string `json:"message"`
}

// ChatMessage is a relayed chat message. ID and Timestamp are assigned
// server-side at relay time.
type ChatMessage struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// OnlineCount carries the process-wide count of live connections, broadcast
// on every connect and disconnect.
type OnlineCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// User-facing notice texts.
const (
	NoticeWaiting             = "Waiting for a partner..."
	NoticePartnerFound        = "You are now chatting with a stranger. Say hi!"
	NoticePartnerDisconnected = "Your partner has disconnected."
	NoticePartnerSkipped      = "Your partner skipped to the next chat."
	NoticePartnerLeft         = "Your partner left the chat."
)
