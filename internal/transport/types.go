// Package transport defines the event and send surface between the
// Telegram adapter and the reconciliation engine. The engine never imports
// telebot; it sees only these types.
package transport

import "context"

// Peer identifies whose conversation an event belongs to.
// DisplayName is best-effort (full name or username) and only used in alerts.
type Peer struct {
	ID          int64
	DisplayName string
}

// Message is a new or edited outbound message observed in a business chat.
//
// SenderID is the author of the message; PeerID is the chat it lives in.
// For self-sent messages (the only kind the tracker records) the two match.
type Message struct {
	Peer      Peer
	SenderID  int64
	MessageID int64
	Text      string
}

// Deleted is one bulk deletion event: the ids removed from a peer's chat,
// in the order the platform reported them.
type Deleted struct {
	Peer       Peer
	MessageIDs []int64
}

// SendOptions controls outbound formatting.
type SendOptions struct {
	HTML           bool
	DisablePreview bool
}

// Sender is the outbound text surface, used by the notifier.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string, opt *SendOptions) error
}

// Handler consumes inbound business-chat events. Implemented by the tracker.
type Handler interface {
	HandleNewMessage(ctx context.Context, msg Message) error
	HandleEdited(ctx context.Context, msg Message) error
	HandleDeleted(ctx context.Context, del Deleted) error
}
