package autoreply

import (
	"context"

	"github.com/wolfman30/riverfront-whatsapp-bot/internal/replies"
)

// InboundMessage is a user message extracted from a webhook delivery.
type InboundMessage struct {
	MessageID     string
	PhoneNumberID string
	SenderID      string
	Type          string
	Text          string
}

// OutboundReply carries the data required to push a reply to the user.
type OutboundReply struct {
	RecipientID string
	Body        string
	Group       string
	Buttons     []replies.Button
	// InReplyTo is the inbound message id, used for logging only.
	InReplyTo string
}

// Sender delivers a reply through the provider's send API.
type Sender interface {
	SendReply(ctx context.Context, reply OutboundReply) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, reply OutboundReply) error

func (f SenderFunc) SendReply(ctx context.Context, reply OutboundReply) error {
	return f(ctx, reply)
}

// DateResponder answers messages that mention a calendar date. It reports
// false when the text holds no date.
type DateResponder interface {
	Respond(text string) (string, bool)
}
