package whatsapp

import (
	"context"

	"github.com/wolfman30/riverfront-whatsapp-bot/internal/autoreply"
	"github.com/wolfman30/riverfront-whatsapp-bot/pkg/logging"
)

// ReplySender sends autoreply replies from one business phone number.
type ReplySender struct {
	client        *Client
	phoneNumberID string
	logger        *logging.Logger
}

var _ autoreply.Sender = (*ReplySender)(nil)

// NewReplySender creates a sender bound to phoneNumberID.
func NewReplySender(client *Client, phoneNumberID string, logger *logging.Logger) *ReplySender {
	if client == nil {
		panic("whatsapp: client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ReplySender{client: client, phoneNumberID: phoneNumberID, logger: logger}
}

// SendReply sends reply as an interactive button message when it carries
// buttons that fit the provider limits, and as plain text otherwise.
func (s *ReplySender) SendReply(ctx context.Context, reply autoreply.OutboundReply) error {
	var (
		resp *SendResponse
		err  error
	)
	if buttons := toChoices(reply); buttons != nil && ValidateButtonMessage(reply.Body, buttons) == nil {
		resp, err = s.client.SendButtonMessage(ctx, s.phoneNumberID, reply.RecipientID, reply.Body, buttons)
	} else {
		resp, err = s.client.SendTextMessage(ctx, s.phoneNumberID, reply.RecipientID, reply.Body)
	}
	if err != nil {
		return err
	}
	s.logger.Debug("whatsapp: message accepted",
		"recipient_id", reply.RecipientID,
		"wamid", resp.MessageID(),
		"in_reply_to", reply.InReplyTo,
	)
	return nil
}

func toChoices(reply autoreply.OutboundReply) []Choice {
	if len(reply.Buttons) == 0 {
		return nil
	}
	out := make([]Choice, 0, len(reply.Buttons))
	for _, b := range reply.Buttons {
		out = append(out, Choice{ID: b.ID, Title: b.Title})
	}
	return out
}
