package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// ResendSender delivers mail through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

// NewResendSender creates a sender bound to the API key and default from address.
func NewResendSender(apiKey, from string, logger *zap.Logger) *ResendSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResendSender{client: resend.NewClient(apiKey), from: from, logger: logger}
}

// Send implements Sender and returns the provider message id.
func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	if len(msg.To) == 0 {
		return "", ErrNoRecipients
	}
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	if msg.ReplyTo != "" {
		params.ReplyTo = msg.ReplyTo
	}
	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", fmt.Errorf("resend send: %w", err)
	}
	s.logger.Debug("email sent", zap.String("message_id", sent.Id), zap.Strings("to", msg.To))
	return sent.Id, nil
}
