package email

import (
	"context"
	"errors"
)

// Message is a single outgoing email.
type Message struct {
	To      []string
	Subject string
	HTML    string
	ReplyTo string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// ErrNoRecipients is returned for messages without an address.
var ErrNoRecipients = errors.New("email has no recipients")

// NopSender drops every message. Used when notifications are disabled.
type NopSender struct{}

// Send implements Sender.
func (NopSender) Send(context.Context, Message) (string, error) {
	return "", nil
}
