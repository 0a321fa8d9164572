package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ragul198/Event/internal/models"
	"github.com/Ragul198/Event/pkg/email"
)

type recordingSender struct {
	mu       sync.Mutex
	failures int
	sent     []email.Message
	attempts int
}

func (r *recordingSender) Send(ctx context.Context, msg email.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	if r.failures > 0 {
		r.failures--
		return "", errors.New("provider unavailable")
	}
	r.sent = append(r.sent, msg)
	return "msg-1", nil
}

func TestNotificationServiceDeliversConfirmation(t *testing.T) {
	sender := &recordingSender{failures: 1}
	svc := NewNotificationService(sender, nil, nil, NotificationConfig{Workers: 1, MaxRetries: 2, Backoff: time.Millisecond})
	svc.Start(context.Background())
	defer svc.Stop()

	event := models.Event{ID: "e1", Title: "Hackathon", Date: "2026-11-02", Time: "10:00", Venue: "Main Hall", Instructions: []string{"Bring laptop"}}
	svc.RegistrationConfirmed(context.Background(), &models.Session{UserID: "u1", Email: "asha@psg.edu"}, event)
	svc.Flush()

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Equal(t, 2, sender.attempts)
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, []string{"asha@psg.edu"}, msg.To)
	assert.Equal(t, "Registered: Hackathon", msg.Subject)
	assert.Contains(t, msg.HTML, "<h2>You are registered for Hackathon</h2>")
	assert.Contains(t, msg.HTML, "<li>Bring laptop</li>")
}

func TestNotificationServiceSkipsWithoutEmail(t *testing.T) {
	sender := &recordingSender{}
	svc := NewNotificationService(sender, nil, nil, NotificationConfig{})
	svc.Start(context.Background())
	defer svc.Stop()

	svc.RegistrationConfirmed(context.Background(), &models.Session{UserID: "u1"}, models.Event{ID: "e1"})
	svc.Flush()
	assert.Zero(t, sender.attempts)
}

func TestNotificationServiceNotStartedDropsQuietly(t *testing.T) {
	sender := &recordingSender{}
	svc := NewNotificationService(sender, nil, nil, NotificationConfig{})
	svc.RegistrationConfirmed(context.Background(), &models.Session{UserID: "u1", Email: "a@b.c"}, models.Event{ID: "e1", Title: "Quiz"})
	assert.Zero(t, sender.attempts)
}
