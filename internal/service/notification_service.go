package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Ragul198/Event/internal/models"
	"github.com/Ragul198/Event/pkg/email"
	"github.com/Ragul198/Event/pkg/jobs"
	"github.com/Ragul198/Event/pkg/markdown"
)

// NotificationConfig sizes the delivery queue.
type NotificationConfig struct {
	Workers    int
	MaxRetries int
	Backoff    time.Duration
}

// NotificationService sends registration confirmations in the background.
type NotificationService struct {
	sender  email.Sender
	queue   *jobs.Queue[email.Message]
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotificationService wires a sender behind a retrying job queue. A nil sender drops messages.
func NewNotificationService(sender email.Sender, metrics *MetricsService, logger *zap.Logger, cfg NotificationConfig) *NotificationService {
	if sender == nil {
		sender = email.NopSender{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{sender: sender, metrics: metrics, logger: logger}
	s.queue = jobs.New("notifications", s.deliver, jobs.Options{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		Backoff:    cfg.Backoff,
		Logger:     logger,
	})
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop halts delivery.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Flush waits for queued messages to be delivered or abandoned.
func (s *NotificationService) Flush() {
	s.queue.Drain()
}

// RegistrationConfirmed queues a confirmation email. Failures never reach the caller.
func (s *NotificationService) RegistrationConfirmed(ctx context.Context, session *models.Session, event models.Event) {
	if session == nil || session.Email == "" {
		return
	}
	body, err := markdown.ToHTML(confirmationMarkdown(event))
	if err != nil {
		s.logger.Warn("render confirmation failed", zap.String("event_id", event.ID), zap.Error(err))
		s.metrics.RecordNotification("render_failed")
		return
	}
	msg := email.Message{
		To:      []string{session.Email},
		Subject: fmt.Sprintf("Registered: %s", event.Title),
		HTML:    body,
	}
	if err := s.queue.Submit(session.UserID+":"+event.ID, msg); err != nil {
		s.logger.Warn("confirmation not queued", zap.String("event_id", event.ID), zap.Error(err))
		s.metrics.RecordNotification("dropped")
	}
}

func (s *NotificationService) deliver(ctx context.Context, task jobs.Task[email.Message]) error {
	id, err := s.sender.Send(ctx, task.Payload)
	if err != nil {
		s.metrics.RecordNotification("failed")
		return err
	}
	s.metrics.RecordNotification("sent")
	s.logger.Debug("confirmation delivered", zap.String("task_id", task.ID), zap.String("message_id", id))
	return nil
}

func confirmationMarkdown(event models.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## You are registered for %s\n\n", event.Title)
	if event.Date != "" || event.Time != "" {
		fmt.Fprintf(&b, "**When:** %s %s\n", event.Date, event.Time)
	}
	if event.Venue != "" {
		fmt.Fprintf(&b, "**Where:** %s\n", event.Venue)
	}
	if len(event.Instructions) > 0 {
		b.WriteString("\n### Instructions\n\n")
		for _, line := range event.Instructions {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}
	return b.String()
}
