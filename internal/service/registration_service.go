package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Ragul198/Event/internal/models"
	appErrors "github.com/Ragul198/Event/pkg/errors"
)

type eventFinder interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
}

type registrationStore interface {
	Exists(ctx context.Context, userID, eventID string) (bool, error)
	Insert(ctx context.Context, reg *models.Registration) (bool, error)
	EventsForUser(ctx context.Context, userID string) ([]models.Event, error)
}

type registrationNotifier interface {
	RegistrationConfirmed(ctx context.Context, session *models.Session, event models.Event)
}

// ReconcileState derives the registration state. CLOSED wins over ALREADY_REGISTERED, which wins over OPEN.
func ReconcileState(now, deadline time.Time, registered bool) models.RegistrationState {
	if !now.Before(deadline) {
		return models.RegistrationClosed
	}
	if registered {
		return models.RegistrationAlreadyRegistered
	}
	return models.RegistrationOpen
}

// RegistrationService reconciles and records event registrations.
type RegistrationService struct {
	events        eventFinder
	registrations registrationStore
	notifier      registrationNotifier
	cache         *CacheService
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	now           func() time.Time
}

// NewRegistrationService constructs a RegistrationService. notifier may be nil.
func NewRegistrationService(events eventFinder, registrations registrationStore, notifier registrationNotifier, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		events:        events,
		registrations: registrations,
		notifier:      notifier,
		cache:         cache,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
		now:           time.Now,
	}
}

// Status reports the caller's state for an event.
func (s *RegistrationService) Status(ctx context.Context, session *models.Session, eventID string) (*models.RegistrationStatus, error) {
	event, err := s.event(ctx, eventID)
	if err != nil {
		return nil, err
	}
	registered, err := s.registrations.Exists(ctx, session.UserID, eventID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load registration")
	}
	return &models.RegistrationStatus{
		EventID:    event.ID,
		EventTitle: event.Title,
		State:      ReconcileState(s.now(), event.RegistrationDeadline, registered),
	}, nil
}

// Register makes a single idempotent insert attempt for the caller.
func (s *RegistrationService) Register(ctx context.Context, session *models.Session, eventID string, form models.RegistrationForm) (*models.Registration, error) {
	if err := s.validator.Struct(form); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Year, department and gender (Male, Female or Other) are required.")
	}
	event, err := s.event(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !s.now().Before(event.RegistrationDeadline) {
		s.metrics.RecordRegistration(appErrors.ErrRegistrationClosed.Code)
		return nil, appErrors.Clone(appErrors.ErrRegistrationClosed, "")
	}

	reg := &models.Registration{UserID: session.UserID, EventID: eventID, FormData: form}
	inserted, err := s.registrations.Insert(ctx, reg)
	if err != nil {
		s.metrics.RecordRegistration(appErrors.ErrRegistrationFailed.Code)
		return nil, appErrors.Wrap(err, appErrors.ErrRegistrationFailed.Code, appErrors.ErrRegistrationFailed.Status, appErrors.ErrRegistrationFailed.Message)
	}
	if !inserted {
		s.metrics.RecordRegistration(appErrors.ErrAlreadyRegistered.Code)
		return nil, appErrors.Clone(appErrors.ErrAlreadyRegistered, "")
	}

	s.metrics.RecordRegistration("REGISTERED")
	s.cache.Invalidate(ctx, statsCachePattern)
	if s.notifier != nil {
		s.notifier.RegistrationConfirmed(ctx, session, *event)
	}
	return reg, nil
}

// MyEvents lists the events the caller registered for.
func (s *RegistrationService) MyEvents(ctx context.Context, session *models.Session) ([]models.Event, error) {
	events, err := s.registrations.EventsForUser(ctx, session.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load your events")
	}
	return events, nil
}

func (s *RegistrationService) event(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Event not found.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load event")
	}
	return event, nil
}
