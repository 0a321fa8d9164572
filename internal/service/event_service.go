package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Ragul198/Event/internal/models"
	"github.com/Ragul198/Event/pkg/config"
	appErrors "github.com/Ragul198/Event/pkg/errors"
	"github.com/Ragul198/Event/pkg/markdown"
	"github.com/Ragul198/Event/pkg/storage"
)

type eventRepository interface {
	ListOpen(ctx context.Context, now time.Time) ([]models.Event, error)
	ListByDeadline(ctx context.Context) ([]models.Event, error)
	ListByDate(ctx context.Context) ([]models.Event, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
}

type registrationLookup interface {
	Exists(ctx context.Context, userID, eventID string) (bool, error)
	EventIDsForUser(ctx context.Context, userID string) (map[string]struct{}, error)
}

// EventServiceConfig carries listing policy and upload limits.
type EventServiceConfig struct {
	Visibility    string
	Location      *time.Location
	MaxImageBytes int64
	AllowedMIMEs  []string
}

// EventService serves event listings and the admin event forms.
type EventService struct {
	events        eventRepository
	registrations registrationLookup
	store         storage.ObjectStore
	cache         *CacheService
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
	config        EventServiceConfig
	now           func() time.Time
}

// NewEventService constructs an EventService.
func NewEventService(events eventRepository, registrations registrationLookup, store storage.ObjectStore, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg EventServiceConfig) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &EventService{
		events:        events,
		registrations: registrations,
		store:         store,
		cache:         cache,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
		config:        cfg,
		now:           time.Now,
	}
}

// List returns the home listing for the caller under the configured visibility policy.
func (s *EventService) List(ctx context.Context, session *models.Session) ([]models.EventCard, error) {
	now := s.now()
	var (
		events []models.Event
		err    error
	)
	if s.config.Visibility == config.VisibilityMarkClosed {
		events, err = s.events.ListByDeadline(ctx)
	} else {
		events, err = s.events.ListOpen(ctx, now)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load events")
	}

	registered, err := s.registrations.EventIDsForUser(ctx, session.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load registrations")
	}

	cards := make([]models.EventCard, 0, len(events))
	for _, event := range events {
		_, ok := registered[event.ID]
		cards = append(cards, models.EventCard{Event: event, State: ReconcileState(now, event.RegistrationDeadline, ok)})
	}
	return cards, nil
}

// Detail returns one event with its rendered description and the caller's state.
func (s *EventService) Detail(ctx context.Context, session *models.Session, id string) (*models.EventDetail, error) {
	event, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	registered, err := s.registrations.Exists(ctx, session.UserID, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load registration")
	}
	html, err := markdown.ToHTML(event.Description)
	if err != nil {
		s.logger.Warn("render description", zap.String("event_id", id), zap.Error(err))
	}
	return &models.EventDetail{
		Event:           *event,
		DescriptionHTML: html,
		State:           ReconcileState(s.now(), event.RegistrationDeadline, registered),
	}, nil
}

// AdminList returns every event ordered by date.
func (s *EventService) AdminList(ctx context.Context) ([]models.Event, error) {
	events, err := s.events.ListByDate(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load events")
	}
	return events, nil
}

// Form loads an event into its editable representation.
func (s *EventService) Form(ctx context.Context, id string) (*models.EventForm, error) {
	event, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	form := eventToForm(*event, s.config.Location)
	return &form, nil
}

// Create validates the form, uploads the image if any, then inserts the event.
func (s *EventService) Create(ctx context.Context, form models.EventForm, image *ImageUpload) (*models.Event, error) {
	deadline, err := s.validateForm(form)
	if err != nil {
		return nil, err
	}
	if err := s.attachImage(ctx, &form, image); err != nil {
		return nil, err
	}
	event := formToEvent(form, deadline)
	if err := s.events.Create(ctx, &event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	return &event, nil
}

// Update overwrites an event. Nothing is uploaded or written without confirmation.
func (s *EventService) Update(ctx context.Context, id string, form models.EventForm, image *ImageUpload, confirmed bool) (*models.Event, error) {
	if !confirmed {
		return nil, appErrors.Clone(appErrors.ErrConfirmationRequired, "confirm the update to continue")
	}
	deadline, err := s.validateForm(form)
	if err != nil {
		return nil, err
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	if err := s.attachImage(ctx, &form, image); err != nil {
		return nil, err
	}
	event := formToEvent(form, deadline)
	event.ID = id
	if err := s.events.Update(ctx, &event); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Event not found.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	s.cache.Invalidate(ctx, statsCachePattern)
	return &event, nil
}

// Delete removes an event after confirmation.
func (s *EventService) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return appErrors.Clone(appErrors.ErrConfirmationRequired, "confirm the deletion to continue")
	}
	if err := s.events.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Event not found.")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	s.cache.Invalidate(ctx, statsCachePattern)
	return nil
}

func (s *EventService) find(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Event not found.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load event")
	}
	return event, nil
}

func (s *EventService) validateForm(form models.EventForm) (time.Time, error) {
	if err := s.validator.Struct(form); err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Registration deadline is required.")
	}
	deadline, err := ParseDeadline(form.RegistrationDeadline, s.config.Location)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Registration deadline must be a date and time.")
	}
	return deadline, nil
}

// attachImage uploads first and swaps the form's image field for the public URL.
func (s *EventService) attachImage(ctx context.Context, form *models.EventForm, image *ImageUpload) error {
	if image == nil {
		return nil
	}
	if s.config.MaxImageBytes > 0 && image.Size > s.config.MaxImageBytes {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("image exceeds %d bytes", s.config.MaxImageBytes))
	}
	if !s.allowedMIME(image.ContentType) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("image type %q is not allowed", image.ContentType))
	}
	url, err := s.store.Upload(ctx, storage.Object{
		Name:        storage.GenerateName("events", image.Filename),
		ContentType: image.ContentType,
		Size:        image.Size,
		Body:        image.Body,
	})
	if err != nil {
		s.metrics.RecordUpload("failed")
		return appErrors.Wrap(err, appErrors.ErrUploadFailed.Code, appErrors.ErrUploadFailed.Status, appErrors.ErrUploadFailed.Message)
	}
	s.metrics.RecordUpload("ok")
	form.Image = url
	return nil
}

func (s *EventService) allowedMIME(contentType string) bool {
	if len(s.config.AllowedMIMEs) == 0 {
		return true
	}
	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, allowed := range s.config.AllowedMIMEs {
		if strings.EqualFold(allowed, contentType) {
			return true
		}
	}
	return false
}
