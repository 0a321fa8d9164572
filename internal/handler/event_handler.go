package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ragul198/Event/internal/models"
	"github.com/Ragul198/Event/internal/view"
	appErrors "github.com/Ragul198/Event/pkg/errors"
	"github.com/Ragul198/Event/pkg/response"
)

type eventReader interface {
	List(ctx context.Context, session *models.Session) ([]models.EventCard, error)
	Detail(ctx context.Context, session *models.Session, id string) (*models.EventDetail, error)
}

type registrationFlows interface {
	Status(ctx context.Context, session *models.Session, eventID string) (*models.RegistrationStatus, error)
	Register(ctx context.Context, session *models.Session, eventID string, form models.RegistrationForm) (*models.Registration, error)
	MyEvents(ctx context.Context, session *models.Session) ([]models.Event, error)
}

// EventHandler serves the student facing event views.
type EventHandler struct {
	events        eventReader
	registrations registrationFlows
	logger        *zap.Logger
}

// NewEventHandler constructs EventHandler.
func NewEventHandler(events eventReader, registrations registrationFlows, logger *zap.Logger) *EventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHandler{events: events, registrations: registrations, logger: logger}
}

// List godoc
// @Summary Home listing with the caller's registration state
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	view.Serve(c, h.logger, view.Query[models.EventCard]{
		Name:         "events",
		EmptyMessage: "No events available right now.",
		Fetch: func(ctx context.Context) ([]models.EventCard, error) {
			return h.events.List(ctx, session)
		},
	})
}

// Detail godoc
// @Summary Event detail
// @Tags Events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Detail(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	id := c.Param("id")
	view.ServeOne(c, h.logger, view.One("event_detail", "Event not found.", func(ctx context.Context) (*models.EventDetail, error) {
		return h.events.Detail(ctx, session, id)
	}))
}

// RegistrationStatus godoc
// @Summary Registration state of the caller for an event
// @Tags Registrations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /events/{id}/registration [get]
func (h *EventHandler) RegistrationStatus(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	status, err := h.registrations.Status(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, status)
}

// Register godoc
// @Summary Register for an event
// @Tags Registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param payload body models.RegistrationForm true "Registration form"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /events/{id}/registration [post]
func (h *EventHandler) Register(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var form models.RegistrationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	reg, err := h.registrations.Register(c.Request.Context(), session, c.Param("id"), form)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reg)
}

// MyEvents godoc
// @Summary Events the caller registered for
// @Tags Registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /my/events [get]
func (h *EventHandler) MyEvents(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	view.Serve(c, h.logger, view.Query[models.Event]{
		Name:         "my_events",
		EmptyMessage: "You have not registered for any events yet.",
		Fetch: func(ctx context.Context) ([]models.Event, error) {
			return h.registrations.MyEvents(ctx, session)
		},
	})
}
