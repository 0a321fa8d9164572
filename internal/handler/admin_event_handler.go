package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ragul198/Event/internal/models"
	"github.com/Ragul198/Event/internal/service"
	"github.com/Ragul198/Event/internal/view"
	appErrors "github.com/Ragul198/Event/pkg/errors"
	"github.com/Ragul198/Event/pkg/response"
)

// imageField is the multipart part carrying the poster. It differs from the "image" form
// value, which holds an existing URL.
const imageField = "image_file"

type eventAdmin interface {
	AdminList(ctx context.Context) ([]models.Event, error)
	Form(ctx context.Context, id string) (*models.EventForm, error)
	Create(ctx context.Context, form models.EventForm, image *service.ImageUpload) (*models.Event, error)
	Update(ctx context.Context, id string, form models.EventForm, image *service.ImageUpload, confirmed bool) (*models.Event, error)
	Delete(ctx context.Context, id string, confirmed bool) error
}

// AdminEventHandler exposes the dashboard "manage" tab.
type AdminEventHandler struct {
	events eventAdmin
	logger *zap.Logger
}

// NewAdminEventHandler constructs AdminEventHandler.
func NewAdminEventHandler(events eventAdmin, logger *zap.Logger) *AdminEventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminEventHandler{events: events, logger: logger}
}

// List godoc
// @Summary Events ordered by date
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/events [get]
func (h *AdminEventHandler) List(c *gin.Context) {
	view.Serve(c, h.logger, view.Query[models.Event]{
		Name:         "admin_events",
		EmptyMessage: "No events yet.",
		Fetch:        h.events.AdminList,
	})
}

// Form godoc
// @Summary Event loaded into the edit form
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /admin/events/{id}/form [get]
func (h *AdminEventHandler) Form(c *gin.Context) {
	form, err := h.events.Form(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, form)
}

// Create godoc
// @Summary Create an event
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image_file formData file false "Poster image"
// @Success 201 {object} response.Envelope
// @Router /admin/events [post]
func (h *AdminEventHandler) Create(c *gin.Context) {
	form, image, closeImage, ok := h.bindForm(c)
	if !ok {
		return
	}
	defer closeImage()
	event, err := h.events.Create(c.Request.Context(), form, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Update an event (requires confirm=true)
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param confirm query bool true "Explicit confirmation"
// @Param image_file formData file false "Poster image"
// @Success 200 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Router /admin/events/{id} [put]
func (h *AdminEventHandler) Update(c *gin.Context) {
	if !confirmed(c) {
		response.Error(c, appErrors.Clone(appErrors.ErrConfirmationRequired, "confirm the update to continue"))
		return
	}
	form, image, closeImage, ok := h.bindForm(c)
	if !ok {
		return
	}
	defer closeImage()
	event, err := h.events.Update(c.Request.Context(), c.Param("id"), form, image, true)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, event)
}

// Delete godoc
// @Summary Delete an event (requires confirm=true)
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param confirm query bool true "Explicit confirmation"
// @Success 204
// @Failure 428 {object} response.Envelope
// @Router /admin/events/{id} [delete]
func (h *AdminEventHandler) Delete(c *gin.Context) {
	if err := h.events.Delete(c.Request.Context(), c.Param("id"), confirmed(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// bindForm accepts multipart (with an optional image) or JSON bodies. The returned func
// releases the uploaded file.
func (h *AdminEventHandler) bindForm(c *gin.Context) (models.EventForm, *service.ImageUpload, func(), bool) {
	noop := func() {}
	var form models.EventForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return form, nil, noop, false
	}
	header, err := c.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return form, nil, noop, true
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid image upload"))
		return form, nil, noop, false
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid image upload"))
		return form, nil, noop, false
	}
	image := &service.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	return form, image, func() { _ = file.Close() }, true
}
