package handler

import (
	"context"
	"net/http"
	"os"
	"path"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ragul198/Event/internal/models"
	"github.com/Ragul198/Event/internal/view"
	appErrors "github.com/Ragul198/Event/pkg/errors"
	"github.com/Ragul198/Event/pkg/export"
	"github.com/Ragul198/Event/pkg/response"
	"github.com/Ragul198/Event/pkg/storage"
)

type statsReader interface {
	Events(ctx context.Context) ([]models.EventStats, error)
}

type rosterManager interface {
	Roster(ctx context.Context, eventID string) (*models.Roster, error)
	RemoveRegistration(ctx context.Context, registrationID string, confirmed bool) error
	Export(ctx context.Context, eventID string, format export.Format) (*models.ExportFile, error)
	OpenExport(token string) (*os.File, storage.SignedLink, error)
}

// DashboardHandler serves the admin stats tab and per-event rosters.
type DashboardHandler struct {
	stats   statsReader
	rosters rosterManager
	logger  *zap.Logger
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(stats statsReader, rosters rosterManager, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{stats: stats, rosters: rosters, logger: logger}
}

// Stats godoc
// @Summary Registrations per event by gender
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	view.Serve(c, h.logger, view.Query[models.EventStats]{
		Name:         "stats",
		EmptyMessage: "No registrations yet.",
		Fetch:        h.stats.Events,
	})
}

// Roster godoc
// @Summary Participants of one event
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Router /admin/events/{id}/registrations [get]
func (h *DashboardHandler) Roster(c *gin.Context) {
	roster, err := h.rosters.Roster(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Warn("view fetch failed", zap.String("view", "roster"), zap.Error(err))
		response.Error(c, err, map[string]interface{}{"state": string(view.StateError), "view": "roster"})
		return
	}
	meta := map[string]interface{}{"state": string(view.StateReady), "view": "roster", "count": len(roster.Participants)}
	if len(roster.Participants) == 0 {
		meta = map[string]interface{}{"state": string(view.StateEmpty), "view": "roster", "message": "No registrations for this event yet."}
	}
	response.OK(c, roster, meta)
}

// RemoveRegistration godoc
// @Summary Delete a registration (requires confirm=true)
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Param confirm query bool true "Explicit confirmation"
// @Success 204
// @Failure 428 {object} response.Envelope
// @Router /admin/registrations/{id} [delete]
func (h *DashboardHandler) RemoveRegistration(c *gin.Context) {
	if err := h.rosters.RemoveRegistration(c.Request.Context(), c.Param("id"), confirmed(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Render the roster and return a signed download link
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param format query string false "csv or pdf"
// @Success 201 {object} response.Envelope
// @Router /admin/events/{id}/registrations/export [post]
func (h *DashboardHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, err.Error()))
		return
	}
	file, err := h.rosters.Export(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, file)
}

// Download godoc
// @Summary Download an export through its signed token
// @Tags Exports
// @Produce application/octet-stream
// @Param token query string true "Signed token"
// @Success 200
// @Router /exports/download [get]
func (h *DashboardHandler) Download(c *gin.Context) {
	file, link, err := h.rosters.OpenExport(c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export"))
		return
	}
	name := path.Base(link.Path)
	format := export.FormatCSV
	if path.Ext(name) == ".pdf" {
		format = export.FormatPDF
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.DataFromReader(http.StatusOK, info.Size(), format.ContentType(), file, nil)
}
