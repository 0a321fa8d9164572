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

type studentProfiles interface {
	Profile(ctx context.Context, session *models.Session) (*models.Student, error)
	Setup(ctx context.Context, session *models.Session, req models.StudentSetupRequest) (*models.Student, error)
	Options() models.ProfileOptions
	Directory(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
}

// StudentHandler exposes profile endpoints and the admin student directory.
type StudentHandler struct {
	students studentProfiles
	logger   *zap.Logger
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentProfiles, logger *zap.Logger) *StudentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentHandler{students: students, logger: logger}
}

// Profile godoc
// @Summary Caller's profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /profile [get]
func (h *StudentHandler) Profile(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	view.ServeOne(c, h.logger, view.One("profile", "No profile data found.", func(ctx context.Context) (*models.Student, error) {
		return h.students.Profile(ctx, session)
	}))
}

// Setup godoc
// @Summary Complete the one-time profile setup
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.StudentSetupRequest true "Profile"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /profile [post]
func (h *StudentHandler) Setup(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.StudentSetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Setup(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Options godoc
// @Summary Department, year and gender choices for the setup form
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /profile/options [get]
func (h *StudentHandler) Options(c *gin.Context) {
	response.OK(c, h.students.Options())
}

// Directory godoc
// @Summary Filter the student directory
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or email substring"
// @Param year query string false "Year"
// @Param department query string false "Department"
// @Param gender query string false "Gender"
// @Success 200 {object} response.Envelope
// @Router /admin/students [get]
func (h *StudentHandler) Directory(c *gin.Context) {
	var filter models.StudentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid filter"))
		return
	}
	view.Serve(c, h.logger, view.Query[models.Student]{
		Name:         "students",
		EmptyMessage: "No students match the filters.",
		Fetch: func(ctx context.Context) ([]models.Student, error) {
			return h.students.Directory(ctx, filter)
		},
	})
}
