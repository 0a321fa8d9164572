package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ragul198/Event/internal/models"
	"github.com/Ragul198/Event/internal/service"
	"github.com/Ragul198/Event/pkg/response"
)

type sessionFlows interface {
	SignInURL(provider string) string
	ResolveCallback(ctx context.Context, session *models.Session) (*models.CallbackResult, error)
	SignOut(ctx context.Context, session *models.Session) (*models.CallbackResult, error)
	Subscribe() (<-chan models.SessionEvent, func())
}

type adminChecker interface {
	IsAdmin(ctx context.Context, userID string, requirement service.Requirement) bool
}

type profileLookup interface {
	HasProfile(ctx context.Context, session *models.Session) (bool, error)
}

// AuthHandler exposes the session endpoints.
type AuthHandler struct {
	sessions sessionFlows
	authz    adminChecker
	profiles profileLookup
	logger   *zap.Logger
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(sessions sessionFlows, authz adminChecker, profiles profileLookup, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{sessions: sessions, authz: authz, profiles: profiles, logger: logger}
}

// Login godoc
// @Summary Start sign-in with the identity provider
// @Tags Auth
// @Param provider query string false "OAuth provider, defaults to google"
// @Success 302
// @Router /auth/login [get]
func (h *AuthHandler) Login(c *gin.Context) {
	c.Redirect(http.StatusFound, h.sessions.SignInURL(c.Query("provider")))
}

// Callback godoc
// @Summary Resolve where to go after sign-in
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /auth/callback [get]
func (h *AuthHandler) Callback(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	result, err := h.sessions.ResolveCallback(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Logout godoc
// @Summary Sign out
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	result, err := h.sessions.SignOut(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Events godoc
// @Summary Stream session changes as server-sent events
// @Tags Auth
// @Produce text/event-stream
// @Security BearerAuth
// @Router /auth/events [get]
func (h *AuthHandler) Events(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	events, unsubscribe := h.sessions.Subscribe()
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, open := <-events:
			if !open {
				return
			}
			if evt.UserID != session.UserID {
				continue
			}
			c.SSEvent("session", evt)
			c.Writer.Flush()
			if evt.Type == models.SessionSignedOut {
				return
			}
		}
	}
}

// Me godoc
// @Summary Current session for the navigation bar
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	hasProfile, err := h.profiles.HasProfile(ctx, session)
	if err != nil {
		h.logger.Warn("profile lookup failed", zap.String("user_id", session.UserID), zap.Error(err))
	}
	response.OK(c, models.CurrentUser{
		Session:    *session,
		IsAdmin:    h.authz.IsAdmin(ctx, session.UserID, service.RequireAdmin),
		HasProfile: hasProfile,
	})
}
