package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Ragul198/Event/internal/middleware"
	"github.com/Ragul198/Event/internal/models"
	appErrors "github.com/Ragul198/Event/pkg/errors"
	"github.com/Ragul198/Event/pkg/response"
)

// ConfirmHeader lets clients confirm a destructive request without a query parameter.
const ConfirmHeader = "X-Confirm"

// sessionFromContext returns the gated session. Routes behind the gate always carry one;
// a missing session is answered here so handlers can return early.
func sessionFromContext(c *gin.Context) (*models.Session, bool) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return session, true
}

// confirmed reports whether the caller explicitly confirmed an update or delete.
func confirmed(c *gin.Context) bool {
	if strings.EqualFold(c.Query("confirm"), "true") {
		return true
	}
	return strings.EqualFold(c.GetHeader(ConfirmHeader), "true")
}
