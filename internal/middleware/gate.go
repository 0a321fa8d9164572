package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Ragul198/Event/internal/models"
	"github.com/Ragul198/Event/internal/service"
	appErrors "github.com/Ragul198/Event/pkg/errors"
	"github.com/Ragul198/Event/pkg/response"
)

type policy interface {
	Evaluate(ctx context.Context, session *models.Session, requirement service.Requirement) service.Decision
}

// Require runs the authorization policy on every request to the route.
// Rejected callers get a redirect and nothing else.
func Require(gate policy, requirement service.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, _ := CurrentSession(c)
		decision := gate.Evaluate(c.Request.Context(), session, requirement)
		switch decision.Outcome {
		case service.OutcomeAllowed:
			c.Next()
		case service.OutcomeUnauthenticated:
			response.Redirect(c, appErrors.ErrUnauthorized, decision.Redirect)
		default:
			response.Redirect(c, appErrors.ErrForbidden, decision.Redirect)
		}
	}
}

// Authenticated is shorthand for Require(gate, service.RequireAuthenticated).
func Authenticated(gate policy) gin.HandlerFunc {
	return Require(gate, service.RequireAuthenticated)
}

// Admin is shorthand for Require(gate, service.RequireAdmin).
func Admin(gate policy) gin.HandlerFunc {
	return Require(gate, service.RequireAdmin)
}
