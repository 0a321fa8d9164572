package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Ragul198/Event/internal/models"
	"github.com/Ragul198/Event/pkg/logger"
)

// ContextSessionKey is the gin context key storing the verified session.
const ContextSessionKey = "currentSession"

type sessionReader interface {
	Current(ctx context.Context, token string) (*models.Session, bool)
}

// Session attaches the caller's session when the request carries a valid token. It never blocks;
// the gate decides what an absent session means for a route.
func Session(sessions sessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if session, ok := sessions.Current(c.Request.Context(), token); ok {
				c.Set(ContextSessionKey, session)
				c.Set(logger.UserIDKey, session.UserID)
			}
		}
		c.Next()
	}
}

// CurrentSession returns the session attached by Session.
func CurrentSession(c *gin.Context) (*models.Session, bool) {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*models.Session)
	return session, ok && session != nil
}

// bearerToken reads the Authorization header. EventSource clients cannot set headers,
// so the access_token query parameter is accepted as well.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("access_token")
}
