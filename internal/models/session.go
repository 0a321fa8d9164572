package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the access token payload minted by the hosted identity provider.
type SessionClaims struct {
	Email     string `json:"email"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Session is the verified identity attached to a request.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	SessionID string    `json:"session_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"-"`
}

// SessionEventType names a session lifecycle transition.
type SessionEventType string

const (
	SessionSignedIn  SessionEventType = "SIGNED_IN"
	SessionSignedOut SessionEventType = "SIGNED_OUT"
	SessionRefreshed SessionEventType = "TOKEN_REFRESHED"
)

// SessionEvent is published whenever a session changes.
type SessionEvent struct {
	Type      SessionEventType `json:"type"`
	UserID    string           `json:"user_id"`
	SessionID string           `json:"session_id,omitempty"`
	At        time.Time        `json:"at"`
}

// CurrentUser is returned to the navigation bar.
type CurrentUser struct {
	Session    Session `json:"session"`
	IsAdmin    bool    `json:"is_admin"`
	HasProfile bool    `json:"has_profile"`
}

// CallbackResult tells the client where to land after sign-in.
type CallbackResult struct {
	Next string `json:"next"`
}
