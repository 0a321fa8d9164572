package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/Ragul198/Event/internal/models"
	appErrors "github.com/Ragul198/Event/pkg/errors"
)

// Client routes returned by the session flows.
const (
	RouteLogin        = "/login"
	RouteHome         = "/"
	RouteStudentSetup = "/student-setup"
)

var errSessionRevoked = errors.New("session revoked")

type revocationStore interface {
	Revoke(ctx context.Context, key string, until time.Time) error
	IsRevoked(ctx context.Context, key string) (bool, error)
}

type profileChecker interface {
	ExistsByUserID(ctx context.Context, userID string) (bool, error)
}

// SessionConfig describes how identity provider tokens are verified and how sign-in is started.
type SessionConfig struct {
	JWTSecret       string
	Issuer          string
	Audience        string
	BackendURL      string
	DefaultProvider string
	RedirectURL     string
}

// SessionService is the session store: it verifies provider-issued tokens, tracks sign-outs
// and publishes session changes to subscribers.
type SessionService struct {
	revocations revocationStore
	profiles    profileChecker
	broker      *SessionBroker
	logger      *zap.Logger
	config      SessionConfig
	now         func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewSessionService constructs a SessionService.
func NewSessionService(revocations revocationStore, profiles profileChecker, broker *SessionBroker, logger *zap.Logger, config SessionConfig) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if broker == nil {
		broker = NewSessionBroker(0, logger)
	}
	return &SessionService{
		revocations: revocations,
		profiles:    profiles,
		broker:      broker,
		logger:      logger,
		config:      config,
		now:         time.Now,
		seen:        make(map[string]time.Time),
	}
}

// Current returns the session carried by token. Any failure reads as "no session".
func (s *SessionService) Current(ctx context.Context, token string) (*models.Session, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, false
	}
	session, err := s.verify(ctx, token)
	if err != nil {
		s.logger.Debug("session rejected", zap.Error(err))
		return nil, false
	}
	s.observe(session)
	return session, true
}

// Subscribe registers for session change events.
func (s *SessionService) Subscribe() (<-chan models.SessionEvent, func()) {
	return s.broker.Subscribe()
}

// Listen registers fn for every session change. Events are never dropped for listeners.
func (s *SessionService) Listen(fn func(models.SessionEvent)) func() {
	return s.broker.Listen(fn)
}

// SignInURL builds the identity provider redirect for provider, or the default provider when empty.
func (s *SessionService) SignInURL(provider string) string {
	if provider == "" {
		provider = s.config.DefaultProvider
	}
	params := url.Values{}
	params.Set("provider", provider)
	if s.config.RedirectURL != "" {
		params.Set("redirect_to", s.config.RedirectURL)
	}
	return s.config.BackendURL + "/authorize?" + params.Encode()
}

// ResolveCallback decides where a freshly signed-in user goes next.
func (s *SessionService) ResolveCallback(ctx context.Context, session *models.Session) (*models.CallbackResult, error) {
	exists, err := s.profiles.ExistsByUserID(ctx, session.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load profile")
	}
	s.publish(models.SessionSignedIn, session)
	if !exists {
		return &models.CallbackResult{Next: RouteStudentSetup}, nil
	}
	return &models.CallbackResult{Next: RouteHome}, nil
}

// SignOut denylists the session until its token expires and tells the client to go to the login view.
func (s *SessionService) SignOut(ctx context.Context, session *models.Session) (*models.CallbackResult, error) {
	key := revocationKey(session.SessionID, session.Token)
	if err := s.revocations.Revoke(ctx, key, session.ExpiresAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign out")
	}
	s.mu.Lock()
	delete(s.seen, key)
	s.mu.Unlock()
	s.publish(models.SessionSignedOut, session)
	return &models.CallbackResult{Next: RouteLogin}, nil
}

func (s *SessionService) verify(ctx context.Context, token string) (*models.Session, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	if s.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.config.Audience))
	}

	claims := &models.SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.config.JWTSecret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token claims")
	}

	revoked, err := s.revocations.IsRevoked(ctx, revocationKey(claims.SessionID, token))
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, errSessionRevoked
	}

	return &models.Session{
		UserID:    claims.Subject,
		Email:     claims.Email,
		SessionID: claims.SessionID,
		ExpiresAt: claims.ExpiresAt.Time,
		Token:     token,
	}, nil
}

// observe publishes TOKEN_REFRESHED when a known session shows up with a later expiry.
func (s *SessionService) observe(session *models.Session) {
	if session.SessionID == "" {
		return
	}
	key := revocationKey(session.SessionID, session.Token)
	s.mu.Lock()
	prev, known := s.seen[key]
	s.seen[key] = session.ExpiresAt
	if len(s.seen) > 1024 {
		now := s.now()
		for k, exp := range s.seen {
			if exp.Before(now) {
				delete(s.seen, k)
			}
		}
	}
	s.mu.Unlock()
	if known && session.ExpiresAt.After(prev) {
		s.publish(models.SessionRefreshed, session)
	}
}

func (s *SessionService) publish(kind models.SessionEventType, session *models.Session) {
	s.broker.Publish(models.SessionEvent{
		Type:      kind,
		UserID:    session.UserID,
		SessionID: session.SessionID,
		At:        s.now().UTC(),
	})
}

// revocationKey prefers the provider session id; tokens without one are keyed by a digest.
func revocationKey(sessionID, token string) string {
	if sessionID != "" {
		return "sid:" + sessionID
	}
	sum := blake2b.Sum256([]byte(token))
	return "tok:" + hex.EncodeToString(sum[:])
}
