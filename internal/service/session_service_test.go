package service

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ragul198/Event/internal/models"
	appErrors "github.com/Ragul198/Event/pkg/errors"
)

const testSecret = "test-secret"

type mockRevocations struct {
	revoked   map[string]time.Time
	revokeErr error
	checkErr  error
}

func (m *mockRevocations) Revoke(ctx context.Context, key string, until time.Time) error {
	if m.revokeErr != nil {
		return m.revokeErr
	}
	if m.revoked == nil {
		m.revoked = make(map[string]time.Time)
	}
	m.revoked[key] = until
	return nil
}

func (m *mockRevocations) IsRevoked(ctx context.Context, key string) (bool, error) {
	if m.checkErr != nil {
		return false, m.checkErr
	}
	_, ok := m.revoked[key]
	return ok, nil
}

type mockProfileChecker struct {
	exists bool
	err    error
	calls  int
}

func (m *mockProfileChecker) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	m.calls++
	return m.exists, m.err
}

func signToken(t *testing.T, secret, userID, sessionID string, exp time.Time) string {
	t.Helper()
	claims := models.SessionClaims{
		Email:     userID + "@example.com",
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newTestSessionService(revocations *mockRevocations, profiles *mockProfileChecker) *SessionService {
	return NewSessionService(revocations, profiles, NewSessionBroker(4, nil), nil, SessionConfig{
		JWTSecret:       testSecret,
		Audience:        "authenticated",
		BackendURL:      "https://project.example.com/auth/v1",
		DefaultProvider: "google",
		RedirectURL:     "http://localhost:5173/auth/callback",
	})
}

func TestSessionServiceCurrent(t *testing.T) {
	svc := newTestSessionService(&mockRevocations{}, &mockProfileChecker{})
	token := signToken(t, testSecret, "user-1", "sess-1", time.Now().Add(time.Hour))

	session, ok := svc.Current(context.Background(), "  "+token)
	require.True(t, ok)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, "user-1@example.com", session.Email)
	assert.Equal(t, "sess-1", session.SessionID)
}

func TestSessionServiceCurrentFailuresReadAsNoSession(t *testing.T) {
	svc := newTestSessionService(&mockRevocations{}, &mockProfileChecker{})

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"wrong secret": signToken(t, "other", "user-1", "sess-1", time.Now().Add(time.Hour)),
		"expired":      signToken(t, testSecret, "user-1", "sess-1", time.Now().Add(-time.Minute)),
		"no subject":   signToken(t, testSecret, "", "sess-1", time.Now().Add(time.Hour)),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			session, ok := svc.Current(context.Background(), token)
			assert.False(t, ok)
			assert.Nil(t, session)
		})
	}

	failing := newTestSessionService(&mockRevocations{checkErr: errors.New("redis down")}, &mockProfileChecker{})
	_, ok := failing.Current(context.Background(), signToken(t, testSecret, "user-1", "sess-1", time.Now().Add(time.Hour)))
	assert.False(t, ok)
}

func TestSessionServiceSignOutRevokesAndPublishes(t *testing.T) {
	revocations := &mockRevocations{}
	svc := newTestSessionService(revocations, &mockProfileChecker{})
	events, unsubscribe := svc.Subscribe()
	defer unsubscribe()

	token := signToken(t, testSecret, "user-1", "", time.Now().Add(time.Hour))
	session, ok := svc.Current(context.Background(), token)
	require.True(t, ok)

	result, err := svc.SignOut(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, RouteLogin, result.Next)

	evt := <-events
	assert.Equal(t, models.SessionSignedOut, evt.Type)
	assert.Equal(t, "user-1", evt.UserID)

	_, ok = svc.Current(context.Background(), token)
	assert.False(t, ok)
}

func TestSessionServiceSignOutFailure(t *testing.T) {
	svc := newTestSessionService(&mockRevocations{revokeErr: errors.New("redis down")}, &mockProfileChecker{})
	_, err := svc.SignOut(context.Background(), &models.Session{UserID: "user-1", SessionID: "s", ExpiresAt: time.Now().Add(time.Hour)})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestSessionServicePublishesRefresh(t *testing.T) {
	svc := newTestSessionService(&mockRevocations{}, &mockProfileChecker{})
	events, unsubscribe := svc.Subscribe()
	defer unsubscribe()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	_, ok := svc.Current(context.Background(), signToken(t, testSecret, "user-1", "sess-1", exp))
	require.True(t, ok)
	_, ok = svc.Current(context.Background(), signToken(t, testSecret, "user-1", "sess-1", exp.Add(time.Hour)))
	require.True(t, ok)

	evt := <-events
	assert.Equal(t, models.SessionRefreshed, evt.Type)
}

func TestSessionServiceSignedInComesFromCallback(t *testing.T) {
	svc := newTestSessionService(&mockRevocations{}, &mockProfileChecker{exists: true})
	events, unsubscribe := svc.Subscribe()
	defer unsubscribe()

	session, ok := svc.Current(context.Background(), signToken(t, testSecret, "user-1", "sess-1", time.Now().Add(time.Hour)))
	require.True(t, ok)
	select {
	case evt := <-events:
		t.Fatalf("first sighting published %s", evt.Type)
	default:
	}

	_, err := svc.ResolveCallback(context.Background(), session)
	require.NoError(t, err)
	evt := <-events
	assert.Equal(t, models.SessionSignedIn, evt.Type)
	assert.Equal(t, "sess-1", evt.SessionID)
}

func TestSessionServiceResolveCallback(t *testing.T) {
	session := &models.Session{UserID: "user-1"}

	withProfile := newTestSessionService(&mockRevocations{}, &mockProfileChecker{exists: true})
	result, err := withProfile.ResolveCallback(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, RouteHome, result.Next)

	withoutProfile := newTestSessionService(&mockRevocations{}, &mockProfileChecker{})
	result, err = withoutProfile.ResolveCallback(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, RouteStudentSetup, result.Next)

	failing := newTestSessionService(&mockRevocations{}, &mockProfileChecker{err: errors.New("db down")})
	_, err = failing.ResolveCallback(context.Background(), session)
	assert.ErrorIs(t, err, appErrors.ErrUpstream)
}

func TestSessionServiceSignInURL(t *testing.T) {
	svc := newTestSessionService(&mockRevocations{}, &mockProfileChecker{})
	raw := svc.SignInURL("")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/auth/v1/authorize", parsed.Path)
	assert.Equal(t, "google", parsed.Query().Get("provider"))
	assert.Equal(t, "http://localhost:5173/auth/callback", parsed.Query().Get("redirect_to"))
}

func TestSessionBrokerListenersSeeDroppedEvents(t *testing.T) {
	broker := NewSessionBroker(1, nil)
	_, unsubscribe := broker.Subscribe()
	defer unsubscribe()
	var heard int
	stop := broker.Listen(func(models.SessionEvent) { heard++ })

	for i := 0; i < 3; i++ {
		broker.Publish(models.SessionEvent{Type: models.SessionRefreshed})
	}
	assert.Equal(t, 3, heard)

	stop()
	broker.Publish(models.SessionEvent{Type: models.SessionRefreshed})
	assert.Equal(t, 3, heard)
}

func TestSessionBrokerCloseEndsSubscriptions(t *testing.T) {
	broker := NewSessionBroker(2, nil)
	ch, unsubscribe := broker.Subscribe()
	broker.Close()
	unsubscribe()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, broker.Subscribers())

	late, _ := broker.Subscribe()
	_, open = <-late
	assert.False(t, open)
}

func TestSessionBrokerUnsubscribe(t *testing.T) {
	broker := NewSessionBroker(1, nil)
	ch, unsubscribe := broker.Subscribe()
	assert.Equal(t, 1, broker.Subscribers())

	broker.Publish(models.SessionEvent{Type: models.SessionSignedIn})
	broker.Publish(models.SessionEvent{Type: models.SessionSignedOut})
	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, broker.Subscribers())

	var got []models.SessionEventType
	for evt := range ch {
		got = append(got, evt.Type)
	}
	assert.Equal(t, []models.SessionEventType{models.SessionSignedIn}, got)
}
