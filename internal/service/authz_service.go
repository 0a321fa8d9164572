package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Ragul198/Event/internal/models"
)

// Requirement is what a route demands of the caller.
type Requirement string

const (
	RequireAuthenticated Requirement = "authenticated"
	RequireAdmin         Requirement = "admin"
)

// Outcome is the tagged result of one policy evaluation.
type Outcome string

const (
	OutcomeUnauthenticated Outcome = "unauthenticated"
	OutcomePending         Outcome = "pending"
	OutcomeForbidden       Outcome = "forbidden"
	OutcomeAllowed         Outcome = "allowed"
)

// Decision is the final outcome plus where a rejected caller should be sent.
type Decision struct {
	Outcome  Outcome
	Redirect string
}

// TransitionHook observes every outcome the gate passes through, including Pending.
type TransitionHook func(userID string, requirement Requirement, outcome Outcome)

type roleLookup interface {
	RoleByUserID(ctx context.Context, userID string) (models.Role, error)
}

type sessionListener interface {
	Listen(fn func(models.SessionEvent)) func()
}

type roleMemo struct {
	admin   bool
	expires time.Time
}

// AuthzService evaluates route requirements against a session. Role lookups are memoized per
// user and dropped whenever that user's session changes.
type AuthzService struct {
	roles   roleLookup
	metrics *MetricsService
	logger  *zap.Logger
	ttl     time.Duration
	now     func() time.Time
	hook    TransitionHook

	mu   sync.Mutex
	memo map[string]roleMemo
}

// NewAuthzService constructs the gate. A zero ttl disables memoization.
func NewAuthzService(roles roleLookup, metrics *MetricsService, logger *zap.Logger, ttl time.Duration) *AuthzService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthzService{
		roles:   roles,
		metrics: metrics,
		logger:  logger,
		ttl:     ttl,
		now:     time.Now,
		memo:    make(map[string]roleMemo),
	}
}

// OnTransition installs a hook. It must be set before the gate serves requests.
func (s *AuthzService) OnTransition(hook TransitionHook) {
	s.hook = hook
}

// Watch drops memoized roles on every session change until ctx is done.
// The eviction runs inside the publish call, so a busy stream cannot delay it.
func (s *AuthzService) Watch(ctx context.Context, sessions sessionListener) {
	stop := sessions.Listen(func(evt models.SessionEvent) {
		s.Forget(evt.UserID)
	})
	go func() {
		<-ctx.Done()
		stop()
	}()
}

// Forget drops the memoized role of a user.
func (s *AuthzService) Forget(userID string) {
	s.mu.Lock()
	delete(s.memo, userID)
	s.mu.Unlock()
}

// Evaluate runs the policy. The role lookup is never reached without a session.
func (s *AuthzService) Evaluate(ctx context.Context, session *models.Session, requirement Requirement) Decision {
	if session == nil {
		return s.finish("", requirement, OutcomeUnauthenticated)
	}
	if requirement != RequireAdmin {
		return s.finish(session.UserID, requirement, OutcomeAllowed)
	}
	if s.IsAdmin(ctx, session.UserID, requirement) {
		return s.finish(session.UserID, requirement, OutcomeAllowed)
	}
	return s.finish(session.UserID, requirement, OutcomeForbidden)
}

// IsAdmin reports whether the user holds the admin role. Lookup failures count as not admin.
func (s *AuthzService) IsAdmin(ctx context.Context, userID string, requirement Requirement) bool {
	if admin, ok := s.memoized(userID); ok {
		return admin
	}

	s.transition(userID, requirement, OutcomePending)
	s.metrics.AuthzPending(1)
	role, err := s.roles.RoleByUserID(ctx, userID)
	s.metrics.AuthzPending(-1)
	if err != nil {
		s.logger.Warn("role lookup failed", zap.String("user_id", userID), zap.Error(err))
		return false
	}

	admin := role.IsAdmin()
	if s.ttl > 0 {
		s.mu.Lock()
		s.memo[userID] = roleMemo{admin: admin, expires: s.now().Add(s.ttl)}
		s.mu.Unlock()
	}
	return admin
}

func (s *AuthzService) memoized(userID string) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.memo[userID]
	if !ok {
		return false, false
	}
	if !s.now().Before(entry.expires) {
		delete(s.memo, userID)
		return false, false
	}
	return entry.admin, true
}

func (s *AuthzService) finish(userID string, requirement Requirement, outcome Outcome) Decision {
	s.transition(userID, requirement, outcome)
	s.metrics.RecordAuthzDecision(string(requirement), string(outcome))
	decision := Decision{Outcome: outcome}
	switch outcome {
	case OutcomeUnauthenticated:
		decision.Redirect = RouteLogin
	case OutcomeForbidden:
		decision.Redirect = RouteHome
	}
	return decision
}

func (s *AuthzService) transition(userID string, requirement Requirement, outcome Outcome) {
	if s.hook != nil {
		s.hook(userID, requirement, outcome)
	}
}
