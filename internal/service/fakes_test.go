package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/Ragul198/Event/internal/models"
	appErrors "github.com/Ragul198/Event/pkg/errors"
	"github.com/Ragul198/Event/pkg/storage"
)

type mockEventRepo struct {
	events    map[string]models.Event
	listErr   error
	writeErr  error
	openCalls int
	markCalls int
	created   []models.Event
	updated   []models.Event
	deleted   []string
}

func newMockEventRepo(events ...models.Event) *mockEventRepo {
	repo := &mockEventRepo{events: make(map[string]models.Event)}
	for _, e := range events {
		repo.events[e.ID] = e
	}
	return repo
}

func (m *mockEventRepo) all() []models.Event {
	out := make([]models.Event, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e)
	}
	return out
}

func (m *mockEventRepo) ListOpen(ctx context.Context, now time.Time) ([]models.Event, error) {
	m.openCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.Event
	for _, e := range m.events {
		if !e.RegistrationDeadline.Before(now) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEventRepo) ListByDeadline(ctx context.Context) ([]models.Event, error) {
	m.markCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.all(), nil
}

func (m *mockEventRepo) ListByDate(ctx context.Context) ([]models.Event, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.all(), nil
}

func (m *mockEventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &e, nil
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	if event.ID == "" {
		event.ID = "generated"
	}
	m.created = append(m.created, *event)
	m.events[event.ID] = *event
	return nil
}

func (m *mockEventRepo) Update(ctx context.Context, event *models.Event) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	if _, ok := m.events[event.ID]; !ok {
		return sql.ErrNoRows
	}
	m.updated = append(m.updated, *event)
	m.events[event.ID] = *event
	return nil
}

func (m *mockEventRepo) Delete(ctx context.Context, id string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	if _, ok := m.events[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.events, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type regKey struct{ user, event string }

type mockRegistrationRepo struct {
	rows        map[regKey]models.Registration
	insertErr   error
	existsErr   error
	insertCalls int
	deleted     []string
	deleteErr   error
	events      []models.Event
}

func newMockRegistrationRepo() *mockRegistrationRepo {
	return &mockRegistrationRepo{rows: make(map[regKey]models.Registration)}
}

func (m *mockRegistrationRepo) Exists(ctx context.Context, userID, eventID string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.rows[regKey{userID, eventID}]
	return ok, nil
}

func (m *mockRegistrationRepo) EventIDsForUser(ctx context.Context, userID string) (map[string]struct{}, error) {
	if m.existsErr != nil {
		return nil, m.existsErr
	}
	out := make(map[string]struct{})
	for k := range m.rows {
		if k.user == userID {
			out[k.event] = struct{}{}
		}
	}
	return out, nil
}

func (m *mockRegistrationRepo) Insert(ctx context.Context, reg *models.Registration) (bool, error) {
	m.insertCalls++
	if m.insertErr != nil {
		return false, m.insertErr
	}
	key := regKey{reg.UserID, reg.EventID}
	if _, ok := m.rows[key]; ok {
		return false, nil
	}
	if reg.ID == "" {
		reg.ID = "reg-" + reg.EventID
	}
	m.rows[key] = *reg
	return true, nil
}

func (m *mockRegistrationRepo) EventsForUser(ctx context.Context, userID string) ([]models.Event, error) {
	return m.events, nil
}

func (m *mockRegistrationRepo) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for k, v := range m.rows {
		if v.ID == id {
			delete(m.rows, k)
			m.deleted = append(m.deleted, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

type mockObjectStore struct {
	err     error
	uploads []storage.Object
	bodies  []string
}

func (m *mockObjectStore) Upload(ctx context.Context, obj storage.Object) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	body, _ := io.ReadAll(obj.Body)
	m.uploads = append(m.uploads, obj)
	m.bodies = append(m.bodies, string(body))
	return "https://cdn.example.com/" + obj.Name, nil
}

type mockCacheRepo struct {
	store       map[string]interface{}
	invalidated []string
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{store: make(map[string]interface{})}
}

func (m *mockCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	value, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.store[key] = value
	return nil
}

func (m *mockCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.invalidated = append(m.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.store {
		if strings.HasPrefix(key, prefix) {
			delete(m.store, key)
		}
	}
	return nil
}
