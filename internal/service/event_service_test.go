package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ragul198/Event/internal/models"
	"github.com/Ragul198/Event/pkg/config"
	appErrors "github.com/Ragul198/Event/pkg/errors"
)

func newEventFixture(visibility string, events ...models.Event) (*EventService, *mockEventRepo, *mockRegistrationRepo, *mockObjectStore) {
	repo := newMockEventRepo(events...)
	regs := newMockRegistrationRepo()
	store := &mockObjectStore{}
	svc := NewEventService(repo, regs, store, nil, NewMetricsService(), nil, nil, EventServiceConfig{
		Visibility:    visibility,
		MaxImageBytes: 1024,
		AllowedMIMEs:  []string{"image/png", "image/jpeg"},
	})
	return svc, repo, regs, store
}

func TestEventListHidePolicy(t *testing.T) {
	now := time.Now()
	svc, repo, regs, _ := newEventFixture(config.VisibilityHideClosed,
		models.Event{ID: "open", RegistrationDeadline: now.Add(time.Hour)},
		models.Event{ID: "closed", RegistrationDeadline: now.Add(-time.Hour)},
	)
	regs.rows[regKey{"u1", "open"}] = models.Registration{ID: "r1"}

	cards, err := svc.List(context.Background(), &models.Session{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "open", cards[0].ID)
	assert.Equal(t, models.RegistrationAlreadyRegistered, cards[0].State)
	assert.Equal(t, 1, repo.openCalls)
}

func TestEventListMarkPolicy(t *testing.T) {
	now := time.Now()
	svc, repo, _, _ := newEventFixture(config.VisibilityMarkClosed,
		models.Event{ID: "closed", RegistrationDeadline: now.Add(-time.Hour)},
	)

	cards, err := svc.List(context.Background(), &models.Session{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, models.RegistrationClosed, cards[0].State)
	assert.Equal(t, 1, repo.markCalls)
}

func TestEventListFetchError(t *testing.T) {
	svc, repo, _, _ := newEventFixture(config.VisibilityHideClosed)
	repo.listErr = errors.New("timeout")
	_, err := svc.List(context.Background(), &models.Session{UserID: "u1"})
	assert.ErrorIs(t, err, appErrors.ErrUpstream)
}

func TestEventDetailRendersDescription(t *testing.T) {
	svc, _, _, _ := newEventFixture(config.VisibilityHideClosed,
		models.Event{ID: "e1", Description: "**Prizes** for all", RegistrationDeadline: time.Now().Add(time.Hour)},
	)
	detail, err := svc.Detail(context.Background(), &models.Session{UserID: "u1"}, "e1")
	require.NoError(t, err)
	assert.Contains(t, detail.DescriptionHTML, "<strong>Prizes</strong>")
	assert.Equal(t, models.RegistrationOpen, detail.State)

	_, err = svc.Detail(context.Background(), &models.Session{UserID: "u1"}, "nope")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestEventCreateRequiresDeadline(t *testing.T) {
	svc, repo, _, store := newEventFixture(config.VisibilityHideClosed)
	image := &ImageUpload{Filename: "poster.png", ContentType: "image/png", Size: 3, Body: strings.NewReader("png")}

	_, err := svc.Create(context.Background(), models.EventForm{Title: "Quiz"}, image)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, repo.created)
	assert.Empty(t, store.uploads)
}

func TestEventCreateUploadsImageFirst(t *testing.T) {
	svc, repo, _, store := newEventFixture(config.VisibilityHideClosed)
	image := &ImageUpload{Filename: "poster.PNG", ContentType: "image/png", Size: 3, Body: strings.NewReader("png")}

	event, err := svc.Create(context.Background(), models.EventForm{
		Title:                "Quiz",
		Image:                "ignored",
		RegistrationDeadline: "2030-01-01T10:00",
		Rules:                "One\n\nTwo\n",
	}, image)
	require.NoError(t, err)
	require.Len(t, store.uploads, 1)
	assert.True(t, strings.HasPrefix(store.uploads[0].Name, "events/"))
	assert.Equal(t, "png", store.bodies[0])
	assert.Equal(t, "https://cdn.example.com/"+store.uploads[0].Name, event.Image)
	assert.Equal(t, []string{"One", "Two"}, []string(repo.created[0].Rules))
}

func TestEventCreateUploadFailureAborts(t *testing.T) {
	svc, repo, _, store := newEventFixture(config.VisibilityHideClosed)
	store.err = errors.New("bucket unavailable")

	_, err := svc.Create(context.Background(), models.EventForm{RegistrationDeadline: "2030-01-01T10:00"},
		&ImageUpload{Filename: "a.png", ContentType: "image/png", Size: 1, Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, appErrors.ErrUploadFailed)
	assert.Empty(t, repo.created)
}

func TestEventCreateRejectsLargeOrForeignImage(t *testing.T) {
	svc, _, _, store := newEventFixture(config.VisibilityHideClosed)
	form := models.EventForm{RegistrationDeadline: "2030-01-01T10:00"}

	_, err := svc.Create(context.Background(), form, &ImageUpload{Filename: "a.png", ContentType: "image/png", Size: 4096, Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.Create(context.Background(), form, &ImageUpload{Filename: "a.svg", ContentType: "image/svg+xml", Size: 1, Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, store.uploads)
}

func TestEventUpdateAndDeleteNeedConfirmation(t *testing.T) {
	svc, repo, _, store := newEventFixture(config.VisibilityHideClosed, models.Event{ID: "e1", Title: "Old"})
	form := models.EventForm{Title: "New", RegistrationDeadline: "2030-01-01T10:00"}
	image := &ImageUpload{Filename: "a.png", ContentType: "image/png", Size: 1, Body: strings.NewReader("x")}

	_, err := svc.Update(context.Background(), "e1", form, image, false)
	assert.ErrorIs(t, err, appErrors.ErrConfirmationRequired)
	err = svc.Delete(context.Background(), "e1", false)
	assert.ErrorIs(t, err, appErrors.ErrConfirmationRequired)
	assert.Empty(t, repo.updated)
	assert.Empty(t, repo.deleted)
	assert.Empty(t, store.uploads)

	updated, err := svc.Update(context.Background(), "e1", form, nil, true)
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)

	require.NoError(t, svc.Delete(context.Background(), "e1", true))
	assert.ErrorIs(t, svc.Delete(context.Background(), "e1", true), appErrors.ErrNotFound)
}

func TestEventFormReloadsJoinedText(t *testing.T) {
	deadline := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	svc, _, _, _ := newEventFixture(config.VisibilityHideClosed, models.Event{
		ID: "e1", RegistrationDeadline: deadline, Rules: []string{"a", "b"}, Instructions: []string{"c"},
	})
	form, err := svc.Form(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "a\nb", form.Rules)
	assert.Equal(t, "c", form.Instructions)
	assert.Equal(t, "2030-01-01T10:00", form.RegistrationDeadline)
}
