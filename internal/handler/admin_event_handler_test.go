package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ragul198/Event/internal/models"
	"github.com/Ragul198/Event/internal/service"
	appErrors "github.com/Ragul198/Event/pkg/errors"
)

type eventAdminMock struct {
	form        models.EventForm
	imageName   string
	imageBody   string
	imageType   string
	created     bool
	updated     bool
	deleteCalls int
	confirmed   bool
}

func (m *eventAdminMock) AdminList(ctx context.Context) ([]models.Event, error) {
	return []models.Event{{ID: "e1", Date: "2026-11-01"}, {ID: "e2", Date: "2026-11-05"}}, nil
}

func (m *eventAdminMock) Form(ctx context.Context, id string) (*models.EventForm, error) {
	if id != "e1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Event not found.")
	}
	return &models.EventForm{Title: "Quiz", Rules: "One\nTwo"}, nil
}

func (m *eventAdminMock) capture(form models.EventForm, image *service.ImageUpload) {
	m.form = form
	if image != nil {
		m.imageName = image.Filename
		m.imageType = image.ContentType
		body, _ := io.ReadAll(image.Body)
		m.imageBody = string(body)
	}
}

func (m *eventAdminMock) Create(ctx context.Context, form models.EventForm, image *service.ImageUpload) (*models.Event, error) {
	m.created = true
	m.capture(form, image)
	return &models.Event{ID: "e9", Title: form.Title}, nil
}

func (m *eventAdminMock) Update(ctx context.Context, id string, form models.EventForm, image *service.ImageUpload, confirmed bool) (*models.Event, error) {
	m.updated = true
	m.confirmed = confirmed
	m.capture(form, image)
	return &models.Event{ID: id, Title: form.Title}, nil
}

func (m *eventAdminMock) Delete(ctx context.Context, id string, confirmed bool) error {
	m.deleteCalls++
	if !confirmed {
		return appErrors.Clone(appErrors.ErrConfirmationRequired, "confirm the deletion to continue")
	}
	return nil
}

func multipartEventBody(t *testing.T, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	require.NoError(t, mw.WriteField("title", "Hackathon"))
	require.NoError(t, mw.WriteField("registration_deadline", "2026-11-01T18:00"))
	require.NoError(t, mw.WriteField("rules", "Bring laptop\n\nTeams of 3"))
	if withImage {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="image_file"; filename="poster.png"`)
		header.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte("png-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestAdminEventHandlerCreateMultipart(t *testing.T) {
	events := &eventAdminMock{}
	h := NewAdminEventHandler(events, nil)
	body, contentType := multipartEventBody(t, true)
	c, w := newContext(http.MethodPost, "/admin/events", body, testSession)
	c.Request.Header.Set("Content-Type", contentType)

	h.Create(c)
	assertStatus(t, http.StatusCreated, w)
	assert.Equal(t, "Hackathon", events.form.Title)
	assert.Equal(t, "Bring laptop\n\nTeams of 3", events.form.Rules)
	assert.Equal(t, "poster.png", events.imageName)
	assert.Equal(t, "image/png", events.imageType)
	assert.Equal(t, "png-bytes", events.imageBody)
}

func TestAdminEventHandlerCreateJSONWithoutImage(t *testing.T) {
	events := &eventAdminMock{}
	h := NewAdminEventHandler(events, nil)
	c, w := newContext(http.MethodPost, "/admin/events", strings.NewReader(`{"title":"Quiz","registration_deadline":"2026-11-01T18:00"}`), testSession)
	c.Request.Header.Set("Content-Type", "application/json")

	h.Create(c)
	assertStatus(t, http.StatusCreated, w)
	assert.Equal(t, "Quiz", events.form.Title)
	assert.Empty(t, events.imageName)
}

func TestAdminEventHandlerUpdateRequiresConfirmation(t *testing.T) {
	events := &eventAdminMock{}
	h := NewAdminEventHandler(events, nil)

	body, contentType := multipartEventBody(t, false)
	c, w := newContext(http.MethodPut, "/admin/events/e1", body, testSession)
	c.Request.Header.Set("Content-Type", contentType)
	c.Params = gin.Params{{Key: "id", Value: "e1"}}
	h.Update(c)
	assert.Equal(t, http.StatusPreconditionRequired, w.Code)
	assert.Equal(t, "CONFIRMATION_REQUIRED", errorCode(decode(t, w)))
	assert.False(t, events.updated)

	body, contentType = multipartEventBody(t, false)
	c, w = newContext(http.MethodPut, "/admin/events/e1?confirm=true", body, testSession)
	c.Request.Header.Set("Content-Type", contentType)
	c.Params = gin.Params{{Key: "id", Value: "e1"}}
	h.Update(c)
	assertStatus(t, http.StatusOK, w)
	assert.True(t, events.updated)
	assert.True(t, events.confirmed)
}

func TestAdminEventHandlerDelete(t *testing.T) {
	events := &eventAdminMock{}
	h := NewAdminEventHandler(events, nil)

	c, w := newContext(http.MethodDelete, "/admin/events/e1", nil, testSession)
	c.Params = gin.Params{{Key: "id", Value: "e1"}}
	h.Delete(c)
	assert.Equal(t, http.StatusPreconditionRequired, w.Code)

	c, w = newContext(http.MethodDelete, "/admin/events/e1", nil, testSession)
	c.Request.Header.Set(ConfirmHeader, "true")
	c.Params = gin.Params{{Key: "id", Value: "e1"}}
	serve(c, h.Delete)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 2, events.deleteCalls)
}

func TestAdminEventHandlerListAndForm(t *testing.T) {
	h := NewAdminEventHandler(&eventAdminMock{}, nil)

	c, w := newContext(http.MethodGet, "/admin/events", nil, testSession)
	h.List(c)
	assertStatus(t, http.StatusOK, w)
	assert.Len(t, decode(t, w)["data"], 2)

	c, w = newContext(http.MethodGet, "/admin/events/e1/form", nil, testSession)
	c.Params = gin.Params{{Key: "id", Value: "e1"}}
	h.Form(c)
	assertStatus(t, http.StatusOK, w)
	assert.Equal(t, "One\nTwo", decode(t, w)["data"].(map[string]interface{})["rules"])
}
