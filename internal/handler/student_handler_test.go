package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ragul198/Event/internal/models"
	appErrors "github.com/Ragul198/Event/pkg/errors"
)

type studentProfilesMock struct {
	profile    *models.Student
	setupErr   error
	setupReq   models.StudentSetupRequest
	lastFilter models.StudentFilter
	directory  []models.Student
}

func (m *studentProfilesMock) Profile(ctx context.Context, session *models.Session) (*models.Student, error) {
	if m.profile == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "No profile data found.")
	}
	return m.profile, nil
}

func (m *studentProfilesMock) Setup(ctx context.Context, session *models.Session, req models.StudentSetupRequest) (*models.Student, error) {
	m.setupReq = req
	if m.setupErr != nil {
		return nil, m.setupErr
	}
	return &models.Student{UserID: session.UserID, FirstName: req.FirstName}, nil
}

func (m *studentProfilesMock) Options() models.ProfileOptions {
	return models.ProfileOptions{Departments: []string{"CSE", "MBA"}}
}

func (m *studentProfilesMock) Directory(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	m.lastFilter = filter
	return m.directory, nil
}

func TestStudentHandlerProfileEmptyState(t *testing.T) {
	h := NewStudentHandler(&studentProfilesMock{}, nil)
	c, w := newContext(http.MethodGet, "/profile", nil, testSession)
	h.Profile(c)
	assertStatus(t, http.StatusOK, w)
	body := decode(t, w)
	assert.Nil(t, body["data"])
	assert.Equal(t, "empty", metaOf(body)["state"])
	assert.Equal(t, "No profile data found.", metaOf(body)["message"])
}

func TestStudentHandlerSetupValidationError(t *testing.T) {
	students := &studentProfilesMock{setupErr: appErrors.Clone(appErrors.ErrValidation, "Mobile number must be exactly 10 digits.")}
	h := NewStudentHandler(students, nil)
	c, w := newContext(http.MethodPost, "/profile", strings.NewReader(`{"first_name":"Asha","mobile":"123"}`), testSession)
	c.Request.Header.Set("Content-Type", "application/json")
	h.Setup(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Mobile number must be exactly 10 digits.", body["error"].(map[string]interface{})["message"])
	assert.Equal(t, "Asha", students.setupReq.FirstName)
}

func TestStudentHandlerSetupCreated(t *testing.T) {
	h := NewStudentHandler(&studentProfilesMock{}, nil)
	c, w := newContext(http.MethodPost, "/profile", strings.NewReader(`{"first_name":"Asha"}`), testSession)
	c.Request.Header.Set("Content-Type", "application/json")
	h.Setup(c)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestStudentHandlerDirectoryBindsFilters(t *testing.T) {
	students := &studentProfilesMock{directory: []models.Student{{ID: "1", FirstName: "Asha"}}}
	h := NewStudentHandler(students, nil)
	c, w := newContext(http.MethodGet, "/admin/students?search=asha&year=3&department=CSE&gender=Female", nil, testSession)
	h.Directory(c)
	assertStatus(t, http.StatusOK, w)
	assert.Equal(t, models.StudentFilter{Search: "asha", Year: "3", Department: "CSE", Gender: "Female"}, students.lastFilter)
	assert.Equal(t, float64(1), metaOf(decode(t, w))["count"])
}

func TestStudentHandlerOptions(t *testing.T) {
	h := NewStudentHandler(&studentProfilesMock{}, nil)
	c, w := newContext(http.MethodGet, "/profile/options", nil, testSession)
	h.Options(c)
	assertStatus(t, http.StatusOK, w)
	assert.Equal(t, []interface{}{"CSE", "MBA"}, decode(t, w)["data"].(map[string]interface{})["departments"])
}
