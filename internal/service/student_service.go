package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Ragul198/Event/internal/models"
	appErrors "github.com/Ragul198/Event/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
	ExistsByUserID(ctx context.Context, userID string) (bool, error)
	Create(ctx context.Context, student *models.Student) (bool, error)
}

// StudentService manages student profiles and the admin directory.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs StudentService. A nil validator gets the setup rules registered.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = NewStudentValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// Profile returns the caller's profile.
func (s *StudentService) Profile(ctx context.Context, session *models.Session) (*models.Student, error) {
	student, err := s.repo.FindByUserID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "No profile data found.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load profile")
	}
	return student, nil
}

// HasProfile reports whether setup was completed.
func (s *StudentService) HasProfile(ctx context.Context, session *models.Session) (bool, error) {
	exists, err := s.repo.ExistsByUserID(ctx, session.UserID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load profile")
	}
	return exists, nil
}

// Setup validates and stores the caller's one and only profile.
func (s *StudentService) Setup(ctx context.Context, session *models.Session, req models.StudentSetupRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, setupMessage(err))
	}

	student := &models.Student{
		UserID:         session.UserID,
		Email:          session.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		College:        req.College,
		Department:     req.Department,
		Year:           req.Year,
		Gender:         req.Gender,
		RegisterNumber: req.RegisterNumber,
		Mobile:         req.Mobile,
	}
	created, err := s.repo.Create(ctx, student)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Error saving student info")
	}
	if !created {
		return nil, appErrors.Clone(appErrors.ErrConflict, "profile already exists")
	}
	return student, nil
}

// Options returns the selectable academic values.
func (s *StudentService) Options() models.ProfileOptions {
	return models.ProfileOptions{
		Departments: Departments,
		Years:       map[string][]string{"MBA": MBAYears, "default": DefaultYears},
		Genders:     Genders,
	}
}

// Directory lists every student matching filter.
func (s *StudentService) Directory(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to load students")
	}
	return FilterStudents(students, filter), nil
}

// FilterStudents ANDs a name/email substring search with year, department and gender equality.
// Every comparison ignores case; years compare by their leading number so "3" matches "3rd Year".
func FilterStudents(students []models.Student, filter models.StudentFilter) []models.Student {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	year := normalizeYear(filter.Year)
	out := make([]models.Student, 0, len(students))
	for _, st := range students {
		if search != "" &&
			!strings.Contains(strings.ToLower(st.FullName()), search) &&
			!strings.Contains(strings.ToLower(st.Email), search) {
			continue
		}
		if year != "" && normalizeYear(st.Year) != year {
			continue
		}
		if !matchesOption(filter.Department, st.Department) || !matchesOption(filter.Gender, st.Gender) {
			continue
		}
		out = append(out, st)
	}
	return out
}

func matchesOption(want, got string) bool {
	want = strings.TrimSpace(want)
	if want == "" || strings.EqualFold(want, "all") {
		return true
	}
	return strings.EqualFold(want, strings.TrimSpace(got))
}

func normalizeYear(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" || raw == "all" {
		return ""
	}
	end := strings.IndexFunc(raw, func(r rune) bool { return !unicode.IsDigit(r) })
	switch {
	case end == -1:
		return raw
	case end > 0:
		return raw[:end]
	default:
		return raw
	}
}
