package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Ragul198/Event/internal/models"
)

const studentColumns = `id, user_id, COALESCE(email, '') AS email, first_name, last_name, COALESCE(college, '') AS college,
        COALESCE(department, '') AS department, COALESCE(year, '') AS year, COALESCE(gender, '') AS gender,
        COALESCE(register_number, '') AS register_number, COALESCE(mobile, '') AS mobile, COALESCE(role, '') AS role`

// StudentRepository manages profile rows in the students table.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns every student ordered by name.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students ORDER BY first_name ASC, last_name ASC`, studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByUserID returns the profile for a user. sql.ErrNoRows is returned unwrapped when missing.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE user_id = $1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		return nil, err
	}
	return &student, nil
}

// RoleByUserID looks up the role flag only.
func (r *StudentRepository) RoleByUserID(ctx context.Context, userID string) (models.Role, error) {
	var role models.Role
	if err := r.db.GetContext(ctx, &role, `SELECT COALESCE(role, '') FROM students WHERE user_id = $1`, userID); err != nil {
		return "", err
	}
	return role, nil
}

// ExistsByUserID checks whether the user completed profile setup.
func (r *StudentRepository) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM students WHERE user_id = $1 LIMIT 1`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check student: %w", err)
	}
	return true, nil
}

// Create inserts a profile. The boolean is false when the user already has one.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) (bool, error) {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	const query = `INSERT INTO students (id, user_id, email, first_name, last_name, college, department, year, gender, register_number, mobile)
        VALUES (:id, :user_id, :email, :first_name, :last_name, :college, :department, :year, :gender, :register_number, :mobile)
        ON CONFLICT (user_id) DO NOTHING`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return false, fmt.Errorf("create student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create student rows affected: %w", err)
	}
	return affected > 0, nil
}
