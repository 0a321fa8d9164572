package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ragul198/Event/internal/models"
)

var studentRowColumns = []string{"id", "user_id", "email", "first_name", "last_name", "college", "department", "year", "gender", "register_number", "mobile", "role"}

func TestStudentRepositoryFindByUserID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE user_id = $1")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(studentRowColumns).
			AddRow("s1", "u1", "asha@example.com", "Asha", "R", "PSG", "CSE", "3rd Year", "Female", "21CS001", "9876543210", "admin"))

	student, err := repo.FindByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Asha R", student.FullName())
	assert.True(t, student.Role.IsAdmin())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryRoleByUserID(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(role, '') FROM students WHERE user_id = $1")).
		WithArgs("u2").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow(""))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(role, '') FROM students WHERE user_id = $1")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"role"}))

	role, err := repo.RoleByUserID(context.Background(), "u2")
	require.NoError(t, err)
	assert.False(t, role.IsAdmin())

	_, err = repo.RoleByUserID(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStudentRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id) DO NOTHING")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id) DO NOTHING")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.Create(context.Background(), &models.Student{UserID: "u1", FirstName: "Asha"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(context.Background(), &models.Student{UserID: "u1", FirstName: "Asha"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students ORDER BY first_name ASC, last_name ASC")).
		WillReturnRows(sqlmock.NewRows(studentRowColumns).
			AddRow("s1", "u1", "a@x.com", "Asha", "R", "PSG", "CSE", "3rd Year", "Female", "21CS001", "9876543210", ""))

	students, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, students, 1)
}
