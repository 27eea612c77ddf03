package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-ops/shift-attendance-api/internal/models"
)

func newStudentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func studentColumns() []string {
	return []string{"id", "student_id", "name", "program", "shift", "active", "created_at", "updated_at"}
}

func TestStudentRepositoryGetByStudentID(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows(studentColumns()).
		AddRow("s-1", "STU-001", "Ayesha Khan", "CS", "Morning", true, time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, student_id").
		WithArgs("STU-001").
		WillReturnRows(rows)

	student, err := repo.GetByStudentID(context.Background(), "STU-001")
	require.NoError(t, err)
	require.NotNil(t, student)
	assert.Equal(t, models.ShiftMorning, student.Shift)
}

func TestStudentRepositoryGetByStudentIDUnknown(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT id, student_id").
		WithArgs("STU-404").
		WillReturnRows(sqlmock.NewRows(studentColumns()))

	student, err := repo.GetByStudentID(context.Background(), "STU-404")
	require.NoError(t, err)
	assert.Nil(t, student)
}

func TestStudentRepositoryListFiltersByShift(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows(studentColumns()).
		AddRow("s-1", "STU-001", "Ayesha Khan", "CS", "Evening", true, time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, student_id").
		WithArgs(models.ShiftEvening).
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(models.ShiftEvening).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{Shift: models.ShiftEvening})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newStudentRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), "STU-010", "Bilal Ahmed", "BBA", models.ShiftEvening, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{StudentID: "STU-010", Name: "Bilal Ahmed", Program: "BBA", Shift: models.ShiftEvening, Active: true}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.NotEmpty(t, student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
