package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kohei-dev/student-management-api/internal/domain"
)

func newStudentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func testID(t *testing.T, v int64) domain.ID {
	t.Helper()
	id, err := domain.NewID(v)
	require.NoError(t, err)
	return id
}

func studentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "full_name", "kana_name", "nickname", "email", "area", "telephone", "age", "sex", "remark", "is_deleted"})
}

func TestStudentRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := studentRows().
		AddRow(1, "山田太郎", "ヤマダタロウ", "タロー", "taro@example.com", "東京都", "090-1234-5678", 20, "男", nil, false)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, kana_name, nickname, email, area, telephone, age, sex, remark, is_deleted FROM students WHERE is_deleted = false ORDER BY id")).
		WillReturnRows(rows)

	students, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, testID(t, 1), students[0].ID)
	assert.Equal(t, "山田太郎", students[0].FullName)
	assert.Equal(t, "", students[0].Remark)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT .+ FROM students WHERE id = \\$1").
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryRegisterUsesAssignedStudentID(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO students").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(21)))
	mock.ExpectQuery("INSERT INTO student_courses").
		WithArgs(int64(21), "Javaコース", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(31)))
	mock.ExpectCommit()

	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	detail := &domain.StudentDetail{
		Student: &domain.Student{FullName: "山田太郎", KanaName: "ヤマダタロウ", Email: "taro@example.com", Age: 20, Sex: "男"},
		Courses: []domain.StudentCourse{{CourseName: "Javaコース", StartAt: start, EndAt: start.AddDate(0, 6, 0)}},
	}

	err := repo.Register(context.Background(), detail)
	require.NoError(t, err)
	assert.Equal(t, testID(t, 21), detail.Student.ID)
	assert.Equal(t, testID(t, 31), detail.Courses[0].ID)
	assert.Equal(t, testID(t, 21), detail.Courses[0].StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryRegisterRollsBackOnCourseFailure(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO students").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(21)))
	mock.ExpectQuery("INSERT INTO student_courses").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	detail := &domain.StudentDetail{
		Student: &domain.Student{FullName: "山田太郎"},
		Courses: []domain.StudentCourse{{CourseName: "Javaコース"}},
	}

	err := repo.Register(context.Background(), detail)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateTouchesOnlyNameAndEndDate(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE students SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE student_courses SET course_name = $1, end_at = $2, updated_at = $3 WHERE id = $4 AND student_id = $5")).
		WithArgs("AWSコース", time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC), sqlmock.AnyArg(), int64(1), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	detail := &domain.StudentDetail{
		Student: &domain.Student{ID: testID(t, 1), FullName: "山田太郎", KanaName: "ヤマダタロウ", Email: "taro@example.com", Age: 20, Sex: "男"},
		Courses: []domain.StudentCourse{{
			ID:         testID(t, 1),
			StudentID:  testID(t, 1),
			CourseName: "AWSコース",
			// Caller-supplied start date; the statement never references it.
			StartAt: time.Date(2023, 10, 15, 0, 0, 0, 0, time.UTC),
			EndAt:   time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC),
		}},
	}

	err := repo.Update(context.Background(), detail)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateMissingStudent(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE students SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	detail := &domain.StudentDetail{
		Student: &domain.Student{ID: testID(t, 404)},
	}

	err := repo.Update(context.Background(), detail)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateForeignCourse(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE students SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE student_courses SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	detail := &domain.StudentDetail{
		Student: &domain.Student{ID: testID(t, 1)},
		Courses: []domain.StudentCourse{{ID: testID(t, 9), StudentID: testID(t, 2), CourseName: "AWSコース", EndAt: time.Now()}},
	}

	err := repo.Update(context.Background(), detail)
	var ownership *CourseOwnershipError
	require.True(t, errors.As(err, &ownership))
	assert.Equal(t, int64(9), ownership.CourseID)
	assert.Equal(t, int64(1), ownership.StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryLogicalDelete(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET is_deleted = true, updated_at = $2 WHERE id = $1")).
		WithArgs(int64(3), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.LogicalDelete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryLogicalDeleteMissing(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET is_deleted = true").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.LogicalDelete(context.Background(), 404)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListCoursesByStudentID(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "course_name", "start_at", "end_at"}).
		AddRow(10, 1, "Javaコース", time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, course_name, start_at, end_at FROM student_courses WHERE student_id = $1 ORDER BY id")).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	courses, err := repo.ListCoursesByStudentID(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, testID(t, 10), courses[0].ID)
	assert.Equal(t, testID(t, 1), courses[0].StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
