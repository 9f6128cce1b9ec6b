package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kohei-dev/student-management-api/internal/converter"
	"github.com/kohei-dev/student-management-api/internal/domain"
	"github.com/kohei-dev/student-management-api/internal/dto"
	"github.com/kohei-dev/student-management-api/internal/repository"
	appErrors "github.com/kohei-dev/student-management-api/pkg/errors"
)

type mockStudentRepo struct {
	students     map[int64]domain.Student
	courses      map[int64][]domain.StudentCourse
	nextStudent  int64
	nextCourse   int64
	registerErr  error
	registered   *domain.StudentDetail
	deleted      []int64
	updateCalled bool
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{
		students:    make(map[int64]domain.Student),
		courses:     make(map[int64][]domain.StudentCourse),
		nextStudent: 1,
		nextCourse:  1,
	}
}

func (m *mockStudentRepo) addStudent(t *testing.T, s domain.Student) int64 {
	t.Helper()
	id := m.nextStudent
	m.nextStudent++
	assigned, err := domain.NewID(id)
	require.NoError(t, err)
	s.ID = assigned
	m.students[id] = s
	return id
}

func (m *mockStudentRepo) addCourse(t *testing.T, studentID int64, c domain.StudentCourse) int64 {
	t.Helper()
	id := m.nextCourse
	m.nextCourse++
	assigned, err := domain.NewID(id)
	require.NoError(t, err)
	c.ID = assigned
	c.StudentID, err = domain.NewID(studentID)
	require.NoError(t, err)
	m.courses[studentID] = append(m.courses[studentID], c)
	return id
}

func (m *mockStudentRepo) ListActive(ctx context.Context) ([]domain.Student, error) {
	var out []domain.Student
	for id := int64(1); id < m.nextStudent; id++ {
		if s, ok := m.students[id]; ok && !s.Deleted {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id int64) (domain.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return domain.Student{}, sql.ErrNoRows
}

func (m *mockStudentRepo) ListAllCourses(ctx context.Context) ([]domain.StudentCourse, error) {
	var out []domain.StudentCourse
	for id := int64(1); id < m.nextStudent; id++ {
		out = append(out, m.courses[id]...)
	}
	return out, nil
}

func (m *mockStudentRepo) ListCoursesByStudentID(ctx context.Context, studentID int64) ([]domain.StudentCourse, error) {
	return m.courses[studentID], nil
}

func (m *mockStudentRepo) Register(ctx context.Context, detail *domain.StudentDetail) error {
	if m.registerErr != nil {
		return m.registerErr
	}
	id := m.nextStudent
	m.nextStudent++
	assigned, err := domain.NewID(id)
	if err != nil {
		return err
	}
	detail.Student.ID = assigned
	m.students[id] = *detail.Student
	for i := range detail.Courses {
		courseID := m.nextCourse
		m.nextCourse++
		if detail.Courses[i].ID, err = domain.NewID(courseID); err != nil {
			return err
		}
		detail.Courses[i].StudentID = assigned
		m.courses[id] = append(m.courses[id], detail.Courses[i])
	}
	m.registered = detail
	return nil
}

// Update mirrors the persistence invariant: only the student's mutable
// fields and each course's name and end date change; stored start dates and
// linkage survive.
func (m *mockStudentRepo) Update(ctx context.Context, detail *domain.StudentDetail) error {
	m.updateCalled = true
	studentID, _ := detail.Student.ID.Value()
	stored, ok := m.students[studentID]
	if !ok {
		return sql.ErrNoRows
	}
	updated := *detail.Student
	updated.ID = stored.ID
	m.students[studentID] = updated

	for _, course := range detail.Courses {
		courseID, _ := course.ID.Value()
		found := false
		for i := range m.courses[studentID] {
			existingID, _ := m.courses[studentID][i].ID.Value()
			if existingID == courseID {
				m.courses[studentID][i].CourseName = course.CourseName
				m.courses[studentID][i].EndAt = course.EndAt
				found = true
				break
			}
		}
		if !found {
			return &repository.CourseOwnershipError{CourseID: courseID, StudentID: studentID}
		}
	}
	return nil
}

func (m *mockStudentRepo) LogicalDelete(ctx context.Context, id int64) error {
	s, ok := m.students[id]
	if !ok {
		return sql.ErrNoRows
	}
	s.Deleted = true
	m.students[id] = s
	m.deleted = append(m.deleted, id)
	return nil
}

func newTestService(repo studentRepository) *StudentService {
	return NewStudentService(repo, converter.NewStudentConverter(false), nil, nil)
}

func seedStudent(t *testing.T, repo *mockStudentRepo) int64 {
	t.Helper()
	id := repo.addStudent(t, domain.Student{
		FullName:  "山田太郎",
		KanaName:  "ヤマダタロウ",
		Email:     "taro@example.com",
		Telephone: "090-1234-5678",
		Age:       20,
		Sex:       domain.SexMale,
	})
	repo.addCourse(t, id, domain.StudentCourse{
		CourseName: "Javaコース",
		StartAt:    time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		EndAt:      time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	return id
}

func TestStudentServiceListAssemblesDetails(t *testing.T) {
	repo := newMockStudentRepo()
	first := seedStudent(t, repo)
	second := repo.addStudent(t, domain.Student{FullName: "佐藤花子", KanaName: "サトウハナコ", Email: "hanako@example.com", Age: 25, Sex: domain.SexFemale})
	repo.addCourse(t, second, domain.StudentCourse{CourseName: "AWSコース", StartAt: time.Now(), EndAt: time.Now().AddDate(0, 6, 0)})

	svc := newTestService(repo)
	responses, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.Equal(t, first, responses[0].Student.StudentID)
	assert.Len(t, responses[0].StudentCourseList, 1)
	assert.Equal(t, "AWSコース", responses[1].StudentCourseList[0].CourseName)
}

func TestStudentServiceListExcludesDeleted(t *testing.T) {
	repo := newMockStudentRepo()
	id := seedStudent(t, repo)
	svc := newTestService(repo)

	require.NoError(t, svc.Delete(context.Background(), id))

	responses, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, responses)
}

func TestStudentServiceGetNotFound(t *testing.T) {
	svc := newTestService(newMockStudentRepo())

	_, err := svc.Get(context.Background(), 404)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrTargetNotFound.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "404")
}

func TestStudentServiceRegisterDefaultsCourseWindow(t *testing.T) {
	repo := newMockStudentRepo()
	svc := newTestService(repo)

	form := dto.StudentDetailForm{
		Student: &dto.StudentForm{
			Fullname:  "山田太郎",
			KanaName:  "ヤマダタロウ",
			Email:     "taro@example.com",
			Telephone: "090-1234-5678",
			Age:       20,
			Sex:       domain.SexMale,
		},
		StudentCourseList: []dto.StudentCourseForm{{CourseName: "Javaコース"}},
	}

	resp, err := svc.Register(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Student.StudentID)
	require.Len(t, resp.StudentCourseList, 1)

	today := dto.NewDate(time.Now())
	assert.Equal(t, today.Time, resp.StudentCourseList[0].CourseStartAt.Time)
	assert.Equal(t, today.AddDate(0, 6, 0), resp.StudentCourseList[0].CourseEndAt.Time)
	require.NotNil(t, repo.registered)
}

func TestStudentServiceRegisterCollectsAllViolations(t *testing.T) {
	repo := newMockStudentRepo()
	svc := newTestService(repo)

	form := dto.StudentDetailForm{
		Student: &dto.StudentForm{
			Fullname: "山田太郎",
			KanaName: "ヤマダタロウ",
			Email:    "not-an-email",
			Age:      12,
			Sex:      "male",
		},
		StudentCourseList: []dto.StudentCourseForm{{CourseName: "Pythonコース"}},
	}

	_, err := svc.Register(context.Background(), form)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	var fields []string
	for _, v := range appErr.Violations {
		fields = append(fields, v.Field)
	}
	assert.ElementsMatch(t, []string{"student.email", "student.age", "student.sex", "courseList[0].courseName"}, fields)
	assert.Nil(t, repo.registered)
}

func TestStudentServiceUpdatePreservesStartAndLinkage(t *testing.T) {
	repo := newMockStudentRepo()
	studentID := seedStudent(t, repo)
	svc := newTestService(repo)

	foreignStudent := int64(2)
	courseID := int64(1)
	start := dto.NewDate(time.Date(2023, 10, 15, 0, 0, 0, 0, time.UTC))
	end := dto.NewDate(time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC))
	form := dto.StudentDetailForm{
		Student: &dto.StudentForm{
			StudentID: &studentID,
			Fullname:  "山田太郎",
			KanaName:  "ヤマダタロウ",
			Email:     "taro@example.com",
			Age:       21,
			Sex:       domain.SexMale,
		},
		StudentCourseList: []dto.StudentCourseForm{{
			CourseID:      &courseID,
			StudentID:     &foreignStudent,
			CourseName:    "AWSコース",
			CourseStartAt: &start,
			CourseEndAt:   &end,
		}},
	}

	resp, err := svc.Update(context.Background(), form)
	require.NoError(t, err)
	require.Len(t, resp.StudentCourseList, 1)

	// Name and end date changed; start date and ownership survived.
	assert.Equal(t, "AWSコース", resp.StudentCourseList[0].CourseName)
	assert.Equal(t, "2025-12-15", resp.StudentCourseList[0].CourseEndAt.Format("2006-01-02"))
	assert.Equal(t, "2024-07-15", resp.StudentCourseList[0].CourseStartAt.Format("2006-01-02"))
	assert.Equal(t, studentID, resp.Student.StudentID)
	assert.Equal(t, 21, resp.Student.Age)
}

func TestStudentServiceUpdateMissingStudent(t *testing.T) {
	repo := newMockStudentRepo()
	seedStudent(t, repo)
	svc := newTestService(repo)

	missing := int64(99)
	courseID := int64(1)
	end := dto.NewDate(time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC))
	form := dto.StudentDetailForm{
		Student: &dto.StudentForm{
			StudentID: &missing,
			Fullname:  "山田太郎",
			KanaName:  "ヤマダタロウ",
			Email:     "taro@example.com",
			Age:       20,
			Sex:       domain.SexMale,
		},
		StudentCourseList: []dto.StudentCourseForm{{CourseID: &courseID, CourseName: "AWSコース", CourseEndAt: &end}},
	}

	_, err := svc.Update(context.Background(), form)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrTargetNotFound.Code, appErr.Code)
}

func TestStudentServiceUpdateForeignCourse(t *testing.T) {
	repo := newMockStudentRepo()
	studentID := seedStudent(t, repo)
	other := repo.addStudent(t, domain.Student{FullName: "佐藤花子", KanaName: "サトウハナコ", Email: "hanako@example.com", Age: 25, Sex: domain.SexFemale})
	foreignCourse := repo.addCourse(t, other, domain.StudentCourse{CourseName: "AWSコース", StartAt: time.Now(), EndAt: time.Now().AddDate(0, 6, 0)})

	svc := newTestService(repo)
	end := dto.NewDate(time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC))
	form := dto.StudentDetailForm{
		Student: &dto.StudentForm{
			StudentID: &studentID,
			Fullname:  "山田太郎",
			KanaName:  "ヤマダタロウ",
			Email:     "taro@example.com",
			Age:       20,
			Sex:       domain.SexMale,
		},
		StudentCourseList: []dto.StudentCourseForm{{CourseID: &foreignCourse, CourseName: "AWSコース", CourseEndAt: &end}},
	}

	_, err := svc.Update(context.Background(), form)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidIdentifier.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "2")
}

func TestStudentServiceDeleteMissing(t *testing.T) {
	svc := newTestService(newMockStudentRepo())

	err := svc.Delete(context.Background(), 404)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrTargetNotFound.Code, appErr.Code)
}
