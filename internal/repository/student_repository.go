package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kohei-dev/student-management-api/internal/domain"
)

// CourseOwnershipError reports an update against a course id that does not
// exist or is not linked to the referenced student.
type CourseOwnershipError struct {
	CourseID  int64
	StudentID int64
}

func (e *CourseOwnershipError) Error() string {
	return fmt.Sprintf("course %d does not belong to student %d", e.CourseID, e.StudentID)
}

// StudentRepository manages persistence for students and their courses.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

type studentRow struct {
	ID        int64          `db:"id"`
	FullName  string         `db:"full_name"`
	KanaName  string         `db:"kana_name"`
	Nickname  sql.NullString `db:"nickname"`
	Email     string         `db:"email"`
	Area      sql.NullString `db:"area"`
	Telephone sql.NullString `db:"telephone"`
	Age       int            `db:"age"`
	Sex       string         `db:"sex"`
	Remark    sql.NullString `db:"remark"`
	IsDeleted bool           `db:"is_deleted"`
}

type courseRow struct {
	ID         int64     `db:"id"`
	StudentID  int64     `db:"student_id"`
	CourseName string    `db:"course_name"`
	StartAt    time.Time `db:"start_at"`
	EndAt      time.Time `db:"end_at"`
}

const studentColumns = "id, full_name, kana_name, nickname, email, area, telephone, age, sex, remark, is_deleted"
const courseColumns = "id, student_id, course_name, start_at, end_at"

// ListActive returns every student that has not been logically deleted.
func (r *StudentRepository) ListActive(ctx context.Context) ([]domain.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE is_deleted = false ORDER BY id", studentColumns)
	var rows []studentRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list active students: %w", err)
	}

	students := make([]domain.Student, 0, len(rows))
	for _, row := range rows {
		student, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, nil
}

// FindByID fetches a single student regardless of deletion state.
// sql.ErrNoRows propagates when the id matches nothing.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (domain.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var row studentRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return domain.Student{}, err
	}
	return row.toDomain()
}

// ListAllCourses returns every enrollment row.
func (r *StudentRepository) ListAllCourses(ctx context.Context) ([]domain.StudentCourse, error) {
	query := fmt.Sprintf("SELECT %s FROM student_courses ORDER BY id", courseColumns)
	var rows []courseRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courseRowsToDomain(rows)
}

// ListCoursesByStudentID returns the enrollments linked to one student.
func (r *StudentRepository) ListCoursesByStudentID(ctx context.Context, studentID int64) ([]domain.StudentCourse, error) {
	query := fmt.Sprintf("SELECT %s FROM student_courses WHERE student_id = $1 ORDER BY id", courseColumns)
	var rows []courseRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("list courses for student %d: %w", studentID, err)
	}
	return courseRowsToDomain(rows)
}

// Register inserts the student and all of its courses in one transaction.
// Course rows are linked to the id the database just assigned, never to a
// caller-supplied one. The assigned ids are written back into the aggregate.
func (r *StudentRepository) Register(ctx context.Context, detail *domain.StudentDetail) (err error) {
	if detail == nil || detail.Student == nil {
		return fmt.Errorf("register requires a student")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin register transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	const insertStudent = `INSERT INTO students (full_name, kana_name, nickname, email, area, telephone, age, sex, remark, is_deleted, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11) RETURNING id`

	var studentID int64
	s := detail.Student
	if err = tx.QueryRowxContext(ctx, insertStudent,
		s.FullName, s.KanaName, s.Nickname, s.Email, s.Area, s.Telephone, s.Age, s.Sex, s.Remark, s.Deleted, now,
	).Scan(&studentID); err != nil {
		return fmt.Errorf("insert student: %w", err)
	}

	assignedID, err := domain.NewID(studentID)
	if err != nil {
		return fmt.Errorf("assigned student id: %w", err)
	}
	s.ID = assignedID

	const insertCourse = `INSERT INTO student_courses (student_id, course_name, start_at, end_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`

	for i := range detail.Courses {
		course := &detail.Courses[i]
		var courseID int64
		if err = tx.QueryRowxContext(ctx, insertCourse,
			studentID, course.CourseName, course.StartAt, course.EndAt, now,
		).Scan(&courseID); err != nil {
			return fmt.Errorf("insert course: %w", err)
		}
		if course.ID, err = domain.NewID(courseID); err != nil {
			return fmt.Errorf("assigned course id: %w", err)
		}
		course.StudentID = assignedID
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit register transaction: %w", err)
	}
	return nil
}

// Update rewrites the student's mutable fields (including the logical
// deletion flag) and, for each course, only its name and end date. Course
// linkage and start date are structurally untouched. sql.ErrNoRows signals a
// missing student; a CourseOwnershipError signals a course id that does not
// belong to the student.
func (r *StudentRepository) Update(ctx context.Context, detail *domain.StudentDetail) (err error) {
	if detail == nil || detail.Student == nil {
		return fmt.Errorf("update requires a student")
	}
	studentID, assigned := detail.Student.ID.Value()
	if !assigned {
		return fmt.Errorf("update requires an assigned student id")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	const updateStudent = `UPDATE students SET full_name = $1, kana_name = $2, nickname = $3, email = $4, area = $5, telephone = $6, age = $7, sex = $8, remark = $9, is_deleted = $10, updated_at = $11 WHERE id = $12`

	s := detail.Student
	result, err := tx.ExecContext(ctx, updateStudent,
		s.FullName, s.KanaName, s.Nickname, s.Email, s.Area, s.Telephone, s.Age, s.Sex, s.Remark, s.Deleted, now, studentID,
	)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update student rows: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	const updateCourse = `UPDATE student_courses SET course_name = $1, end_at = $2, updated_at = $3 WHERE id = $4 AND student_id = $5`

	for i := range detail.Courses {
		course := &detail.Courses[i]
		courseID, assigned := course.ID.Value()
		if !assigned {
			return fmt.Errorf("update requires an assigned course id")
		}
		result, err = tx.ExecContext(ctx, updateCourse, course.CourseName, course.EndAt, now, courseID, studentID)
		if err != nil {
			return fmt.Errorf("update course %d: %w", courseID, err)
		}
		if affected, err = result.RowsAffected(); err != nil {
			return fmt.Errorf("update course rows: %w", err)
		}
		if affected == 0 {
			err = &CourseOwnershipError{CourseID: courseID, StudentID: studentID}
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update transaction: %w", err)
	}
	return nil
}

// LogicalDelete flags the student as deleted, keeping the row.
func (r *StudentRepository) LogicalDelete(ctx context.Context, id int64) error {
	const query = `UPDATE students SET is_deleted = true, updated_at = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("logical delete student %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("logical delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (row studentRow) toDomain() (domain.Student, error) {
	id, err := domain.NewID(row.ID)
	if err != nil {
		return domain.Student{}, fmt.Errorf("stored student id: %w", err)
	}
	return domain.Student{
		ID:        id,
		FullName:  row.FullName,
		KanaName:  row.KanaName,
		Nickname:  row.Nickname.String,
		Email:     row.Email,
		Area:      row.Area.String,
		Telephone: row.Telephone.String,
		Age:       row.Age,
		Sex:       row.Sex,
		Remark:    row.Remark.String,
		Deleted:   row.IsDeleted,
	}, nil
}

func courseRowsToDomain(rows []courseRow) ([]domain.StudentCourse, error) {
	courses := make([]domain.StudentCourse, 0, len(rows))
	for _, row := range rows {
		id, err := domain.NewID(row.ID)
		if err != nil {
			return nil, fmt.Errorf("stored course id: %w", err)
		}
		studentID, err := domain.NewID(row.StudentID)
		if err != nil {
			return nil, fmt.Errorf("stored course student id: %w", err)
		}
		courses = append(courses, domain.StudentCourse{
			ID:         id,
			StudentID:  studentID,
			CourseName: row.CourseName,
			StartAt:    row.StartAt,
			EndAt:      row.EndAt,
		})
	}
	return courses, nil
}
