package converter

import (
	"time"

	"github.com/kohei-dev/student-management-api/internal/domain"
	"github.com/kohei-dev/student-management-api/internal/dto"
	appErrors "github.com/kohei-dev/student-management-api/pkg/errors"
)

// DefaultCourseMonths is the length of the enrollment window applied when a
// registration supplies no explicit dates.
const DefaultCourseMonths = 6

// StudentConverter translates between wire forms and validated domain
// aggregates, and between aggregates and response representations.
type StudentConverter struct {
	now               func() time.Time
	placeholderCourse bool
}

// NewStudentConverter builds a converter. placeholderCourse controls whether
// read-path assembly attaches a synthetic "未登録" course to students with no
// enrollments.
func NewStudentConverter(placeholderCourse bool) *StudentConverter {
	return &StudentConverter{now: time.Now, placeholderCourse: placeholderCourse}
}

// ToDetail maps an inbound form into a domain aggregate. Raw ids are wrapped
// into IDs, aborting immediately on a non-positive value. Course ownership
// comes from the enclosing student, never from the course form, and a
// registration without explicit dates gets a window of today plus six months.
func (c *StudentConverter) ToDetail(form dto.StudentDetailForm) (domain.StudentDetail, error) {
	detail := domain.StudentDetail{}

	var studentID domain.ID
	if form.Student != nil {
		id, err := domain.NullableID(form.Student.StudentID)
		if err != nil {
			return domain.StudentDetail{}, err
		}
		studentID = id
		detail.Student = &domain.Student{
			ID:        id,
			FullName:  form.Student.Fullname,
			KanaName:  form.Student.KanaName,
			Nickname:  form.Student.Nickname,
			Email:     form.Student.Email,
			Area:      form.Student.Area,
			Telephone: form.Student.Telephone,
			Age:       form.Student.Age,
			Sex:       form.Student.Sex,
			Remark:    form.Student.Remark,
			Deleted:   form.Student.IsDeleted,
		}
	}

	detail.Courses = make([]domain.StudentCourse, 0, len(form.StudentCourseList))
	for _, courseForm := range form.StudentCourseList {
		course, err := c.toCourse(courseForm, studentID)
		if err != nil {
			return domain.StudentDetail{}, err
		}
		detail.Courses = append(detail.Courses, course)
	}

	return detail, nil
}

func (c *StudentConverter) toCourse(form dto.StudentCourseForm, studentID domain.ID) (domain.StudentCourse, error) {
	id, err := domain.NullableID(form.CourseID)
	if err != nil {
		return domain.StudentCourse{}, err
	}

	course := domain.StudentCourse{
		ID:         id,
		StudentID:  studentID,
		CourseName: form.CourseName,
	}

	if form.CourseStartAt != nil {
		course.StartAt = form.CourseStartAt.Time
	}
	if form.CourseEndAt != nil {
		course.EndAt = form.CourseEndAt.Time
	}
	if form.CourseStartAt == nil && form.CourseEndAt == nil {
		start := dto.NewDate(c.now()).Time
		course.StartAt = start
		course.EndAt = start.AddDate(0, DefaultCourseMonths, 0)
	}

	return course, nil
}

// ToResponse flattens a domain aggregate into its display shape. Every id
// must be assigned: a never-persisted aggregate has no representation.
func (c *StudentConverter) ToResponse(detail domain.StudentDetail) (dto.StudentDetailResponse, error) {
	if detail.Student == nil {
		return dto.StudentDetailResponse{}, appErrors.Wrap(nil, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "cannot render detail without student")
	}
	studentID, assigned := detail.Student.ID.Value()
	if !assigned {
		return dto.StudentDetailResponse{}, appErrors.Wrap(nil, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "cannot render student without assigned id")
	}

	resp := dto.StudentDetailResponse{
		Student: dto.StudentResponse{
			StudentID: studentID,
			Fullname:  detail.Student.FullName,
			KanaName:  detail.Student.KanaName,
			Nickname:  detail.Student.Nickname,
			Email:     detail.Student.Email,
			Area:      detail.Student.Area,
			Telephone: detail.Student.Telephone,
			Age:       detail.Student.Age,
			Sex:       detail.Student.Sex,
			Remark:    detail.Student.Remark,
			IsDeleted: detail.Student.Deleted,
		},
		StudentCourseList: make([]dto.StudentCourseResponse, 0, len(detail.Courses)),
	}

	for _, course := range detail.Courses {
		courseID, assigned := course.ID.Value()
		if !assigned {
			// The synthetic placeholder course is never persisted and
			// renders with a zero id.
			if course.CourseName != domain.PlaceholderCourseName {
				return dto.StudentDetailResponse{}, appErrors.Wrap(nil, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "cannot render course without assigned id")
			}
		}
		resp.StudentCourseList = append(resp.StudentCourseList, dto.StudentCourseResponse{
			CourseID:      courseID,
			CourseName:    course.CourseName,
			CourseStartAt: dto.NewDate(course.StartAt),
			CourseEndAt:   dto.NewDate(course.EndAt),
		})
	}

	return resp, nil
}

// ToResponses renders a list of aggregates.
func (c *StudentConverter) ToResponses(details []domain.StudentDetail) ([]dto.StudentDetailResponse, error) {
	responses := make([]dto.StudentDetailResponse, 0, len(details))
	for _, detail := range details {
		resp, err := c.ToResponse(detail)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// AssembleDetails joins flat student and course rows into aggregates by
// matching course ownership to student identity. Students without courses
// keep an empty list unless the placeholder policy is on, in which case a
// single unpersisted "未登録" course is attached.
func (c *StudentConverter) AssembleDetails(students []domain.Student, courses []domain.StudentCourse) []domain.StudentDetail {
	grouped := make(map[domain.ID][]domain.StudentCourse, len(students))
	for _, course := range courses {
		grouped[course.StudentID] = append(grouped[course.StudentID], course)
	}

	details := make([]domain.StudentDetail, 0, len(students))
	for i := range students {
		student := students[i]
		linked := grouped[student.ID]
		if linked == nil {
			if c.placeholderCourse {
				linked = []domain.StudentCourse{{StudentID: student.ID, CourseName: domain.PlaceholderCourseName}}
			} else {
				linked = []domain.StudentCourse{}
			}
		}
		details = append(details, domain.StudentDetail{Student: &student, Courses: linked})
	}
	return details
}
