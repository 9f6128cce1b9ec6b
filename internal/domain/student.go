package domain

import "time"

// Sex values accepted for a student. The set is closed; validation rejects
// anything else.
const (
	SexMale   = "男"
	SexFemale = "女"
	SexOther  = "その他"
)

// CourseNames is the closed set of offered courses. Enrollment in anything
// outside this exact set is rejected, near-misses included.
var CourseNames = []string{
	"Javaコース",
	"AWSコース",
	"デザインコース",
	"Webマーケティングコース",
	"フロントエンドコース",
}

// PlaceholderCourseName labels the synthetic course attached to students
// without enrollments when the read-path placeholder policy is on.
const PlaceholderCourseName = "未登録"

// Student is one person enrolled in the system. Instances are immutable
// value holders; a change produces a new validated instance. Students are
// only ever deleted logically via the Deleted flag.
type Student struct {
	ID        ID
	FullName  string
	KanaName  string
	Nickname  string
	Email     string
	Area      string
	Telephone string
	Age       int
	Sex       string
	Remark    string
	Deleted   bool
}

// StudentCourse is one enrollment of a student in a named course with a
// validity window. After creation only the course name and end date are
// mutable; the owning student and start date are fixed at registration.
type StudentCourse struct {
	ID         ID
	StudentID  ID
	CourseName string
	StartAt    time.Time
	EndAt      time.Time
}

// StudentDetail couples one student with its courses. It is the unit of
// registration, update and display, though student and courses are persisted
// through separate statements inside one transaction.
type StudentDetail struct {
	Student *Student
	Courses []StudentCourse
}
