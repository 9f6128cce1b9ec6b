package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/kohei-dev/student-management-api/pkg/errors"
)

// Mode selects which identifier-presence rules apply during validation.
// Field-shape constraints (length, format, range, set membership) are
// identical across modes; only identifier presence differs.
type Mode int

const (
	// OnRegister permits unassigned identifiers.
	OnRegister Mode = iota
	// OnUpdate requires every identifier to be assigned.
	OnUpdate
)

func (m Mode) String() string {
	if m == OnUpdate {
		return "update"
	}
	return "register"
}

// Violation aliases the shared field-violation shape.
type Violation = appErrors.Violation

var (
	// validate backs the scalar length and range checks. Its max= tag
	// counts runes, not bytes, which is what the length ceilings demand.
	validate = validator.New()

	phonePattern = regexp.MustCompile(`^0\d{1,4}-\d{1,4}-\d{4}$`)

	courseNameSet = func() map[string]struct{} {
		set := make(map[string]struct{}, len(CourseNames))
		for _, name := range CourseNames {
			set[name] = struct{}{}
		}
		return set
	}()
)

type modeSet uint8

const (
	registerMode modeSet = 1 << iota
	updateMode
)

const bothModes = registerMode | updateMode

func (s modeSet) has(m Mode) bool {
	if m == OnUpdate {
		return s&updateMode != 0
	}
	return s&registerMode != 0
}

type studentRule struct {
	field string
	modes modeSet
	check func(s *Student) string
}

type courseRule struct {
	field string
	modes modeSet
	check func(c *StudentCourse) string
}

var studentRules = []studentRule{
	{"studentId", updateMode, func(s *Student) string {
		if s.ID.IsAbsent() {
			return "id is required"
		}
		return ""
	}},
	{"fullname", bothModes, func(s *Student) string {
		return checkRequiredText(s.FullName, 50)
	}},
	{"kanaName", bothModes, func(s *Student) string {
		return checkRequiredText(s.KanaName, 50)
	}},
	{"nickname", bothModes, func(s *Student) string {
		return checkOptionalText(s.Nickname, 50)
	}},
	{"email", bothModes, func(s *Student) string {
		if msg := checkRequiredText(s.Email, 50); msg != "" {
			return msg
		}
		if !validEmailShape(s.Email) {
			return "must be a well-formed email address"
		}
		return ""
	}},
	{"area", bothModes, func(s *Student) string {
		return checkOptionalText(s.Area, 50)
	}},
	{"telephone", bothModes, func(s *Student) string {
		if s.Telephone == "" {
			return ""
		}
		if !phonePattern.MatchString(s.Telephone) {
			return "must match the format 0X-XXXX-XXXX"
		}
		return ""
	}},
	{"age", bothModes, func(s *Student) string {
		if err := validate.Var(s.Age, "gte=15,lte=80"); err != nil {
			return "must be between 15 and 80"
		}
		return ""
	}},
	{"sex", bothModes, func(s *Student) string {
		switch s.Sex {
		case SexMale, SexFemale, SexOther:
			return ""
		}
		return "must be one of 男, 女, その他"
	}},
	{"remark", bothModes, func(s *Student) string {
		return checkOptionalText(s.Remark, 200)
	}},
}

var courseRules = []courseRule{
	{"courseId", updateMode, func(c *StudentCourse) string {
		if c.ID.IsAbsent() {
			return "id is required"
		}
		return ""
	}},
	{"courseName", bothModes, func(c *StudentCourse) string {
		if strings.TrimSpace(c.CourseName) == "" {
			return "must not be blank"
		}
		if _, ok := courseNameSet[c.CourseName]; !ok {
			return "must be one of the offered courses"
		}
		return ""
	}},
	{"courseEndAt", updateMode, func(c *StudentCourse) string {
		if c.EndAt.IsZero() {
			return "end date is required"
		}
		return ""
	}},
}

// Validate checks the aggregate under the given mode. Every violation is
// collected before returning; an empty result means the aggregate is valid.
func Validate(detail StudentDetail, mode Mode) []Violation {
	var violations []Violation

	if detail.Student == nil {
		violations = append(violations, Violation{Field: "student", Message: "student is required"})
	} else {
		for _, r := range studentRules {
			if !r.modes.has(mode) {
				continue
			}
			if msg := r.check(detail.Student); msg != "" {
				violations = append(violations, Violation{Field: "student." + r.field, Message: msg})
			}
		}
	}

	if len(detail.Courses) == 0 {
		violations = append(violations, Violation{Field: "courseList", Message: "at least one course is required"})
	}
	for i := range detail.Courses {
		prefix := fmt.Sprintf("courseList[%d].", i)
		for _, r := range courseRules {
			if !r.modes.has(mode) {
				continue
			}
			if msg := r.check(&detail.Courses[i]); msg != "" {
				violations = append(violations, Violation{Field: prefix + r.field, Message: msg})
			}
		}
	}

	return violations
}

func checkRequiredText(value string, max int) string {
	if strings.TrimSpace(value) == "" {
		return "must not be blank"
	}
	return checkOptionalText(value, max)
}

func checkOptionalText(value string, max int) string {
	if value == "" {
		return ""
	}
	if err := validate.Var(value, fmt.Sprintf("max=%d", max)); err != nil {
		return fmt.Sprintf("must be %d characters or fewer", max)
	}
	return ""
}

func validEmailShape(addr string) bool {
	at := strings.LastIndex(addr, "@")
	if at <= 0 || at == len(addr)-1 {
		return false
	}
	local, dom := addr[:at], addr[at+1:]
	if strings.HasPrefix(dom, ".") || strings.HasSuffix(dom, ".") {
		return false
	}
	if strings.Contains(addr, "..") {
		return false
	}
	if strings.ContainsAny(local, " ") || strings.ContainsAny(dom, " @") {
		return false
	}
	return true
}
