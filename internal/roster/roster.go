package roster

import (
	"errors"
	"sort"
	"strings"
)

// Roles a teacher account can carry.
const (
	RoleTeacher   = "teacher"
	RoleAdmin     = "admin"
	RoleDeptAdmin = "dept_admin"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoDepartment       = errors.New("department missing or malformed")
	ErrCourseNotFound     = errors.New("course not found")
)

// Student is a roster row. A student may be enrolled through up to five slots.
type Student struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Major     string `json:"major_course"`
	Minor1    string `json:"minor1_course"`
	Minor2    string `json:"minor2_course"`
	MDC       string `json:"mdc_course"`
	VAC       string `json:"vac_course"`
}

// Course is owned by exactly one teacher.
type Course struct {
	CourseID  string `json:"course_id"`
	Name      string `json:"course_name,omitempty"`
	TeacherID string `json:"teacher_id"`
}

// Teacher is an account; admins are teachers with an admin role.
type Teacher struct {
	TeacherID  string `json:"teacher_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"-"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}

// Enrollments returns the student's enrollment slots in a fixed order.
func (s Student) Enrollments() [5]string {
	return [5]string{s.Major, s.Minor1, s.Minor2, s.MDC, s.VAC}
}

// EnrolledIn reports whether courseID occupies any enrollment slot.
func (s Student) EnrolledIn(courseID string) bool {
	if courseID == "" {
		return false
	}
	for _, slot := range s.Enrollments() {
		if slot == courseID {
			return true
		}
	}
	return false
}

// Eligible returns the students enrolled in courseID, in table order.
func Eligible(courseID string, students []Student) []Student {
	var out []Student
	for _, s := range students {
		if s.EnrolledIn(courseID) {
			out = append(out, s)
		}
	}
	return out
}

// IsAdmin reports whether role grants department-wide reporting.
func IsAdmin(role string) bool {
	return role == RoleAdmin || role == RoleDeptAdmin
}

// Authenticate matches a trimmed, case-insensitive email and an exact password.
func Authenticate(teachers []Teacher, email, password string) (Teacher, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)
	if email == "" {
		return Teacher{}, ErrInvalidCredentials
	}
	for _, t := range teachers {
		if strings.ToLower(strings.TrimSpace(t.Email)) == email && strings.TrimSpace(t.Password) == password {
			return t, nil
		}
	}
	return Teacher{}, ErrInvalidCredentials
}

// CoursesTaughtBy returns the courses owned by teacherID.
func CoursesTaughtBy(courses []Course, teacherID string) []Course {
	var out []Course
	for _, c := range courses {
		if c.TeacherID == teacherID {
			out = append(out, c)
		}
	}
	return out
}

// FindCourse looks a course up by id.
func FindCourse(courses []Course, courseID string) (Course, error) {
	for _, c := range courses {
		if c.CourseID == courseID {
			return c, nil
		}
	}
	return Course{}, ErrCourseNotFound
}

// Index maps student ids to roster rows.
func Index(students []Student) map[string]Student {
	idx := make(map[string]Student, len(students))
	for _, s := range students {
		idx[s.StudentID] = s
	}
	return idx
}

// DepartmentCode derives the three letter code used to match major courses,
// e.g. "Computer Science" -> "COM".
func DepartmentCode(department string) (string, bool) {
	d := strings.TrimSpace(department)
	if len([]rune(d)) < 3 {
		return "", false
	}
	return strings.ToUpper(string([]rune(d)[:3])), true
}

// MajorCode is the uppercased three character prefix of the major course.
func (s Student) MajorCode() string {
	m := []rune(strings.TrimSpace(s.Major))
	if len(m) < 3 {
		return strings.ToUpper(string(m))
	}
	return strings.ToUpper(string(m[:3]))
}

// InDepartment reports whether the student's major prefix equals code.
func InDepartment(s Student, code string) bool {
	return code != "" && s.MajorCode() == code
}

// DepartmentStudents returns the students whose major matches the department.
// A malformed department yields ErrNoDepartment and no students.
func DepartmentStudents(students []Student, department string) ([]Student, error) {
	code, ok := DepartmentCode(department)
	if !ok {
		return nil, ErrNoDepartment
	}
	var out []Student
	for _, s := range students {
		if InDepartment(s, code) {
			out = append(out, s)
		}
	}
	return out, nil
}

// Departments lists the distinct major prefixes present in the roster.
func Departments(students []Student) []string {
	seen := map[string]struct{}{}
	for _, s := range students {
		if code := s.MajorCode(); len(code) == 3 {
			seen[code] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for code := range seen {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
