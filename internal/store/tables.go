package store

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"fyugp/internal/attendance"
	"fyugp/internal/helper"
	"fyugp/internal/leave"
	"fyugp/internal/roster"
)

// Tables is one in-memory snapshot of every persisted table. Callers load
// it at the start of an interaction, mutate the values and save them back.
type Tables struct {
	Students   []roster.Student
	Courses    []roster.Course
	Teachers   []roster.Teacher
	Attendance attendance.Ledger
	Leave      leave.Register

	// Skipped counts ledger and leave rows dropped as unreadable on load.
	Skipped int
}

// Store loads and saves whole tables.
type Store interface {
	Load(ctx context.Context) (*Tables, error)
	SaveAttendance(ctx context.Context, l attendance.Ledger) error
	SaveLeave(ctx context.Context, r leave.Register) error
	SaveRoster(ctx context.Context, t *Tables) error
	Close() error
}

// Table names double as file names (plus ".csv") and SQL table names.
const (
	StudentsTable   = "students"
	CoursesTable    = "courses"
	TeachersTable   = "teachers"
	AttendanceTable = "attendance"
	LeaveTable      = "camp_days"
)

// Column sets. Attendance is the superset of every ledger revision.
var (
	StudentColumns    = []string{"student_id", "name", "major_course", "minor1_course", "minor2_course", "mdc_course", "vac_course"}
	CourseColumns     = []string{"course_id", "course_name", "teacher_id"}
	TeacherColumns    = []string{"teacher_id", "name", "email", "password", "role", "department"}
	AttendanceColumns = []string{"date", "hour", "course_id", "student_id", "status", "marked_by", "extra_time", "duration"}
	LeaveColumns      = []string{"student_id", "start_date", "end_date", "activity"}
)

// Row is a table row keyed by column name; absent columns read as "".
type Row map[string]string

func (r Row) get(col string) string { return strings.TrimSpace(r[col]) }

func studentFromRow(r Row) roster.Student {
	return roster.Student{
		StudentID: r.get("student_id"),
		Name:      r.get("name"),
		Major:     r.get("major_course"),
		Minor1:    r.get("minor1_course"),
		Minor2:    r.get("minor2_course"),
		MDC:       r.get("mdc_course"),
		VAC:       r.get("vac_course"),
	}
}

func studentRow(s roster.Student) []string {
	return []string{s.StudentID, s.Name, s.Major, s.Minor1, s.Minor2, s.MDC, s.VAC}
}

func courseFromRow(r Row) roster.Course {
	return roster.Course{CourseID: r.get("course_id"), Name: r.get("course_name"), TeacherID: r.get("teacher_id")}
}

func courseRow(c roster.Course) []string {
	return []string{c.CourseID, c.Name, c.TeacherID}
}

func teacherFromRow(r Row) roster.Teacher {
	return roster.Teacher{
		TeacherID:  r.get("teacher_id"),
		Name:       r.get("name"),
		Email:      r.get("email"),
		Password:   r.get("password"),
		Role:       strings.ToLower(r.get("role")),
		Department: r.get("department"),
	}
}

func teacherRow(t roster.Teacher) []string {
	return []string{t.TeacherID, t.Name, t.Email, t.Password, t.Role, t.Department}
}

func recordFromRow(r Row) (attendance.Record, error) {
	date, err := helper.ParseDate(r.get("date"))
	if err != nil {
		return attendance.Record{}, err
	}
	hour, err := attendance.ParseHour(r.get("hour"))
	if err != nil {
		return attendance.Record{}, err
	}
	status, err := attendance.ParseStatus(r.get("status"))
	if err != nil {
		return attendance.Record{}, err
	}
	rec := attendance.Record{
		Date:      date,
		Hour:      hour,
		CourseID:  r.get("course_id"),
		StudentID: r.get("student_id"),
		Status:    status,
		MarkedBy:  r.get("marked_by"),
		ExtraTime: r.get("extra_time"),
	}
	if d := strings.TrimSuffix(r.get("duration"), ".0"); d != "" {
		if rec.Duration, err = strconv.Atoi(d); err != nil {
			return attendance.Record{}, fmt.Errorf("duration %q: %w", d, err)
		}
	}
	return rec, nil
}

func recordRow(r attendance.Record) []string {
	duration := ""
	if r.Duration > 0 {
		duration = strconv.Itoa(r.Duration)
	}
	return []string{helper.FormatDate(r.Date), r.Hour, r.CourseID, r.StudentID, string(r.Status), r.MarkedBy, r.ExtraTime, duration}
}

func intervalFromRow(r Row) (leave.Interval, error) {
	start, err := helper.ParseDate(r.get("start_date"))
	if err != nil {
		return leave.Interval{}, err
	}
	end, err := helper.ParseDate(r.get("end_date"))
	if err != nil {
		return leave.Interval{}, err
	}
	return leave.Interval{StudentID: r.get("student_id"), Start: start, End: end, Activity: r.get("activity")}, nil
}

func intervalRow(iv leave.Interval) []string {
	return []string{iv.StudentID, helper.FormatDate(iv.Start), helper.FormatDate(iv.End), iv.Activity}
}

// decode turns raw rows of every table into a Tables value. Ledger and leave
// rows that do not parse are logged and skipped so one bad row never hides
// the rest of the data.
func decode(raw map[string][]Row) (*Tables, error) {
	t := &Tables{}
	for _, r := range raw[StudentsTable] {
		t.Students = append(t.Students, studentFromRow(r))
	}
	for _, r := range raw[CoursesTable] {
		t.Courses = append(t.Courses, courseFromRow(r))
	}
	for _, r := range raw[TeachersTable] {
		t.Teachers = append(t.Teachers, teacherFromRow(r))
	}
	for i, r := range raw[AttendanceTable] {
		rec, err := recordFromRow(r)
		if err != nil {
			log.Printf("warning: %s row %d: %v", AttendanceTable, i+1, err)
			t.Skipped++
			continue
		}
		t.Attendance = append(t.Attendance, rec)
	}
	for i, r := range raw[LeaveTable] {
		iv, err := intervalFromRow(r)
		if err != nil {
			log.Printf("warning: %s row %d: %v", LeaveTable, i+1, err)
			t.Skipped++
			continue
		}
		t.Leave = append(t.Leave, iv)
	}
	return t, nil
}

func attendanceRows(l attendance.Ledger) [][]string {
	out := make([][]string, 0, len(l))
	for _, r := range l {
		out = append(out, recordRow(r))
	}
	return out
}

func leaveRows(r leave.Register) [][]string {
	out := make([][]string, 0, len(r))
	for _, iv := range r {
		out = append(out, intervalRow(iv))
	}
	return out
}

// RosterRows renders the three roster tables.
func RosterRows(t *Tables) map[string][][]string {
	out := map[string][][]string{}
	for _, s := range t.Students {
		out[StudentsTable] = append(out[StudentsTable], studentRow(s))
	}
	for _, c := range t.Courses {
		out[CoursesTable] = append(out[CoursesTable], courseRow(c))
	}
	for _, tc := range t.Teachers {
		out[TeachersTable] = append(out[TeachersTable], teacherRow(tc))
	}
	return out
}

// AllRows renders every table with its header, in a stable order.
func AllRows(t *Tables) []NamedRows {
	rr := RosterRows(t)
	return []NamedRows{
		{Name: StudentsTable, Columns: StudentColumns, Rows: rr[StudentsTable]},
		{Name: CoursesTable, Columns: CourseColumns, Rows: rr[CoursesTable]},
		{Name: TeachersTable, Columns: TeacherColumns, Rows: rr[TeachersTable]},
		{Name: AttendanceTable, Columns: AttendanceColumns, Rows: attendanceRows(t.Attendance)},
		{Name: LeaveTable, Columns: LeaveColumns, Rows: leaveRows(t.Leave)},
	}
}

// NamedRows is one rendered table.
type NamedRows struct {
	Name    string
	Columns []string
	Rows    [][]string
}

var columnsByTable = map[string][]string{
	StudentsTable:   StudentColumns,
	CoursesTable:    CourseColumns,
	TeachersTable:   TeacherColumns,
	AttendanceTable: AttendanceColumns,
	LeaveTable:      LeaveColumns,
}
