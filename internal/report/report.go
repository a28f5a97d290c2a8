package report

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"fyugp/internal/attendance"
	"fyugp/internal/helper"
	"fyugp/internal/leave"
	"fyugp/internal/roster"
)

var ErrBadRange = errors.New("report range start is after end")

// Kind selects which rows a report covers.
type Kind string

const (
	// KindCourse is a teacher's single-course view.
	KindCourse Kind = "course"
	// KindDepartment is an admin's consolidated view of one department.
	KindDepartment Kind = "department"
)

// Scope restricts a report to a course or a department.
type Scope struct {
	Kind       Kind   `json:"kind"`
	CourseID   string `json:"course_id,omitempty"`
	Department string `json:"department,omitempty"`
}

// DetailRow is one surviving attendance record.
type DetailRow struct {
	Date      string            `json:"date"`
	Hour      string            `json:"hour"`
	StudentID string            `json:"student_id"`
	Name      string            `json:"name"`
	CourseID  string            `json:"course_id"`
	Status    attendance.Status `json:"status"`
}

// SummaryRow aggregates one student's surviving records.
type SummaryRow struct {
	StudentID  string  `json:"student_id"`
	Name       string  `json:"name"`
	Total      int     `json:"total"`
	Attended   int     `json:"attended"`
	Percentage float64 `json:"percentage"`
}

// Report is the detailed and summary view over [From, To].
type Report struct {
	From     string       `json:"from"`
	To       string       `json:"to"`
	Scope    Scope        `json:"scope"`
	Detailed []DetailRow  `json:"detailed"`
	Summary  []SummaryRow `json:"summary"`
	Warnings []string     `json:"warnings,omitempty"`
}

// Empty reports whether no attendance survived the filters.
func (r Report) Empty() bool { return len(r.Detailed) == 0 }

// Build joins the ledger, the leave register and the roster. Records on a
// day the student is on leave are dropped before anything is counted.
func Build(students []roster.Student, ledger attendance.Ledger, register leave.Register, scope Scope, from, to time.Time) (Report, error) {
	from, to = helper.Day(from), helper.Day(to)
	if from.After(to) {
		return Report{}, fmt.Errorf("%w: %s > %s", ErrBadRange, helper.FormatDate(from), helper.FormatDate(to))
	}
	rep := Report{From: helper.FormatDate(from), To: helper.FormatDate(to), Scope: scope}

	rows := ledger.InRange(from, to)

	// members is the roster the rows are joined against.
	var members []roster.Student
	switch scope.Kind {
	case KindCourse:
		rows = rows.ForCourse(scope.CourseID)
		members = students
	case KindDepartment:
		dept, err := roster.DepartmentStudents(students, scope.Department)
		if err != nil {
			log.Printf("warning: department %q: %v", scope.Department, err)
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("department %q is missing or malformed; no students matched", scope.Department))
		}
		members = dept
	default:
		return Report{}, fmt.Errorf("unknown report scope %q", scope.Kind)
	}
	byID := roster.Index(members)

	onLeave := register.Expand()
	var kept attendance.Ledger
	for _, r := range rows {
		if onLeave.Covers(r.StudentID, r.Date) {
			continue
		}
		if _, ok := byID[r.StudentID]; !ok {
			continue
		}
		kept = append(kept, r)
	}
	kept.Sort()

	type tally struct{ total, attended int }
	counts := map[string]*tally{}
	for _, r := range kept {
		rep.Detailed = append(rep.Detailed, DetailRow{
			Date:      helper.FormatDate(r.Date),
			Hour:      r.Hour,
			StudentID: r.StudentID,
			Name:      byID[r.StudentID].Name,
			CourseID:  r.CourseID,
			Status:    r.Status,
		})
		c := counts[r.StudentID]
		if c == nil {
			c = &tally{}
			counts[r.StudentID] = c
		}
		c.total++
		if r.Status.Attended() {
			c.attended++
		}
	}

	ids := make([]string, 0, len(counts))
	if scope.Kind == KindDepartment {
		for _, s := range members {
			ids = append(ids, s.StudentID)
		}
	} else {
		for id := range counts {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		row := SummaryRow{StudentID: id, Name: byID[id].Name}
		if c := counts[id]; c != nil {
			row.Total, row.Attended = c.total, c.attended
			row.Percentage = Percentage(c.attended, c.total)
		}
		rep.Summary = append(rep.Summary, row)
	}
	return rep, nil
}

// Percentage is attended/total*100 rounded to two decimals; zero when there
// is nothing to count.
func Percentage(attended, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(attended)/float64(total)*10000) / 100
}
