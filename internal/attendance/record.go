package attendance

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"fyugp/internal/helper"
)

// Status is the per-hour mark recorded for a student.
type Status string

const (
	Present Status = "P"
	Absent  Status = "A"
	NSS     Status = "NSS"
	NCC     Status = "NCC"
	Club    Status = "Club"
)

// Precedence orders the explicit categories; a student listed in several
// takes the first match. Students in none are Present.
var Precedence = []Status{Absent, NSS, NCC, Club}

// ExtraHour labels a session outside the six numbered hours.
const ExtraHour = "Extra Hour"

// FixedHours are the numbered class hours of a day.
var FixedHours = []string{"1", "2", "3", "4", "5", "6"}

var (
	ErrUnknownHour   = errors.New("hour must be 1-6 or Extra Hour")
	ErrUnknownStatus = errors.New("unknown status")
)

// ParseStatus accepts the stored codes as well as the long names used by
// some ledger revisions.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p", "present":
		return Present, nil
	case "a", "absent":
		return Absent, nil
	case "nss":
		return NSS, nil
	case "ncc":
		return NCC, nil
	case "club":
		return Club, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Attended reports whether the status counts toward attendance.
func (s Status) Attended() bool { return s != Absent }

// ParseHour normalises an hour selector to "1".."6" or ExtraHour.
func ParseHour(s string) (string, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, ExtraHour) {
		return ExtraHour, nil
	}
	// float-typed columns come back as "1.0"
	s = strings.TrimSuffix(s, ".0")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > len(FixedHours) {
		return "", fmt.Errorf("%w: %q", ErrUnknownHour, s)
	}
	return strconv.Itoa(n), nil
}

// Record is one student's status for one hour of one course.
type Record struct {
	Date      time.Time `json:"date"`
	Hour      string    `json:"hour"`
	CourseID  string    `json:"course_id"`
	StudentID string    `json:"student_id"`
	Status    Status    `json:"status"`
	MarkedBy  string    `json:"marked_by"`
	ExtraTime string    `json:"extra_time,omitempty"`
	Duration  int       `json:"duration,omitempty"`
}

// Slot identifies one recorded hour: (date, hour, course).
type Slot struct {
	Date      time.Time
	Hour      string
	CourseID  string
	ExtraTime string
	Duration  int
}

func (r Record) inSlot(s Slot) bool {
	return r.Date.Equal(s.Date) && r.Hour == s.Hour && r.CourseID == s.CourseID
}

// Ledger is the attendance table in file order.
type Ledger []Record

// InRange keeps rows whose date falls in [from, to].
func (l Ledger) InRange(from, to time.Time) Ledger {
	var out Ledger
	for _, r := range l {
		if helper.Between(r.Date, from, to) {
			out = append(out, r)
		}
	}
	return out
}

// ForCourse keeps rows for one course.
func (l Ledger) ForCourse(courseID string) Ledger {
	var out Ledger
	for _, r := range l {
		if r.CourseID == courseID {
			out = append(out, r)
		}
	}
	return out
}

// Slot returns the rows recorded for one hour.
func (l Ledger) Slot(s Slot) Ledger {
	var out Ledger
	for _, r := range l {
		if r.inSlot(s) {
			out = append(out, r)
		}
	}
	return out
}

// Overwrite drops every row sharing the slot's (date, hour, course) and
// appends batch, so resubmitting an hour replaces it.
func Overwrite(l Ledger, slot Slot, batch []Record) Ledger {
	out := make(Ledger, 0, len(l)+len(batch))
	for _, r := range l {
		if !r.inSlot(slot) {
			out = append(out, r)
		}
	}
	return append(out, batch...)
}

// AvailableHours lists the fixed hours not yet recorded for the course on
// date, followed by ExtraHour which is always offered.
func AvailableHours(l Ledger, courseID string, date time.Time) []string {
	taken := map[string]bool{}
	for _, r := range l {
		if r.CourseID == courseID && r.Date.Equal(helper.Day(date)) {
			taken[r.Hour] = true
		}
	}
	var out []string
	for _, h := range FixedHours {
		if !taken[h] {
			out = append(out, h)
		}
	}
	return append(out, ExtraHour)
}

// Sort orders rows by date, hour, course and student.
func (l Ledger) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i], l[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Hour != b.Hour {
			return hourRank(a.Hour) < hourRank(b.Hour)
		}
		if a.CourseID != b.CourseID {
			return a.CourseID < b.CourseID
		}
		return a.StudentID < b.StudentID
	})
}

func hourRank(h string) int {
	if n, err := strconv.Atoi(h); err == nil {
		return n
	}
	return len(FixedHours) + 1
}
