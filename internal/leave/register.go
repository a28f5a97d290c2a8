package leave

import (
	"errors"
	"fmt"
	"time"

	"fyugp/internal/helper"
)

var ErrIndexOutOfRange = errors.New("leave index out of range")

// Interval is an approved camp period; both ends are inclusive. Start after
// End is accepted and simply covers no days.
type Interval struct {
	StudentID string    `json:"student_id"`
	Start     time.Time `json:"start_date"`
	End       time.Time `json:"end_date"`
	Activity  string    `json:"activity"`
}

// Register is the leave table in file order; positions are row indexes.
type Register []Interval

// Add appends iv. Overlapping or duplicate intervals are kept as-is.
func Add(r Register, iv Interval) Register {
	iv.Start = helper.Day(iv.Start)
	iv.End = helper.Day(iv.End)
	return append(r, iv)
}

// Delete removes the interval at index.
func Delete(r Register, index int) (Register, Interval, error) {
	if index < 0 || index >= len(r) {
		return r, Interval{}, fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(r))
	}
	removed := r[index]
	out := make(Register, 0, len(r)-1)
	out = append(out, r[:index]...)
	out = append(out, r[index+1:]...)
	return out, removed, nil
}

// Key identifies one student on one calendar day.
type Key struct {
	StudentID string
	Date      time.Time
}

// Days is the expanded register: every (student, day) covered by some interval.
type Days map[Key]struct{}

// Covers reports whether the student is on leave that day.
func (d Days) Covers(studentID string, date time.Time) bool {
	_, ok := d[Key{StudentID: studentID, Date: helper.Day(date)}]
	return ok
}

// Expand enumerates every day of every interval.
func (r Register) Expand() Days {
	days := Days{}
	for _, iv := range r {
		helper.EachDay(iv.Start, iv.End, func(d time.Time) {
			days[Key{StudentID: iv.StudentID, Date: d}] = struct{}{}
		})
	}
	return days
}

// Entry pairs an interval with its row index for listing and deletion.
type Entry struct {
	Index int `json:"index"`
	Interval
}

// Entries returns the rows accepted by keep, preserving their indexes.
func (r Register) Entries(keep func(Interval) bool) []Entry {
	var out []Entry
	for i, iv := range r {
		if keep == nil || keep(iv) {
			out = append(out, Entry{Index: i, Interval: iv})
		}
	}
	return out
}
