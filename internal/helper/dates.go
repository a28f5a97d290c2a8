package helper

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the on-disk and wire format for calendar dates.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned for text no known layout accepts.
var ErrInvalidDate = errors.New("invalid date")

// Older ledger revisions wrote timestamps or slashed dates.
var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
}

// ParseDate parses a calendar date and truncates it to UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w %q", ErrInvalidDate, s)
}

// FormatDate renders a date using DateLayout; the zero time renders empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// Day drops the clock part, keeping the calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Between reports whether from <= d <= to, comparing calendar days.
func Between(d, from, to time.Time) bool {
	d = Day(d)
	return !d.Before(Day(from)) && !d.After(Day(to))
}

// EachDay calls fn for every calendar day in [start, end]. Nothing is
// visited when start is after end.
func EachDay(start, end time.Time, fn func(time.Time)) {
	for d := Day(start); !d.After(Day(end)); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}
