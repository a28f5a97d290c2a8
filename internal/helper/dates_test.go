package helper

import (
	"testing"
	"time"
)

func TestParseDateLayouts(t *testing.T) {
	want := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2025-07-10", " 2025-07-10 ", "2025-07-10 09:30:00", "2025/07/10", "2025-07-10T23:10:00Z"} {
		got, err := ParseDate(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("%q: got %v", in, got)
		}
	}
	if _, err := ParseDate("10/07/2025x"); err == nil {
		t.Fatal("expected error")
	}
}

func TestEachDayInclusive(t *testing.T) {
	start, _ := ParseDate("2025-07-30")
	end, _ := ParseDate("2025-08-02")
	var got []string
	EachDay(start, end, func(d time.Time) { got = append(got, FormatDate(d)) })
	want := []string{"2025-07-30", "2025-07-31", "2025-08-01", "2025-08-02"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v", got)
		}
	}

	n := 0
	EachDay(end, start, func(time.Time) { n++ })
	if n != 0 {
		t.Fatalf("reversed range visited %d days", n)
	}
}

func TestBetween(t *testing.T) {
	from, _ := ParseDate("2025-07-01")
	to, _ := ParseDate("2025-07-31")
	if !Between(to, from, to) || !Between(from, from, to) {
		t.Fatal("endpoints must be inclusive")
	}
	out, _ := ParseDate("2025-08-01")
	if Between(out, from, to) {
		t.Fatal("date after range accepted")
	}
}
