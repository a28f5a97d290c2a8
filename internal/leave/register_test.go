package leave

import (
	"errors"
	"testing"
	"time"

	"fyugp/internal/helper"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := helper.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestExpandInclusive(t *testing.T) {
	r := Add(nil, Interval{StudentID: "S1", Start: day(t, "2025-07-10"), End: day(t, "2025-07-12"), Activity: "NSS"})
	days := r.Expand()
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	for _, d := range []string{"2025-07-10", "2025-07-11", "2025-07-12"} {
		if !days.Covers("S1", day(t, d)) {
			t.Fatalf("%s not covered", d)
		}
	}
	if days.Covers("S1", day(t, "2025-07-13")) || days.Covers("S2", day(t, "2025-07-11")) {
		t.Fatal("coverage leaked outside interval")
	}
}

func TestOverlappingIntervalsAllApply(t *testing.T) {
	var r Register
	r = Add(r, Interval{StudentID: "S1", Start: day(t, "2025-07-01"), End: day(t, "2025-07-05"), Activity: "NCC"})
	r = Add(r, Interval{StudentID: "S1", Start: day(t, "2025-07-04"), End: day(t, "2025-07-08"), Activity: "Club"})
	r = Add(r, Interval{StudentID: "S1", Start: day(t, "2025-07-04"), End: day(t, "2025-07-08"), Activity: "Club"})
	if len(r) != 3 {
		t.Fatalf("intervals merged: %d", len(r))
	}
	if got := len(r.Expand()); got != 8 {
		t.Fatalf("expected 8 distinct days, got %d", got)
	}
}

func TestReversedIntervalCoversNothing(t *testing.T) {
	r := Add(nil, Interval{StudentID: "S1", Start: day(t, "2025-07-12"), End: day(t, "2025-07-10")})
	if len(r) != 1 {
		t.Fatal("reversed interval should still be stored")
	}
	if len(r.Expand()) != 0 {
		t.Fatal("reversed interval should cover no days")
	}
}

func TestDeleteByIndex(t *testing.T) {
	var r Register
	for _, id := range []string{"S1", "S2", "S3"} {
		r = Add(r, Interval{StudentID: id, Start: day(t, "2025-07-01"), End: day(t, "2025-07-01")})
	}
	r, removed, err := Delete(r, 1)
	if err != nil {
		t.Fatal(err)
	}
	if removed.StudentID != "S2" || len(r) != 2 || r[1].StudentID != "S3" {
		t.Fatalf("unexpected register %+v", r)
	}
	if _, _, err := Delete(r, 2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if _, _, err := Delete(r, -1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestEntriesKeepIndexes(t *testing.T) {
	var r Register
	for _, id := range []string{"S1", "S2", "S1"} {
		r = Add(r, Interval{StudentID: id})
	}
	got := r.Entries(func(iv Interval) bool { return iv.StudentID == "S1" })
	if len(got) != 2 || got[0].Index != 0 || got[1].Index != 2 {
		t.Fatalf("got %+v", got)
	}
}
