package attendance

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"fyugp/internal/helper"
	"fyugp/internal/roster"
)

var enrolled = []roster.Student{
	{StudentID: "S1", Major: "C1"},
	{StudentID: "S2", Minor1: "C1"},
	{StudentID: "S3", VAC: "C1"},
}

func statuses(batch []Record) map[string]Status {
	out := map[string]Status{}
	for _, r := range batch {
		out[r.StudentID] = r.Status
	}
	return out
}

func TestResolvePrecedence(t *testing.T) {
	tests := []struct {
		name string
		req  SaveRequest
		want Status
	}{
		{"default present", SaveRequest{}, Present},
		{"absent beats all", SaveRequest{Absent: []string{"S1"}, NSS: []string{"S1"}, NCC: []string{"S1"}, Club: []string{"S1"}}, Absent},
		{"nss beats ncc", SaveRequest{NSS: []string{"S1"}, NCC: []string{"S1"}}, NSS},
		{"ncc beats club", SaveRequest{NCC: []string{"S1"}, Club: []string{"S1"}}, NCC},
		{"club only", SaveRequest{Club: []string{"S1"}}, Club},
		{"other student listed", SaveRequest{Absent: []string{"S2"}}, Present},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Resolve("S1", tc.req.selections()); got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestRecordOverwritesHour(t *testing.T) {
	svc := NewService()

	l, batch, err := svc.Record(nil, SaveRequest{Date: "2025-07-10", Hour: "1", Absent: []string{"S1"}}, "C1", enrolled[:1], "T1")
	if err != nil {
		t.Fatal(err)
	}
	if len(l) != 1 || len(batch) != 1 {
		t.Fatalf("ledger=%d batch=%d", len(l), len(batch))
	}
	want := Record{Date: mustDate(t, "2025-07-10"), Hour: "1", CourseID: "C1", StudentID: "S1", Status: Absent, MarkedBy: "T1"}
	if !reflect.DeepEqual(l[0], want) {
		t.Fatalf("got %+v", l[0])
	}

	l, _, err = svc.Record(l, SaveRequest{Date: "2025-07-10", Hour: "1"}, "C1", enrolled[:1], "T1")
	if err != nil {
		t.Fatal(err)
	}
	if len(l) != 1 || l[0].Status != Present {
		t.Fatalf("resubmission did not overwrite: %+v", l)
	}
}

func TestRecordLeavesOtherSlots(t *testing.T) {
	svc := NewService()
	var l Ledger
	var err error
	for _, h := range []string{"1", "2"} {
		l, _, err = svc.Record(l, SaveRequest{Date: "2025-07-10", Hour: h}, "C1", enrolled, "T1")
		if err != nil {
			t.Fatal(err)
		}
	}
	l, _, err = svc.Record(l, SaveRequest{Date: "2025-07-10", Hour: "1"}, "C2", enrolled[:1], "T2")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		l, _, err = svc.Record(l, SaveRequest{Date: "2025-07-10", Hour: "2", NSS: []string{"S2"}}, "C1", enrolled, "T1")
		if err != nil {
			t.Fatal(err)
		}
	}

	if len(l) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(l))
	}
	seen := map[string]int{}
	for _, r := range l {
		seen[helper.FormatDate(r.Date)+"|"+r.Hour+"|"+r.CourseID+"|"+r.StudentID]++
	}
	for key, n := range seen {
		if n != 1 {
			t.Fatalf("duplicate key %s (%d rows)", key, n)
		}
	}
	hour2 := l.Slot(Slot{Date: mustDate(t, "2025-07-10"), Hour: "2", CourseID: "C1"})
	if got := statuses(hour2); got["S2"] != NSS || got["S1"] != Present {
		t.Fatalf("unexpected hour 2 statuses: %v", got)
	}
}

func TestRecordIgnoresIneligibleSelections(t *testing.T) {
	_, batch, err := NewService().Record(nil, SaveRequest{Date: "2025-07-10", Hour: "3", Absent: []string{"S9"}}, "C1", enrolled, "T1")
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != len(enrolled) {
		t.Fatalf("batch size %d", len(batch))
	}
	for _, r := range batch {
		if r.Status != Present {
			t.Fatalf("unexpected status %+v", r)
		}
	}
}

func TestExtraHourValidation(t *testing.T) {
	svc := NewService()
	tests := []struct {
		name    string
		req     SaveRequest
		wantErr bool
	}{
		{"valid", SaveRequest{Date: "2025-07-10", Hour: "extra hour", ExtraTime: "15:30", Duration: 45}, false},
		{"lower bound", SaveRequest{Date: "2025-07-10", Hour: ExtraHour, ExtraTime: "08:00", Duration: 10}, false},
		{"upper bound", SaveRequest{Date: "2025-07-10", Hour: ExtraHour, ExtraTime: "08:00", Duration: 180}, false},
		{"too short", SaveRequest{Date: "2025-07-10", Hour: ExtraHour, ExtraTime: "08:00", Duration: 5}, true},
		{"too long", SaveRequest{Date: "2025-07-10", Hour: ExtraHour, ExtraTime: "08:00", Duration: 181}, true},
		{"missing time", SaveRequest{Date: "2025-07-10", Hour: ExtraHour, Duration: 60}, true},
		{"bad time", SaveRequest{Date: "2025-07-10", Hour: ExtraHour, ExtraTime: "3pm", Duration: 60}, true},
		{"hour seven", SaveRequest{Date: "2025-07-10", Hour: "7"}, true},
		{"bad date", SaveRequest{Date: "July 10", Hour: "1"}, true},
		{"missing date", SaveRequest{Hour: "1"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			slot, err := svc.Slot(tc.req, "C1")
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if err == nil && slot.Hour == ExtraHour && slot.Duration != tc.req.Duration {
				t.Fatalf("duration not carried: %+v", slot)
			}
		})
	}
}

func TestExtraHourFieldsOnRecords(t *testing.T) {
	_, batch, err := NewService().Record(nil, SaveRequest{Date: "2025-07-10", Hour: ExtraHour, ExtraTime: "16:00", Duration: 90}, "C1", enrolled[:1], "T1")
	if err != nil {
		t.Fatal(err)
	}
	if batch[0].ExtraTime != "16:00" || batch[0].Duration != 90 || batch[0].Hour != ExtraHour {
		t.Fatalf("got %+v", batch[0])
	}
}

func TestAvailableHoursMasksRecorded(t *testing.T) {
	d := mustDate(t, "2025-07-10")
	l := Ledger{
		{Date: d, Hour: "1", CourseID: "C1", StudentID: "S1"},
		{Date: d, Hour: "4", CourseID: "C1", StudentID: "S1"},
		{Date: d, Hour: "2", CourseID: "C2", StudentID: "S1"},
		{Date: mustDate(t, "2025-07-11"), Hour: "3", CourseID: "C1", StudentID: "S1"},
	}
	got := AvailableHours(l, "C1", d)
	want := []string{"2", "3", "5", "6", ExtraHour}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseStatusAndHour(t *testing.T) {
	if s, err := ParseStatus("Absent"); err != nil || s != Absent {
		t.Fatalf("got %s %v", s, err)
	}
	if _, err := ParseStatus("late"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
	if h, err := ParseHour("2.0"); err != nil || h != "2" {
		t.Fatalf("got %s %v", h, err)
	}
	if _, err := ParseHour("0"); !errors.Is(err, ErrUnknownHour) {
		t.Fatalf("expected ErrUnknownHour, got %v", err)
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := helper.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return v
}
