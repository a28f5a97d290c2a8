package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"fyugp/internal/attendance"
	"fyugp/internal/helper"
	"fyugp/internal/leave"
	"fyugp/internal/roster"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := helper.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

var students = []roster.Student{
	{StudentID: "S1", Name: "Anu", Major: "COM101"},
	{StudentID: "S2", Name: "Biju", Major: "COM101"},
	{StudentID: "S3", Name: "Chitra", Major: "PHY101", Minor1: "COM101"},
	{StudentID: "S4", Name: "Dev", Major: "COM102"},
}

func rec(t *testing.T, date, hour, course, student string, st attendance.Status) attendance.Record {
	return attendance.Record{Date: day(t, date), Hour: hour, CourseID: course, StudentID: student, Status: st, MarkedBy: "T1"}
}

func TestLeaveDayExcludedFromTotals(t *testing.T) {
	ledger := attendance.Ledger{rec(t, "2025-07-11", "2", "C1", "S1", attendance.Absent)}
	reg := leave.Add(nil, leave.Interval{StudentID: "S1", Start: day(t, "2025-07-10"), End: day(t, "2025-07-12"), Activity: "NSS"})
	all := []roster.Student{{StudentID: "S1", Name: "Anu", Major: "C1"}}

	rep, err := Build(all, ledger, reg, Scope{Kind: KindCourse, CourseID: "C1"}, day(t, "2025-07-01"), day(t, "2025-07-31"))
	if err != nil {
		t.Fatal(err)
	}
	if !rep.Empty() || len(rep.Summary) != 0 {
		t.Fatalf("course report should be empty, got %+v", rep)
	}

	rep, err = Build([]roster.Student{{StudentID: "S1", Name: "Anu", Major: "COM1"}}, ledger, reg, Scope{Kind: KindDepartment, Department: "Computer Science"}, day(t, "2025-07-01"), day(t, "2025-07-31"))
	if err != nil {
		t.Fatal(err)
	}
	want := []SummaryRow{{StudentID: "S1", Name: "Anu", Total: 0, Attended: 0, Percentage: 0}}
	if !reflect.DeepEqual(rep.Summary, want) {
		t.Fatalf("got %+v", rep.Summary)
	}
}

func TestCourseReportSummary(t *testing.T) {
	ledger := attendance.Ledger{
		rec(t, "2025-07-10", "1", "C1", "S1", attendance.Present),
		rec(t, "2025-07-10", "2", "C1", "S1", attendance.Absent),
		rec(t, "2025-07-11", "1", "C1", "S1", attendance.NSS),
		rec(t, "2025-07-10", "1", "C1", "S2", attendance.Club),
		rec(t, "2025-07-10", "1", "C1", "GHOST", attendance.Present),
		rec(t, "2025-07-10", "1", "C2", "S1", attendance.Absent),
		rec(t, "2025-08-01", "1", "C1", "S1", attendance.Absent),
	}
	rep, err := Build(students, ledger, nil, Scope{Kind: KindCourse, CourseID: "C1"}, day(t, "2025-07-01"), day(t, "2025-07-31"))
	if err != nil {
		t.Fatal(err)
	}
	want := []SummaryRow{
		{StudentID: "S1", Name: "Anu", Total: 3, Attended: 2, Percentage: 66.67},
		{StudentID: "S2", Name: "Biju", Total: 1, Attended: 1, Percentage: 100},
	}
	if !reflect.DeepEqual(rep.Summary, want) {
		t.Fatalf("summary = %+v", rep.Summary)
	}
	if len(rep.Detailed) != 4 {
		t.Fatalf("detailed = %+v", rep.Detailed)
	}
	first := rep.Detailed[0]
	if first.Date != "2025-07-10" || first.Hour != "1" || first.StudentID != "S1" || first.Name != "Anu" {
		t.Fatalf("unexpected ordering: %+v", rep.Detailed)
	}
}

func TestDepartmentReportLeftJoinsRoster(t *testing.T) {
	ledger := attendance.Ledger{
		rec(t, "2025-07-10", "1", "C1", "S1", attendance.Absent),
		rec(t, "2025-07-10", "1", "C9", "S1", attendance.Present),
		rec(t, "2025-07-10", "1", "C1", "S3", attendance.Present),
	}
	rep, err := Build(students, ledger, nil, Scope{Kind: KindDepartment, Department: "Computer Science"}, day(t, "2025-07-01"), day(t, "2025-07-31"))
	if err != nil {
		t.Fatal(err)
	}
	want := []SummaryRow{
		{StudentID: "S1", Name: "Anu", Total: 2, Attended: 1, Percentage: 50},
		{StudentID: "S2", Name: "Biju"},
		{StudentID: "S4", Name: "Dev"},
	}
	if !reflect.DeepEqual(rep.Summary, want) {
		t.Fatalf("summary = %+v", rep.Summary)
	}
	for _, d := range rep.Detailed {
		if d.StudentID == "S3" {
			t.Fatal("PHY major leaked into COM department")
		}
	}
}

func TestMalformedDepartmentWarns(t *testing.T) {
	ledger := attendance.Ledger{rec(t, "2025-07-10", "1", "C1", "S1", attendance.Absent)}
	rep, err := Build(students, ledger, nil, Scope{Kind: KindDepartment, Department: ""}, day(t, "2025-07-01"), day(t, "2025-07-31"))
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Warnings) != 1 || !rep.Empty() || len(rep.Summary) != 0 {
		t.Fatalf("got %+v", rep)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	ledger := attendance.Ledger{
		rec(t, "2025-07-12", "3", "C1", "S2", attendance.Absent),
		rec(t, "2025-07-10", "1", "C1", "S1", attendance.NCC),
		rec(t, "2025-07-10", attendance.ExtraHour, "C1", "S1", attendance.Present),
	}
	reg := leave.Add(nil, leave.Interval{StudentID: "S2", Start: day(t, "2025-07-12"), End: day(t, "2025-07-12")})
	scope := Scope{Kind: KindCourse, CourseID: "C1"}
	a, err := Build(students, ledger, reg, scope, day(t, "2025-07-01"), day(t, "2025-07-31"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(students, ledger, reg, scope, day(t, "2025-07-01"), day(t, "2025-07-31"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("reports differ:\n%+v\n%+v", a, b)
	}
	if a.Detailed[1].Hour != attendance.ExtraHour {
		t.Fatalf("extra hour should sort after numbered hours: %+v", a.Detailed)
	}
}

func TestBuildRejectsReversedRange(t *testing.T) {
	_, err := Build(students, nil, nil, Scope{Kind: KindCourse, CourseID: "C1"}, day(t, "2025-07-31"), day(t, "2025-07-01"))
	if !errors.Is(err, ErrBadRange) {
		t.Fatalf("expected ErrBadRange, got %v", err)
	}
}

func TestPercentage(t *testing.T) {
	cases := []struct {
		attended, total int
		want            float64
	}{
		{0, 0, 0},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{7, 7, 100},
	}
	for _, c := range cases {
		if got := Percentage(c.attended, c.total); got != c.want {
			t.Fatalf("Percentage(%d,%d) = %v, want %v", c.attended, c.total, got, c.want)
		}
	}
}

func sampleReport(kind Kind) Report {
	return Report{
		Scope: Scope{Kind: kind},
		Detailed: []DetailRow{
			{Date: "2025-07-10", Hour: "1", StudentID: "S1", Name: "Anu", CourseID: "C1", Status: attendance.Absent},
		},
		Summary: []SummaryRow{{StudentID: "S1", Name: "Anu", Total: 3, Attended: 2, Percentage: 66.67}},
	}
}

func TestCSVExports(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDetailedCSV(&buf, sampleReport(KindCourse)); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(rows[0], ",") != "date,hour,student_id,name,status" || rows[1][4] != "A" {
		t.Fatalf("course detail csv = %v", rows)
	}

	buf.Reset()
	if err := WriteDetailedCSV(&buf, sampleReport(KindDepartment)); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "date,hour,student_id,name,course_id,status\n") {
		t.Fatalf("department detail csv = %q", buf.String())
	}

	buf.Reset()
	if err := WriteSummaryCSV(&buf, sampleReport(KindCourse)); err != nil {
		t.Fatal(err)
	}
	want := "student_id,name,total,attended,percentage\nS1,Anu,3,2,66.67\n"
	if buf.String() != want {
		t.Fatalf("summary csv = %q", buf.String())
	}
}

func TestXLSXExport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleReport(KindDepartment)); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	detailed, err := f.GetRows(DetailedSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(detailed) != 2 || detailed[1][4] != "C1" {
		t.Fatalf("detailed sheet = %v", detailed)
	}
	summary, err := f.GetRows(SummarySheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(summary) != 2 || summary[1][0] != "S1" || summary[1][2] != "3" {
		t.Fatalf("summary sheet = %v", summary)
	}
}
