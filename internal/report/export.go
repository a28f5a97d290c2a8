package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

func detailHeader(k Kind) []string {
	if k == KindDepartment {
		return []string{"date", "hour", "student_id", "name", "course_id", "status"}
	}
	return []string{"date", "hour", "student_id", "name", "status"}
}

func detailRecord(k Kind, d DetailRow) []string {
	if k == KindDepartment {
		return []string{d.Date, d.Hour, d.StudentID, d.Name, d.CourseID, string(d.Status)}
	}
	return []string{d.Date, d.Hour, d.StudentID, d.Name, string(d.Status)}
}

var summaryHeader = []string{"student_id", "name", "total", "attended", "percentage"}

func summaryRecord(s SummaryRow) []string {
	return []string{
		s.StudentID,
		s.Name,
		strconv.Itoa(s.Total),
		strconv.Itoa(s.Attended),
		strconv.FormatFloat(s.Percentage, 'f', 2, 64),
	}
}

// WriteDetailedCSV writes the detailed log. Department reports carry the
// course column; course reports omit it.
func WriteDetailedCSV(w io.Writer, rep Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(detailHeader(rep.Scope.Kind)); err != nil {
		return err
	}
	for _, d := range rep.Detailed {
		if err := cw.Write(detailRecord(rep.Scope.Kind, d)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaryCSV writes one row per student.
func WriteSummaryCSV(w io.Writer, rep Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader); err != nil {
		return err
	}
	for _, s := range rep.Summary {
		if err := cw.Write(summaryRecord(s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Sheet names used in the workbook export.
const (
	DetailedSheet = "Detailed"
	SummarySheet  = "Summary"
)

// WriteXLSX writes both tables into one workbook.
func WriteXLSX(w io.Writer, rep Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DetailedSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	detailed := [][]string{detailHeader(rep.Scope.Kind)}
	for _, d := range rep.Detailed {
		detailed = append(detailed, detailRecord(rep.Scope.Kind, d))
	}
	if err := writeRows(f, DetailedSheet, detailed); err != nil {
		return err
	}

	summary := [][]interface{}{toAny(summaryHeader)}
	for _, s := range rep.Summary {
		summary = append(summary, []interface{}{s.StudentID, s.Name, s.Total, s.Attended, s.Percentage})
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", SummarySheet, i+1, err)
		}
	}
	return f.Write(w)
}

func writeRows(f *excelize.File, sheet string, rows [][]string) error {
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		vals := toAny(row)
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func toAny(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
