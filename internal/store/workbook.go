package store

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"

	"fyugp/internal/roster"
)

var ErrNoRosterSheets = errors.New("workbook has no students, courses or teachers sheet")

// ImportWorkbook reads roster tables from an xlsx stream. Sheets are matched
// by table name, case-insensitively; the first row of each is the header.
// Rows without a key are skipped.
func ImportWorkbook(r io.Reader) (*Tables, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("close workbook: %v", err)
		}
	}()

	raw := map[string][]Row{}
	for _, sheet := range f.GetSheetList() {
		table := strings.ToLower(strings.TrimSpace(sheet))
		if table != StudentsTable && table != CoursesTable && table != TeachersTable {
			continue
		}
		grid, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		raw[table] = gridRows(grid, keyColumn[table])
	}
	if len(raw) == 0 {
		return nil, ErrNoRosterSheets
	}
	return decode(raw)
}

var keyColumn = map[string]string{
	StudentsTable: "student_id",
	CoursesTable:  "course_id",
	TeachersTable: "teacher_id",
}

func gridRows(grid [][]string, key string) []Row {
	if len(grid) == 0 {
		return nil
	}
	header := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	var out []Row
	for i, cells := range grid[1:] {
		row := make(Row, len(header))
		for j, col := range header {
			if j < len(cells) {
				row[col] = cells[j]
			}
		}
		if row.get(key) == "" {
			log.Printf("skipping row %d: missing %s", i+2, key)
			continue
		}
		out = append(out, row)
	}
	return out
}

// MergeRoster overlays imported roster rows onto current ones. Rows with a
// known key are replaced in place, new keys are appended.
func MergeRoster(current, imported *Tables) *Tables {
	out := *current
	out.Students = mergeBy(current.Students, imported.Students, func(s roster.Student) string { return s.StudentID })
	out.Courses = mergeBy(current.Courses, imported.Courses, func(c roster.Course) string { return c.CourseID })
	out.Teachers = mergeBy(current.Teachers, imported.Teachers, func(t roster.Teacher) string { return t.TeacherID })
	return &out
}

func mergeBy[T any](current, incoming []T, key func(T) string) []T {
	out := append([]T(nil), current...)
	pos := make(map[string]int, len(out))
	for i, v := range out {
		pos[key(v)] = i
	}
	for _, v := range incoming {
		if i, ok := pos[key(v)]; ok {
			out[i] = v
			continue
		}
		pos[key(v)] = len(out)
		out = append(out, v)
	}
	return out
}
