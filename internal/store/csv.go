package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fyugp/internal/attendance"
	"fyugp/internal/leave"
)

// CSVStore keeps each table in <dir>/<table>.csv with a header row.
type CSVStore struct {
	dir string
}

// NewCSVStore creates dir if needed.
func NewCSVStore(dir string) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &CSVStore{dir: dir}, nil
}

func (s *CSVStore) path(table string) string {
	return filepath.Join(s.dir, table+".csv")
}

// Load reads every table. A missing file is an empty table.
func (s *CSVStore) Load(ctx context.Context) (*Tables, error) {
	raw := map[string][]Row{}
	for table := range columnsByTable {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := s.readTable(table)
		if err != nil {
			return nil, err
		}
		raw[table] = rows
	}
	return decode(raw)
}

func (s *CSVStore) readTable(table string) ([]Row, error) {
	f, err := os.Open(s.path(table))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", table, err)
	}
	defer f.Close()
	rows, err := ReadRows(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	return rows, nil
}

// ReadRows parses a headed CSV stream into rows keyed by column name.
// Rows may be shorter or longer than the header.
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
}

// SaveAttendance rewrites the attendance file.
func (s *CSVStore) SaveAttendance(_ context.Context, l attendance.Ledger) error {
	return s.writeTable(AttendanceTable, attendanceRows(l))
}

// SaveLeave rewrites the leave register file.
func (s *CSVStore) SaveLeave(_ context.Context, r leave.Register) error {
	return s.writeTable(LeaveTable, leaveRows(r))
}

// SaveRoster rewrites the students, courses and teachers files.
func (s *CSVStore) SaveRoster(_ context.Context, t *Tables) error {
	rr := RosterRows(t)
	for _, table := range []string{StudentsTable, CoursesTable, TeachersTable} {
		if err := s.writeTable(table, rr[table]); err != nil {
			return err
		}
	}
	return nil
}

// writeTable replaces the whole file through a temp file in the same dir.
func (s *CSVStore) writeTable(table string, rows [][]string) error {
	tmp, err := os.CreateTemp(s.dir, table+"-*.csv")
	if err != nil {
		return fmt.Errorf("write %s: %w", table, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(columnsByTable[table]); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", table, err)
	}
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", table, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", table, err)
	}
	return os.Rename(tmp.Name(), s.path(table))
}

// Close is a no-op; files are closed after every operation.
func (s *CSVStore) Close() error { return nil }
