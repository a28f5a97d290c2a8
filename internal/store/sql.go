package store

import (
	"context"
	"fmt"
	"strings"

	"fyugp/internal/attendance"
	"fyugp/internal/leave"
)

// SQLStore keeps the same five tables in Postgres or SQLite. Every column is
// text and "ord" preserves file order, since leave rows are addressed by
// position.
type SQLStore struct {
	db *DB
}

// NewSQLStore creates the tables if they do not exist.
func NewSQLStore(ctx context.Context, db *DB) (*SQLStore, error) {
	s := &SQLStore{db: db}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func quote(ident string) string { return `"` + ident + `"` }

func (s *SQLStore) migrate(ctx context.Context) error {
	for table, cols := range columnsByTable {
		defs := []string{`"ord" INTEGER NOT NULL`}
		for _, c := range cols {
			defs = append(defs, quote(c)+` TEXT NOT NULL DEFAULT ''`)
		}
		stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (%s)`, quote(table), strings.Join(defs, ", "))
		if _, err := s.db.Client.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create %s: %w", table, err)
		}
	}
	return nil
}

// Load reads every table ordered by position.
func (s *SQLStore) Load(ctx context.Context) (*Tables, error) {
	raw := map[string][]Row{}
	for table, cols := range columnsByTable {
		rows, err := s.selectAll(ctx, table, cols)
		if err != nil {
			return nil, err
		}
		raw[table] = rows
	}
	return decode(raw)
}

func (s *SQLStore) selectAll(ctx context.Context, table string, cols []string) ([]Row, error) {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quote(c)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY "ord"`, strings.Join(quoted, ", "), quote(table))
	rows, err := s.db.Client.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		vals := make([]string, len(cols))
		dest := make([]any, len(cols))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// replace swaps the table contents inside one transaction.
func (s *SQLStore) replace(ctx context.Context, table string, rows [][]string) error {
	cols := columnsByTable[table]
	tx, err := s.db.Client.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+quote(table)); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}

	names := []string{`"ord"`}
	params := []string{"$1"}
	for i, c := range cols {
		names = append(names, quote(c))
		params = append(params, "$"+itoa(i+2))
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quote(table), strings.Join(names, ", "), strings.Join(params, ", ")))
	if err != nil {
		return fmt.Errorf("prepare %s: %w", table, err)
	}
	defer stmt.Close()

	for ord, row := range rows {
		args := make([]any, 0, len(cols)+1)
		args = append(args, ord)
		for i := range cols {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			args = append(args, v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s row %d: %w", table, ord+1, err)
		}
	}
	return tx.Commit()
}

// SaveAttendance replaces the attendance table.
func (s *SQLStore) SaveAttendance(ctx context.Context, l attendance.Ledger) error {
	return s.replace(ctx, AttendanceTable, attendanceRows(l))
}

// SaveLeave replaces the leave register.
func (s *SQLStore) SaveLeave(ctx context.Context, r leave.Register) error {
	return s.replace(ctx, LeaveTable, leaveRows(r))
}

// SaveRoster replaces the three roster tables.
func (s *SQLStore) SaveRoster(ctx context.Context, t *Tables) error {
	rr := RosterRows(t)
	for _, table := range []string{StudentsTable, CoursesTable, TeachersTable} {
		if err := s.replace(ctx, table, rr[table]); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLStore) Close() error { return s.db.Close() }

// Ping is used by the health probe.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.Client.PingContext(ctx)
}

func itoa(i int) string { return fmt.Sprintf("%d", i) }

var _ Store = (*SQLStore)(nil)
var _ Store = (*CSVStore)(nil)
