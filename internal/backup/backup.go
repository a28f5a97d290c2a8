// Package backup writes point-in-time workbook copies of every table.
package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"fyugp/internal/store"
)

// Snapshot writes dir/snapshot-YYYYMMDD-HHMMSS.xlsx with one sheet per
// table and returns its path.
func Snapshot(tables *store.Tables, dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range store.AllRows(tables) {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.Name); err != nil {
				return "", err
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return "", err
		}
		if err := writeSheet(f, t); err != nil {
			return "", err
		}
	}

	path := filepath.Join(dir, "snapshot-"+now.UTC().Format("20060102-150405")+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}
	return path, nil
}

func writeSheet(f *excelize.File, t store.NamedRows) error {
	rows := append([][]string{t.Columns}, t.Rows...)
	for i, row := range rows {
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(t.Name, cell, &vals); err != nil {
			return fmt.Errorf("write %s row %d: %w", t.Name, i+1, err)
		}
	}
	return nil
}

// Prune keeps the newest keep snapshots in dir and removes the rest.
func Prune(dir string, keep int) error {
	matches, err := filepath.Glob(filepath.Join(dir, "snapshot-*.xlsx"))
	if err != nil {
		return err
	}
	// names sort chronologically
	for i := 0; i < len(matches)-keep; i++ {
		if err := os.Remove(matches[i]); err != nil {
			return err
		}
	}
	return nil
}
