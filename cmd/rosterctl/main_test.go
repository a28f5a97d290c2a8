package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"fyugp/internal/roster"
	"fyugp/internal/store"
)

func writeWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "students"); err != nil {
		t.Fatal(err)
	}
	rows := [][]interface{}{
		{"student_id", "name", "major_course"},
		{"S1", "Anu", "COM101"},
		{"S2", "Biju", "COM101"},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("students", cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestImportMergesIntoStore(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	t.Setenv("STORE_BACKEND", "csv")
	t.Setenv("DATA_DIR", data)

	seed, err := store.NewCSVStore(data)
	if err != nil {
		t.Fatal(err)
	}
	if err := seed.SaveRoster(context.Background(), &store.Tables{
		Students: []roster.Student{{StudentID: "S1", Name: "Old"}, {StudentID: "S9", Name: "Kept"}},
	}); err != nil {
		t.Fatal(err)
	}

	book := filepath.Join(dir, "roster.xlsx")
	writeWorkbook(t, book)

	out := run(t, "import", "--dry-run", book)
	if !strings.Contains(out, "students 2 -> 3") {
		t.Fatalf("dry run output = %q", out)
	}
	tables, _ := seed.Load(context.Background())
	if tables.Students[0].Name != "Old" {
		t.Fatal("dry run saved changes")
	}

	run(t, "import", book)
	tables, _ = seed.Load(context.Background())
	if len(tables.Students) != 3 || tables.Students[0].Name != "Anu" || tables.Students[1].StudentID != "S9" {
		t.Fatalf("students = %+v", tables.Students)
	}

	run(t, "import", "--replace", book)
	tables, _ = seed.Load(context.Background())
	if len(tables.Students) != 2 {
		t.Fatalf("replace left %+v", tables.Students)
	}

	if out := run(t, "stats"); !strings.Contains(out, "students") {
		t.Fatalf("stats = %q", out)
	}
}
