package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fyugp/internal/backup"
	"fyugp/internal/config"
	"fyugp/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "rosterctl",
		Short:        "Maintain the student, course and teacher tables",
		SilenceUsage: true,
	}
	root.AddCommand(newImportCmd(), newSnapshotCmd(), newStatsCmd())
	return root
}

func openStore(ctx context.Context) (store.Store, config.App, error) {
	cfg := config.Load()
	st, err := store.Open(ctx, cfg)
	return st, cfg, err
}

func newImportCmd() *cobra.Command {
	var replace, dryRun bool
	cmd := &cobra.Command{
		Use:   "import <workbook.xlsx>",
		Short: "Merge students, courses and teachers sheets into the roster",
		Long: "Rows are matched on their id column. Matching rows are replaced, new rows appended. " +
			"With --replace each imported sheet replaces its table outright.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			imported, err := store.ImportWorkbook(f)
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			st, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			current, err := st.Load(ctx)
			if err != nil {
				return err
			}

			next := store.MergeRoster(current, imported)
			if replace {
				next = replaceRoster(current, imported)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "students %d -> %d, courses %d -> %d, teachers %d -> %d\n",
				len(current.Students), len(next.Students),
				len(current.Courses), len(next.Courses),
				len(current.Teachers), len(next.Teachers))
			if dryRun {
				return nil
			}
			if err := st.SaveRoster(ctx, next); err != nil {
				return err
			}
			log.Printf("roster imported from %s", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "replace tables present in the workbook instead of merging")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report the changes without saving")
	return cmd
}

// replaceRoster swaps in every roster table the workbook carried.
func replaceRoster(current, imported *store.Tables) *store.Tables {
	next := *current
	if len(imported.Students) > 0 {
		next.Students = imported.Students
	}
	if len(imported.Courses) > 0 {
		next.Courses = imported.Courses
	}
	if len(imported.Teachers) > 0 {
		next.Teachers = imported.Teachers
	}
	return &next
}

func newSnapshotCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write a workbook copy of every table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, cfg, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			tables, err := st.Load(ctx)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.BackupDir
			}
			path, err := backup.Snapshot(tables, dir, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default BACKUP_DIR)")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print row counts for every table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, _, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			tables, err := st.Load(ctx)
			if err != nil {
				return err
			}
			for _, t := range store.AllRows(tables) {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %d\n", t.Name, len(t.Rows))
			}
			return nil
		},
	}
}
