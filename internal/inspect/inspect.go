// Package inspect renders human-readable views of the store: database
// summary, table structures, and per-entity listings. Output goes to an
// injected writer so callers can target a terminal, a log, or a buffer.
package inspect

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"evalvault/internal/repository"
)

// Reporter writes formatted views of the store to w.
type Reporter struct {
	w         io.Writer
	inspector repository.Inspector
}

// New creates a Reporter writing to w and introspecting via inspector.
func New(w io.Writer, inspector repository.Inspector) *Reporter {
	return &Reporter{w: w, inspector: inspector}
}

// Database prints the database file info followed by a row count per table.
// A missing database file is reported, not treated as an error.
func (r *Reporter) Database(ctx context.Context, path string, tables []string) error {
	fmt.Fprintf(r.w, "Database: %s\n", path)

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		fmt.Fprintln(r.w, "  (file does not exist)")
	case err != nil:
		return fmt.Errorf("stat database: %w", err)
	default:
		fmt.Fprintf(r.w, "  Size: %s, Modified: %s\n",
			formatSize(info.Size()), info.ModTime().Format("2006-01-02 15:04:05"))
	}

	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tROWS")
	for _, table := range tables {
		count, err := r.inspector.Count(ctx, table)
		if err != nil {
			return fmt.Errorf("count %s: %w", table, err)
		}
		fmt.Fprintf(tw, "%s\t%d\n", table, count)
	}
	return tw.Flush()
}

// Structure prints the column layout and row count of one table. A table
// that does not exist is reported by name.
func (r *Reporter) Structure(ctx context.Context, table string) error {
	structure, err := r.inspector.Structure(ctx, table)
	if err != nil {
		return err
	}
	if structure == nil {
		fmt.Fprintf(r.w, "Table %q does not exist\n", table)
		return nil
	}

	fmt.Fprintf(r.w, "Table: %s (%d rows)\n", structure.Table, structure.RowCount)

	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tNULL\tDEFAULT\tKEY")
	for _, col := range structure.Columns {
		null := "yes"
		if col.NotNull {
			null = "no"
		}
		key := ""
		if col.PrimaryKey {
			key = "PK"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", col.Name, col.Type, null, col.Default, key)
	}
	return tw.Flush()
}

// Users prints every user row. Passwords are not shown.
func (r *Reporter) Users(ctx context.Context, repo repository.Users) error {
	users, err := repo.ListAll(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tNICKNAME\tFULL NAME\tCREATED\tUPDATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Username, u.Nickname, u.FullName,
			formatTime(u.CreatedAt), formatTimePtr(u.UpdatedAt))
	}
	return tw.Flush()
}

// Queries prints every query row with long text truncated.
func (r *Reporter) Queries(ctx context.Context, repo repository.Queries) error {
	queries, err := repo.ListAll(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLAZY QUERY\tCREATOR\tPRIORITY\tCREATED")
	for _, q := range queries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			q.ID, truncate(q.LazyQuery, 40),
			formatInt64Ptr(q.CreatorID), formatIntPtr(q.Priority),
			formatTime(q.CreatedAt))
	}
	return tw.Flush()
}

// Evaluations prints every evaluation row with long text truncated.
func (r *Reporter) Evaluations(ctx context.Context, repo repository.Evaluations) error {
	evals, err := repo.ListAll(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tQUERY\tAGENT\tEVALUATOR\tSCORE\tCREATED")
	for _, e := range evals {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
			e.ID, e.QueryID, truncate(e.Agent, 30),
			formatInt64Ptr(e.EvaluatorID), formatIntPtr(e.QualityScore),
			formatTime(e.CreatedAt))
	}
	return tw.Flush()
}

// Files prints every file row. Content is summarized by size, never dumped.
func (r *Reporter) Files(ctx context.Context, repo repository.Files) error {
	files, err := repo.ListAll(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEVALUATION\tFILENAME\tTYPE\tSIZE\tCREATED")
	for _, f := range files {
		size := formatSize(int64(len(f.Content)))
		if f.FileSize != nil {
			size = formatSize(*f.FileSize)
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
			f.ID, f.EvaluationID, truncate(f.Filename, 40),
			f.FileType, size, formatTime(f.CreatedAt))
	}
	return tw.Flush()
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatTime(*t)
}

func formatInt64Ptr(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
