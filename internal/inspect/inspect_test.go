package inspect

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"evalvault/internal/domain"
	"evalvault/internal/repository/sqlite"
)

func newTestSetup(t *testing.T) (*bytes.Buffer, *sqlite.Store, *Reporter) {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	var buf bytes.Buffer
	return &buf, store, New(&buf, store)
}

func TestDatabase(t *testing.T) {
	ctx := context.Background()

	t.Run("reports missing file and counts", func(t *testing.T) {
		buf, _, reporter := newTestSetup(t)

		err := reporter.Database(ctx, "/nonexistent/evalvault.db", sqlite.Tables())
		if err != nil {
			t.Fatalf("Database() error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "file does not exist") {
			t.Errorf("output should mention missing file:\n%s", out)
		}
		for _, table := range sqlite.Tables() {
			if !strings.Contains(out, table) {
				t.Errorf("output should list table %q:\n%s", table, out)
			}
		}
	})

	t.Run("reports file size for an on-disk store", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "evalvault.db")
		store, err := sqlite.Open(path)
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		defer store.Close()

		var buf bytes.Buffer
		reporter := New(&buf, store)
		if err := reporter.Database(ctx, path, sqlite.Tables()); err != nil {
			t.Fatalf("Database() error: %v", err)
		}
		if !strings.Contains(buf.String(), "Size:") {
			t.Errorf("output should report file size:\n%s", buf.String())
		}
	})
}

func TestStructure(t *testing.T) {
	ctx := context.Background()
	buf, _, reporter := newTestSetup(t)

	if err := reporter.Structure(ctx, "user_form"); err != nil {
		t.Fatalf("Structure() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"user_form", "username", "created_at", "PK"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := reporter.Structure(ctx, "no_such_table"); err != nil {
		t.Fatalf("Structure() error: %v", err)
	}
	if !strings.Contains(buf.String(), "does not exist") {
		t.Errorf("output should report a missing table:\n%s", buf.String())
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	buf, store, reporter := newTestSetup(t)

	users := sqlite.NewUsers(store)
	if _, err := users.Add(ctx, "alice", "hunter2", "Ally", "Alice Liddell"); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	if err := reporter.Users(ctx, users); err != nil {
		t.Fatalf("Users() error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "alice") {
		t.Errorf("output should list the user:\n%s", out)
	}
	if strings.Contains(out, "hunter2") {
		t.Errorf("output must not leak passwords:\n%s", out)
	}
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	buf, store, reporter := newTestSetup(t)

	queries := sqlite.NewQueries(store)
	long := strings.Repeat("x", 100)
	if _, err := queries.Add(ctx, long, "", nil, nil); err != nil {
		t.Fatalf("seed query: %v", err)
	}

	if err := reporter.Queries(ctx, queries); err != nil {
		t.Fatalf("Queries() error: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, long) {
		t.Errorf("long query text should be truncated:\n%s", out)
	}
	if !strings.Contains(out, "...") {
		t.Errorf("truncated text should carry an ellipsis:\n%s", out)
	}
}

func TestEvaluationsAndFiles(t *testing.T) {
	ctx := context.Background()
	buf, store, reporter := newTestSetup(t)

	queryID, err := sqlite.NewQueries(store).Add(ctx, "q", "", nil, nil)
	if err != nil {
		t.Fatalf("seed query: %v", err)
	}
	evals := sqlite.NewEvaluations(store)
	_, err = evals.AddWithDeliverables(ctx,
		&domain.Evaluation{QueryID: queryID, Agent: "researcher-1"},
		[]domain.Deliverable{{Filename: "out.txt", Content: []byte("payload")}})
	if err != nil {
		t.Fatalf("seed evaluation: %v", err)
	}

	if err := reporter.Evaluations(ctx, evals); err != nil {
		t.Fatalf("Evaluations() error: %v", err)
	}
	if !strings.Contains(buf.String(), "researcher-1") {
		t.Errorf("output should list the evaluation:\n%s", buf.String())
	}

	buf.Reset()
	if err := reporter.Files(ctx, sqlite.NewFiles(store)); err != nil {
		t.Fatalf("Files() error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "out.txt") {
		t.Errorf("output should list the file:\n%s", out)
	}
	if strings.Contains(out, "payload") {
		t.Errorf("output must not dump file content:\n%s", out)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{3 << 20, "3.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.n); got != tt.want {
			t.Errorf("formatSize(%d) = %s, want %s", tt.n, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short, 10) = %q", got)
	}
	if got := truncate("abcdefghij", 6); got != "abc..." {
		t.Errorf("truncate = %q, want abc...", got)
	}
}
