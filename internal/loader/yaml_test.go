package loader

import (
	"context"
	"strings"
	"testing"

	"evalvault/internal/domain"
	"evalvault/internal/repository/sqlite"
)

const sampleSeed = `
version: 1
users:
  - username: alice
    password: pw
    nickname: Ally
    full_name: Alice Liddell
  - username: bob
    password: pw
    nickname: Bob
queries:
  - lazy_query: find X
    detail_query: find X in the Y corpus
    creator: alice
    priority: 2
  - lazy_query: find Z
evaluations:
  - query: 1
    agent: researcher-1
    evaluator: bob
    quality_score: 85
    report: looks solid
    deliverables:
      - filename: a.txt
        content: hello
      - filename: b.txt
        content: world
`

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestParse(t *testing.T) {
	seed, err := Parse(strings.NewReader(sampleSeed))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if len(seed.Users) != 2 {
		t.Errorf("Users = %d, want 2", len(seed.Users))
	}
	if len(seed.Queries) != 2 {
		t.Errorf("Queries = %d, want 2", len(seed.Queries))
	}
	if len(seed.Evaluations) != 1 {
		t.Errorf("Evaluations = %d, want 1", len(seed.Evaluations))
	}
	if seed.Queries[0].Priority == nil || *seed.Queries[0].Priority != 2 {
		t.Errorf("Priority = %v, want 2", seed.Queries[0].Priority)
	}
	if len(seed.Evaluations[0].Deliverables) != 2 {
		t.Errorf("Deliverables = %d, want 2", len(seed.Evaluations[0].Deliverables))
	}
}

func TestParseRejectsBadReferences(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "query index out of range",
			yaml: "queries:\n  - lazy_query: q\nevaluations:\n  - query: 5\n",
		},
		{
			name: "query index zero",
			yaml: "queries:\n  - lazy_query: q\nevaluations:\n  - query: 0\n",
		},
		{
			name: "user missing password",
			yaml: "users:\n  - username: u\n    nickname: n\n",
		},
		{
			name: "deliverable missing filename",
			yaml: "queries:\n  - lazy_query: q\nevaluations:\n  - query: 1\n    deliverables:\n      - content: x\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.yaml)); err == nil {
				t.Error("Parse() should reject invalid seed")
			}
		})
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	users := sqlite.NewUsers(store)
	queries := sqlite.NewQueries(store)
	evals := sqlite.NewEvaluations(store)

	seed, err := Parse(strings.NewReader(sampleSeed))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	result, err := Apply(ctx, seed, users, queries, evals)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if result.Users != 2 || result.Queries != 2 || result.Evaluations != 1 || result.Files != 2 {
		t.Errorf("Result = %+v, want 2 users, 2 queries, 1 evaluation, 2 files", result)
	}

	// Creator reference resolved to alice's id
	alice, err := users.GetByUsername(ctx, "alice")
	if err != nil || alice == nil {
		t.Fatalf("seeded user missing: %v", err)
	}
	byAlice, err := queries.GetByCreator(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetByCreator() error: %v", err)
	}
	if len(byAlice) != 1 {
		t.Fatalf("queries by alice = %d, want 1", len(byAlice))
	}

	// Evaluation landed on the first query with its deliverables
	evalsForQuery, err := evals.GetByQuery(ctx, byAlice[0].ID)
	if err != nil {
		t.Fatalf("GetByQuery() error: %v", err)
	}
	if len(evalsForQuery) != 1 {
		t.Fatalf("evaluations = %d, want 1", len(evalsForQuery))
	}
	files, err := sqlite.NewFiles(store).GetByEvaluation(ctx, evalsForQuery[0].ID)
	if err != nil {
		t.Fatalf("GetByEvaluation() error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %d, want 2", len(files))
	}
	for _, f := range files {
		if f.FileType != domain.FileTypeDeliverable {
			t.Errorf("FileType = %s, want deliverable", f.FileType)
		}
	}
}

func TestApplyUnknownEvaluator(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	seed, err := Parse(strings.NewReader(
		"queries:\n  - lazy_query: q\nevaluations:\n  - query: 1\n    evaluator: ghost\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	_, err = Apply(ctx, seed,
		sqlite.NewUsers(store), sqlite.NewQueries(store), sqlite.NewEvaluations(store))
	if err == nil {
		t.Fatal("Apply() should fail for an unknown evaluator username")
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error should name the unknown user: %v", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile("/nonexistent/seed.yaml"); err == nil {
		t.Error("LoadFile() should fail for a missing file")
	}
}
