// Package loader imports human-authored YAML seed files into the store.
// Seed files describe users, queries, and evaluations with their
// deliverables; cross references use usernames and list positions instead
// of database ids so the files stay writable by hand.
package loader

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"evalvault/internal/domain"
	"evalvault/internal/repository"
)

// SeedYAML represents the seed file structure
type SeedYAML struct {
	Version     int                  `yaml:"version"`
	Users       []SeedUserYAML       `yaml:"users,omitempty"`
	Queries     []SeedQueryYAML      `yaml:"queries,omitempty"`
	Evaluations []SeedEvaluationYAML `yaml:"evaluations,omitempty"`
}

// SeedUserYAML represents a user in a seed file
type SeedUserYAML struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Nickname string `yaml:"nickname"`
	FullName string `yaml:"full_name,omitempty"`
}

// SeedQueryYAML represents a query in a seed file. Creator refers to a
// username defined in the same file or already present in the store.
type SeedQueryYAML struct {
	LazyQuery   string `yaml:"lazy_query,omitempty"`
	DetailQuery string `yaml:"detail_query,omitempty"`
	Creator     string `yaml:"creator,omitempty"`
	Priority    *int   `yaml:"priority,omitempty"`
}

// SeedEvaluationYAML represents an evaluation in a seed file. Query is the
// 1-based position of the target query in the file's queries list.
type SeedEvaluationYAML struct {
	Query        int                   `yaml:"query"`
	Agent        string                `yaml:"agent,omitempty"`
	Evaluator    string                `yaml:"evaluator,omitempty"`
	QualityScore *int                  `yaml:"quality_score,omitempty"`
	Trajectory   string                `yaml:"trajectory,omitempty"`
	Report       string                `yaml:"report,omitempty"`
	Deliverables []SeedDeliverableYAML `yaml:"deliverables,omitempty"`
}

// SeedDeliverableYAML represents a deliverable attached to a seeded
// evaluation
type SeedDeliverableYAML struct {
	Filename string `yaml:"filename"`
	Content  string `yaml:"content"`
}

// Result counts what a seed application created.
type Result struct {
	Users       int
	Queries     int
	Evaluations int
	Files       int
}

// LoadFile reads and validates a seed file from disk
func LoadFile(path string) (*SeedYAML, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads and validates seed data from r
func Parse(r io.Reader) (*SeedYAML, error) {
	var seed SeedYAML
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&seed); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := seed.Validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

// Validate checks the seed's internal references before anything is written.
func (s *SeedYAML) Validate() error {
	for i, u := range s.Users {
		if u.Username == "" || u.Password == "" || u.Nickname == "" {
			return fmt.Errorf("user %d: username, password and nickname are required", i+1)
		}
	}

	for i, e := range s.Evaluations {
		if e.Query < 1 || e.Query > len(s.Queries) {
			return fmt.Errorf("evaluation %d: query %d out of range (file has %d queries)",
				i+1, e.Query, len(s.Queries))
		}
		for j, d := range e.Deliverables {
			if d.Filename == "" {
				return fmt.Errorf("evaluation %d: deliverable %d: filename is required", i+1, j+1)
			}
		}
	}
	return nil
}

// Apply writes the seed into the store. Users come first so queries and
// evaluations can resolve usernames; evaluations go last with their
// deliverables attached in one write each.
func Apply(ctx context.Context, seed *SeedYAML, users repository.Users,
	queries repository.Queries, evals repository.Evaluations) (*Result, error) {

	result := &Result{}

	for _, u := range seed.Users {
		if _, err := users.Add(ctx, u.Username, u.Password, u.Nickname, u.FullName); err != nil {
			return result, fmt.Errorf("seed user %q: %w", u.Username, err)
		}
		result.Users++
	}

	resolve := func(username string) (*int64, error) {
		if username == "" {
			return nil, nil
		}
		user, err := users.GetByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, fmt.Errorf("unknown user %q", username)
		}
		return &user.ID, nil
	}

	queryIDs := make([]int64, 0, len(seed.Queries))
	for i, q := range seed.Queries {
		creator, err := resolve(q.Creator)
		if err != nil {
			return result, fmt.Errorf("seed query %d: %w", i+1, err)
		}
		id, err := queries.Add(ctx, q.LazyQuery, q.DetailQuery, creator, q.Priority)
		if err != nil {
			return result, fmt.Errorf("seed query %d: %w", i+1, err)
		}
		queryIDs = append(queryIDs, id)
		result.Queries++
	}

	for i, e := range seed.Evaluations {
		evaluator, err := resolve(e.Evaluator)
		if err != nil {
			return result, fmt.Errorf("seed evaluation %d: %w", i+1, err)
		}

		deliverables := make([]domain.Deliverable, 0, len(e.Deliverables))
		for _, d := range e.Deliverables {
			deliverables = append(deliverables, domain.Deliverable{
				Filename: d.Filename,
				Content:  []byte(d.Content),
			})
		}

		_, err = evals.AddWithDeliverables(ctx, &domain.Evaluation{
			QueryID:       queryIDs[e.Query-1],
			Agent:         e.Agent,
			EvaluatorID:   evaluator,
			QualityScore:  e.QualityScore,
			Trajectory:    e.Trajectory,
			ReportContent: e.Report,
		}, deliverables)
		if err != nil {
			return result, fmt.Errorf("seed evaluation %d: %w", i+1, err)
		}
		result.Evaluations++
		result.Files += len(deliverables)
	}

	return result, nil
}
