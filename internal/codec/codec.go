// Package codec handles snapshot import/export of the vault in portable
// formats. A snapshot captures every entity with its original ids so a
// restore into an empty store can rebuild the reference graph.
package codec

import (
	"context"
	"fmt"
	"io"
	"time"

	"evalvault/internal/domain"
	"evalvault/internal/repository"
)

// Importer interface for importing snapshot data from various formats
type Importer interface {
	Parse(r io.Reader) (*Snapshot, error)
	Format() string
}

// Exporter interface for exporting snapshot data to various formats
type Exporter interface {
	Export(snapshot *Snapshot, w io.Writer) error
	Format() string
}

// Codec combines both directions of one format.
type Codec interface {
	Importer
	Exporter
}

// ByFormat returns the codec for a format name.
func ByFormat(format string) (Codec, error) {
	switch format {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}

// Snapshot is the portable representation of the whole vault.
type Snapshot struct {
	Version     int                `json:"version" yaml:"version"`
	TakenAt     time.Time          `json:"taken_at" yaml:"taken_at"`
	Users       []UserRecord       `json:"users" yaml:"users"`
	Queries     []QueryRecord      `json:"queries" yaml:"queries"`
	Evaluations []EvaluationRecord `json:"evaluations" yaml:"evaluations"`
	Files       []FileRecord       `json:"files" yaml:"files"`
}

// UserRecord is one user row in a snapshot.
type UserRecord struct {
	ID       int64  `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Nickname string `json:"nickname" yaml:"nickname"`
	FullName string `json:"full_name,omitempty" yaml:"full_name,omitempty"`
}

// QueryRecord is one query row in a snapshot.
type QueryRecord struct {
	ID          int64  `json:"id" yaml:"id"`
	LazyQuery   string `json:"lazy_query,omitempty" yaml:"lazy_query,omitempty"`
	DetailQuery string `json:"detail_query,omitempty" yaml:"detail_query,omitempty"`
	CreatorID   *int64 `json:"creator_id,omitempty" yaml:"creator_id,omitempty"`
	Priority    *int   `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// EvaluationRecord is one evaluation row in a snapshot.
type EvaluationRecord struct {
	ID            int64  `json:"id" yaml:"id"`
	QueryID       int64  `json:"query_id" yaml:"query_id"`
	Agent         string `json:"agent,omitempty" yaml:"agent,omitempty"`
	EvaluatorID   *int64 `json:"evaluator_id,omitempty" yaml:"evaluator_id,omitempty"`
	QualityScore  *int   `json:"quality_score,omitempty" yaml:"quality_score,omitempty"`
	Trajectory    string `json:"trajectory,omitempty" yaml:"trajectory,omitempty"`
	ReportContent string `json:"report_content,omitempty" yaml:"report_content,omitempty"`
}

// FileRecord is one file row in a snapshot. Content travels base64-encoded
// in both JSON and YAML.
type FileRecord struct {
	ID           int64  `json:"id" yaml:"id"`
	EvaluationID int64  `json:"evaluation_id" yaml:"evaluation_id"`
	Filename     string `json:"filename" yaml:"filename"`
	Content      []byte `json:"content,omitempty" yaml:"content,omitempty"`
	FileType     string `json:"file_type" yaml:"file_type"`
	FileSize     *int64 `json:"file_size,omitempty" yaml:"file_size,omitempty"`
}

// Collect reads every entity into a snapshot.
func Collect(ctx context.Context, users repository.Users, queries repository.Queries,
	evals repository.Evaluations, files repository.Files) (*Snapshot, error) {

	snapshot := &Snapshot{Version: 1, TakenAt: time.Now()}

	allUsers, err := users.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect users: %w", err)
	}
	for _, u := range allUsers {
		snapshot.Users = append(snapshot.Users, UserRecord{
			ID: u.ID, Username: u.Username, Password: u.Password,
			Nickname: u.Nickname, FullName: u.FullName,
		})
	}

	allQueries, err := queries.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect queries: %w", err)
	}
	for _, q := range allQueries {
		snapshot.Queries = append(snapshot.Queries, QueryRecord{
			ID: q.ID, LazyQuery: q.LazyQuery, DetailQuery: q.DetailQuery,
			CreatorID: q.CreatorID, Priority: q.Priority,
		})
	}

	allEvals, err := evals.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect evaluations: %w", err)
	}
	for _, e := range allEvals {
		snapshot.Evaluations = append(snapshot.Evaluations, EvaluationRecord{
			ID: e.ID, QueryID: e.QueryID, Agent: e.Agent,
			EvaluatorID: e.EvaluatorID, QualityScore: e.QualityScore,
			Trajectory: e.Trajectory, ReportContent: e.ReportContent,
		})
	}

	allFiles, err := files.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect files: %w", err)
	}
	for _, f := range allFiles {
		snapshot.Files = append(snapshot.Files, FileRecord{
			ID: f.ID, EvaluationID: f.EvaluationID, Filename: f.Filename,
			Content: f.Content, FileType: string(f.FileType), FileSize: f.FileSize,
		})
	}

	return snapshot, nil
}

// Restore writes a snapshot into the store. New ids are assigned on insert;
// references between records are remapped from the snapshot's ids to the
// newly assigned ones.
func Restore(ctx context.Context, snapshot *Snapshot, users repository.Users,
	queries repository.Queries, evals repository.Evaluations, files repository.Files) error {

	userIDs := make(map[int64]int64, len(snapshot.Users))
	for _, u := range snapshot.Users {
		id, err := users.Add(ctx, u.Username, u.Password, u.Nickname, u.FullName)
		if err != nil {
			return fmt.Errorf("restore user %q: %w", u.Username, err)
		}
		userIDs[u.ID] = id
	}

	queryIDs := make(map[int64]int64, len(snapshot.Queries))
	for _, q := range snapshot.Queries {
		creator := remap(userIDs, q.CreatorID)
		id, err := queries.Add(ctx, q.LazyQuery, q.DetailQuery, creator, q.Priority)
		if err != nil {
			return fmt.Errorf("restore query %d: %w", q.ID, err)
		}
		queryIDs[q.ID] = id
	}

	evalIDs := make(map[int64]int64, len(snapshot.Evaluations))
	for _, e := range snapshot.Evaluations {
		queryID, ok := queryIDs[e.QueryID]
		if !ok {
			return fmt.Errorf("restore evaluation %d: query %d not in snapshot", e.ID, e.QueryID)
		}
		id, err := evals.Add(ctx, &domain.Evaluation{
			QueryID:       queryID,
			Agent:         e.Agent,
			EvaluatorID:   remap(userIDs, e.EvaluatorID),
			QualityScore:  e.QualityScore,
			Trajectory:    e.Trajectory,
			ReportContent: e.ReportContent,
		})
		if err != nil {
			return fmt.Errorf("restore evaluation %d: %w", e.ID, err)
		}
		evalIDs[e.ID] = id
	}

	for _, f := range snapshot.Files {
		evalID, ok := evalIDs[f.EvaluationID]
		if !ok {
			return fmt.Errorf("restore file %d: evaluation %d not in snapshot", f.ID, f.EvaluationID)
		}
		_, err := files.Add(ctx, &domain.File{
			EvaluationID: evalID,
			Filename:     f.Filename,
			Content:      f.Content,
			FileType:     domain.FileType(f.FileType),
			FileSize:     f.FileSize,
		})
		if err != nil {
			return fmt.Errorf("restore file %q: %w", f.Filename, err)
		}
	}

	return nil
}

// remap translates a snapshot id through the assignment map. Unknown or nil
// references come back nil; a user reference outside the snapshot is kept as
// a dangling reference would be on direct insert.
func remap(ids map[int64]int64, old *int64) *int64 {
	if old == nil {
		return nil
	}
	if mapped, ok := ids[*old]; ok {
		return &mapped
	}
	return old
}
