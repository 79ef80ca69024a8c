package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"evalvault/internal/domain"
)

// timeLayout is the text format timestamps are persisted in.
const timeLayout = "2006-01-02 15:04:05"

// now returns the current time formatted for storage.
func now() string {
	return time.Now().Format(timeLayout)
}

// quoteIdent quotes a SQL identifier for use where placeholders are not
// allowed (PRAGMA, COUNT targets).
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// joinSet joins SET clause fragments for an UPDATE statement.
func joinSet(set []string) string {
	return strings.Join(set, ", ")
}

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullToInt64Ptr safely converts sql.NullInt64 to *int64
func nullToInt64Ptr(ni sql.NullInt64) *int64 {
	if ni.Valid {
		v := ni.Int64
		return &v
	}
	return nil
}

// int64PtrToNull safely converts *int64 to sql.NullInt64
func int64PtrToNull(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

// nullToIntPtr safely converts sql.NullInt64 to *int
func nullToIntPtr(ni sql.NullInt64) *int {
	if ni.Valid {
		v := int(ni.Int64)
		return &v
	}
	return nil
}

// intPtrToNull safely converts *int to sql.NullInt64
func intPtrToNull(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

// ============================================================================
// Timestamp Helpers
// ============================================================================

// parseCreatedAt parses the required created_at column.
func parseCreatedAt(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_at %q: %w", s, err)
	}
	return t, nil
}

// parseUpdatedAt parses the nullable updated_at column.
func parseUpdatedAt(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(timeLayout, ns.String, time.Local)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at %q: %w", ns.String, err)
	}
	return &t, nil
}

// ============================================================================
// User Row Scanner
// ============================================================================

// userColumns is the SELECT column list for user queries.
// MUST match userRow.scanArgs() order exactly.
const userColumns = `id, username, password, nickname, full_name, created_at, updated_at`

// userRow holds all columns from a user query for scanning
type userRow struct {
	ID        int64
	Username  string
	Password  string
	Nickname  string
	FullName  sql.NullString
	CreatedAt string
	UpdatedAt sql.NullString
}

func (r *userRow) scanArgs() []any {
	return []any{
		&r.ID,
		&r.Username,
		&r.Password,
		&r.Nickname,
		&r.FullName,
		&r.CreatedAt,
		&r.UpdatedAt,
	}
}

// toDomain converts the scanned row to a domain.User
func (r *userRow) toDomain() (*domain.User, error) {
	createdAt, err := parseCreatedAt(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseUpdatedAt(r.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &domain.User{
		ID:        r.ID,
		Username:  r.Username,
		Password:  r.Password,
		Nickname:  r.Nickname,
		FullName:  nullToString(r.FullName),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// ============================================================================
// Query Row Scanner
// ============================================================================

// queryColumns is the SELECT column list for query queries.
// MUST match queryRow.scanArgs() order exactly.
const queryColumns = `id, lazy_query, detail_query, creator_id, priority, created_at, updated_at`

// queryRow holds all columns from a query_form query for scanning
type queryRow struct {
	ID          int64
	LazyQuery   sql.NullString
	DetailQuery sql.NullString
	CreatorID   sql.NullInt64
	Priority    sql.NullInt64
	CreatedAt   string
	UpdatedAt   sql.NullString
}

func (r *queryRow) scanArgs() []any {
	return []any{
		&r.ID,
		&r.LazyQuery,
		&r.DetailQuery,
		&r.CreatorID,
		&r.Priority,
		&r.CreatedAt,
		&r.UpdatedAt,
	}
}

// toDomain converts the scanned row to a domain.Query
func (r *queryRow) toDomain() (*domain.Query, error) {
	createdAt, err := parseCreatedAt(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseUpdatedAt(r.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &domain.Query{
		ID:          r.ID,
		LazyQuery:   nullToString(r.LazyQuery),
		DetailQuery: nullToString(r.DetailQuery),
		CreatorID:   nullToInt64Ptr(r.CreatorID),
		Priority:    nullToIntPtr(r.Priority),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// ============================================================================
// Evaluation Row Scanner
// ============================================================================

// evaluationColumns is the SELECT column list for evaluation queries.
// MUST match evaluationRow.scanArgs() order exactly.
const evaluationColumns = `id, query_id, agent, evaluator_id, quality_score,
	trajectory, report_content, created_at, updated_at`

// evaluationRow holds all columns from an evaluation query for scanning
type evaluationRow struct {
	ID            int64
	QueryID       int64
	Agent         sql.NullString
	EvaluatorID   sql.NullInt64
	QualityScore  sql.NullInt64
	Trajectory    sql.NullString
	ReportContent sql.NullString
	CreatedAt     string
	UpdatedAt     sql.NullString
}

func (r *evaluationRow) scanArgs() []any {
	return []any{
		&r.ID,
		&r.QueryID,
		&r.Agent,
		&r.EvaluatorID,
		&r.QualityScore,
		&r.Trajectory,
		&r.ReportContent,
		&r.CreatedAt,
		&r.UpdatedAt,
	}
}

// toDomain converts the scanned row to a domain.Evaluation
func (r *evaluationRow) toDomain() (*domain.Evaluation, error) {
	createdAt, err := parseCreatedAt(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseUpdatedAt(r.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &domain.Evaluation{
		ID:            r.ID,
		QueryID:       r.QueryID,
		Agent:         nullToString(r.Agent),
		EvaluatorID:   nullToInt64Ptr(r.EvaluatorID),
		QualityScore:  nullToIntPtr(r.QualityScore),
		Trajectory:    nullToString(r.Trajectory),
		ReportContent: nullToString(r.ReportContent),
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

// ============================================================================
// File Row Scanner
// ============================================================================

// fileColumns is the SELECT column list for file queries.
// MUST match fileRow.scanArgs() order exactly.
const fileColumns = `id, evaluation_id, filename, content, file_type, file_size, created_at, updated_at`

// fileRow holds all columns from a files_form query for scanning
type fileRow struct {
	ID           int64
	EvaluationID int64
	Filename     string
	Content      []byte
	FileType     string
	FileSize     sql.NullInt64
	CreatedAt    string
	UpdatedAt    sql.NullString
}

func (r *fileRow) scanArgs() []any {
	return []any{
		&r.ID,
		&r.EvaluationID,
		&r.Filename,
		&r.Content,
		&r.FileType,
		&r.FileSize,
		&r.CreatedAt,
		&r.UpdatedAt,
	}
}

// toDomain converts the scanned row to a domain.File
func (r *fileRow) toDomain() (*domain.File, error) {
	createdAt, err := parseCreatedAt(r.CreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseUpdatedAt(r.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &domain.File{
		ID:           r.ID,
		EvaluationID: r.EvaluationID,
		Filename:     r.Filename,
		Content:      r.Content,
		FileType:     domain.FileType(r.FileType),
		FileSize:     nullToInt64Ptr(r.FileSize),
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}
