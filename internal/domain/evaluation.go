package domain

import (
	"fmt"
	"time"
)

// Evaluation represents one evaluator's assessment of a query. QueryID is
// required and must reference an existing query at insert time; everything
// else is optional.
type Evaluation struct {
	ID            int64  `json:"id"`
	QueryID       int64  `json:"query_id"`
	Agent         string `json:"agent,omitempty"`
	EvaluatorID   *int64 `json:"evaluator_id,omitempty"`
	QualityScore  *int   `json:"quality_score,omitempty"`
	Trajectory    string `json:"trajectory,omitempty"`
	ReportContent string `json:"report_content,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// EvaluationChanges lists the mutable fields of an evaluation.
type EvaluationChanges struct {
	Agent         *string
	EvaluatorID   *int64
	QualityScore  *int
	Trajectory    *string
	ReportContent *string
}

// IsEmpty reports whether no field change was requested.
func (c EvaluationChanges) IsEmpty() bool {
	return c.Agent == nil && c.EvaluatorID == nil && c.QualityScore == nil &&
		c.Trajectory == nil && c.ReportContent == nil
}

// Deliverable is the input record for a file attached to an evaluation at
// creation time. It is persisted as a File with FileTypeDeliverable.
type Deliverable struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
	FileSize *int64 `json:"file_size,omitempty"`
}

// Validate checks the shape contract for a deliverable: a non-empty filename
// and non-nil binary content. Empty content is allowed; absent content is not.
func (d Deliverable) Validate() error {
	if d.Filename == "" {
		return fmt.Errorf("deliverable filename must be a non-empty string")
	}
	if d.Content == nil {
		return fmt.Errorf("deliverable %q content must be binary data", d.Filename)
	}
	return nil
}
