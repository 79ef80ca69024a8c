package domain

import "time"

// FileType classifies a file attached to an evaluation. The set is closed;
// no other value may be persisted.
type FileType string

const (
	FileTypeTrajectory  FileType = "trajectory"
	FileTypeReport      FileType = "report"
	FileTypeDeliverable FileType = "deliverable"
	FileTypePreData     FileType = "pre_data"
)

// FileTypes returns the valid file types in declaration order.
func FileTypes() []FileType {
	return []FileType{FileTypeTrajectory, FileTypeReport, FileTypeDeliverable, FileTypePreData}
}

// Valid reports whether t is one of the enumerated file types.
func (t FileType) Valid() bool {
	switch t {
	case FileTypeTrajectory, FileTypeReport, FileTypeDeliverable, FileTypePreData:
		return true
	}
	return false
}

// File represents a binary artifact attached to an evaluation. EvaluationID
// is required and must reference an existing evaluation at insert time.
// Content may be nil when only metadata is tracked.
type File struct {
	ID           int64    `json:"id"`
	EvaluationID int64    `json:"evaluation_id"`
	Filename     string   `json:"filename"`
	Content      []byte   `json:"content,omitempty"`
	FileType     FileType `json:"file_type"`
	FileSize     *int64   `json:"file_size,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// FileChanges lists the mutable fields of a file. A FileType change is
// validated against the enumeration before any write.
type FileChanges struct {
	Filename *string
	Content  []byte
	FileType *FileType
	FileSize *int64
}

// IsEmpty reports whether no field change was requested.
func (c FileChanges) IsEmpty() bool {
	return c.Filename == nil && c.Content == nil && c.FileType == nil && c.FileSize == nil
}
