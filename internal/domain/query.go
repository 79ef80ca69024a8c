package domain

import "time"

// Query represents a research request. LazyQuery is the short form, DetailQuery
// the long form; either may be empty. CreatorID references the user who filed
// the query and may be nil for anonymous entries.
type Query struct {
	ID          int64  `json:"id"`
	LazyQuery   string `json:"lazy_query,omitempty"`
	DetailQuery string `json:"detail_query,omitempty"`
	CreatorID   *int64 `json:"creator_id,omitempty"`
	Priority    *int   `json:"priority,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// QueryChanges lists the mutable fields of a query.
type QueryChanges struct {
	LazyQuery   *string
	DetailQuery *string
	CreatorID   *int64
	Priority    *int
}

// IsEmpty reports whether no field change was requested.
func (c QueryChanges) IsEmpty() bool {
	return c.LazyQuery == nil && c.DetailQuery == nil && c.CreatorID == nil && c.Priority == nil
}
