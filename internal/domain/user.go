package domain

import "time"

// User represents an account in the evaluation workflow. Users create
// queries and perform evaluations.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
	FullName string `json:"full_name,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// NewUser creates a user with the required fields set. ID and CreatedAt are
// assigned by the store on insert.
func NewUser(username, password, nickname string) *User {
	return &User{
		Username: username,
		Password: password,
		Nickname: nickname,
	}
}

// UserChanges lists the mutable fields of a user. Username is the lookup key
// and is not mutable through an update.
type UserChanges struct {
	Password *string
	Nickname *string
	FullName *string
}

// IsEmpty reports whether no field change was requested.
func (c UserChanges) IsEmpty() bool {
	return c.Password == nil && c.Nickname == nil && c.FullName == nil
}
