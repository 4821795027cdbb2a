package models

import "time"

// MemberRole represents the available roles for the admin dashboard.
type MemberRole string

const (
	RoleAdmin  MemberRole = "ADMIN"
	RoleEditor MemberRole = "EDITOR"
)

// Member represents a dashboard user stored in the members table.
type Member struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         MemberRole `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// MemberFilter captures filtering criteria for listing members.
type MemberFilter struct {
	Role     *MemberRole
	Active   *bool
	Search   string
	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
