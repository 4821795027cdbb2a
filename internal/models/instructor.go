package models

import "time"

// Instructor represents a driving instructor bio shown on the public site.
type Instructor struct {
	ID        string    `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Title     string    `db:"title" json:"title"`
	Bio       string    `db:"bio" json:"bio"`
	PhotoPath *string   `db:"photo_path" json:"photo_path,omitempty"`
	SortOrder int       `db:"sort_order" json:"sort_order"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// InstructorFilter captures listing criteria for instructors.
type InstructorFilter struct {
	ActiveOnly bool
	Page       int
	PageSize   int
}
