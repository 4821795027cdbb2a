package models

import "time"

// Review represents a student review shown on the public site.
type Review struct {
	ID        string    `db:"id" json:"id"`
	Author    string    `db:"author" json:"author"`
	Content   string    `db:"content" json:"content"`
	Rating    int       `db:"rating" json:"rating"`
	Published bool      `db:"published" json:"published"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ReviewFilter captures listing criteria for reviews.
type ReviewFilter struct {
	PublishedOnly bool
	Page          int
	PageSize      int
}
