package models

import "time"

// Package represents a lesson package offered on the pricing page.
type Package struct {
	ID         string    `db:"id" json:"id"`
	Title      string    `db:"title" json:"title"`
	PriceCents int64     `db:"price_cents" json:"price_cents"`
	Currency   string    `db:"currency" json:"currency"`
	Highlight  bool      `db:"highlight" json:"highlight"`
	SortOrder  int       `db:"sort_order" json:"sort_order"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`

	Features []PackageFeature `db:"-" json:"features,omitempty"`
}

// Feature is a reusable bullet point that packages can include.
type Feature struct {
	ID        string    `db:"id" json:"id"`
	Label     string    `db:"label" json:"label"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PackageFeature links a feature into a package with a display position.
type PackageFeature struct {
	ID        string `db:"id" json:"id"`
	PackageID string `db:"package_id" json:"package_id"`
	FeatureID string `db:"feature_id" json:"feature_id"`
	SortOrder int    `db:"sort_order" json:"sort_order"`
	Label     string `db:"label" json:"label"`
	Included  bool   `db:"included" json:"included"`
}
