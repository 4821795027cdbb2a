package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/koreklar/koreskole-api/internal/models"
)

// PackageRepository provides persistence for lesson packages and their features.
type PackageRepository struct {
	db *sqlx.DB
}

// NewPackageRepository creates the repository.
func NewPackageRepository(db *sqlx.DB) *PackageRepository {
	return &PackageRepository{db: db}
}

// List returns all packages in display order.
func (r *PackageRepository) List(ctx context.Context) ([]models.Package, error) {
	const query = `SELECT id, title, price_cents, currency, highlight, sort_order, created_at, updated_at
FROM packages ORDER BY sort_order ASC, title ASC`
	var packages []models.Package
	if err := r.db.SelectContext(ctx, &packages, query); err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return packages, nil
}

// GetByID returns a package by identifier.
func (r *PackageRepository) GetByID(ctx context.Context, id string) (*models.Package, error) {
	const query = `SELECT id, title, price_cents, currency, highlight, sort_order, created_at, updated_at
FROM packages WHERE id = $1`
	var pkg models.Package
	if err := r.db.GetContext(ctx, &pkg, query, id); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// Create inserts a new package.
func (r *PackageRepository) Create(ctx context.Context, pkg *models.Package) error {
	if pkg.ID == "" {
		pkg.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if pkg.CreatedAt.IsZero() {
		pkg.CreatedAt = now
	}
	pkg.UpdatedAt = now
	query := `INSERT INTO packages (id, title, price_cents, currency, highlight, sort_order, created_at, updated_at)
VALUES (:id, :title, :price_cents, :currency, :highlight, :sort_order, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, pkg); err != nil {
		return fmt.Errorf("create package: %w", err)
	}
	return nil
}

// Update modifies an existing package.
func (r *PackageRepository) Update(ctx context.Context, pkg *models.Package) error {
	pkg.UpdatedAt = time.Now().UTC()
	query := `UPDATE packages SET title = :title, price_cents = :price_cents, currency = :currency,
highlight = :highlight, sort_order = :sort_order, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, pkg); err != nil {
		return fmt.Errorf("update package: %w", err)
	}
	return nil
}

// Delete removes a package and its feature links.
func (r *PackageRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM package_features WHERE package_id = $1", id); err != nil {
		return fmt.Errorf("delete package features: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM packages WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete package: %w", err)
	}
	return nil
}

// ListFeatures returns the feature rows of a package joined with their labels.
func (r *PackageRepository) ListFeatures(ctx context.Context, packageID string) ([]models.PackageFeature, error) {
	const query = `SELECT pf.id, pf.package_id, pf.feature_id, pf.sort_order, pf.included, f.label
FROM package_features pf JOIN features f ON f.id = pf.feature_id
WHERE pf.package_id = $1 ORDER BY pf.sort_order ASC`
	var features []models.PackageFeature
	if err := r.db.SelectContext(ctx, &features, query, packageID); err != nil {
		return nil, fmt.Errorf("list package features: %w", err)
	}
	return features, nil
}

// ReplaceFeatures deletes and re-inserts the feature links of a package.
func (r *PackageRepository) ReplaceFeatures(ctx context.Context, packageID string, features []models.PackageFeature) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM package_features WHERE package_id = $1", packageID); err != nil {
		return fmt.Errorf("clear package features: %w", err)
	}
	for _, feature := range features {
		id := feature.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := r.db.ExecContext(ctx,
			"INSERT INTO package_features (id, package_id, feature_id, sort_order, included) VALUES ($1, $2, $3, $4, $5)",
			id, packageID, feature.FeatureID, feature.SortOrder, feature.Included); err != nil {
			return fmt.Errorf("insert package feature: %w", err)
		}
	}
	return nil
}

// ListAllFeatures returns the reusable feature catalogue ordered by label.
func (r *PackageRepository) ListAllFeatures(ctx context.Context) ([]models.Feature, error) {
	const query = `SELECT id, label, created_at FROM features ORDER BY label ASC`
	var features []models.Feature
	if err := r.db.SelectContext(ctx, &features, query); err != nil {
		return nil, fmt.Errorf("list features: %w", err)
	}
	return features, nil
}

// CreateFeature inserts a reusable feature row.
func (r *PackageRepository) CreateFeature(ctx context.Context, feature *models.Feature) error {
	if feature.ID == "" {
		feature.ID = uuid.NewString()
	}
	if feature.CreatedAt.IsZero() {
		feature.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO features (id, label, created_at) VALUES ($1, $2, $3)",
		feature.ID, feature.Label, feature.CreatedAt); err != nil {
		return fmt.Errorf("create feature: %w", err)
	}
	return nil
}
