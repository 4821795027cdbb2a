package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/koreklar/koreskole-api/internal/models"
)

// InstructorRepository provides persistence for instructor bios.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository creates the repository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// List returns instructors in display order.
func (r *InstructorRepository) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, int, error) {
	where := []string{"1=1"}
	if filter.ActiveOnly {
		where = append(where, "active = TRUE")
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, full_name, title, bio, photo_path, sort_order, active, created_at, updated_at
FROM instructors WHERE %s ORDER BY sort_order ASC, full_name ASC LIMIT %d OFFSET %d`, whereClause, size, offset)
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query); err != nil {
		return nil, 0, fmt.Errorf("list instructors: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM instructors WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, fmt.Errorf("count instructors: %w", err)
	}
	return instructors, total, nil
}

// GetByID returns an instructor by identifier.
func (r *InstructorRepository) GetByID(ctx context.Context, id string) (*models.Instructor, error) {
	const query = `SELECT id, full_name, title, bio, photo_path, sort_order, active, created_at, updated_at
FROM instructors WHERE id = $1`
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, id); err != nil {
		return nil, err
	}
	return &instructor, nil
}

// Create inserts a new instructor.
func (r *InstructorRepository) Create(ctx context.Context, instructor *models.Instructor) error {
	if instructor.ID == "" {
		instructor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if instructor.CreatedAt.IsZero() {
		instructor.CreatedAt = now
	}
	instructor.UpdatedAt = now
	query := `INSERT INTO instructors (id, full_name, title, bio, photo_path, sort_order, active, created_at, updated_at)
VALUES (:id, :full_name, :title, :bio, :photo_path, :sort_order, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, instructor); err != nil {
		return fmt.Errorf("create instructor: %w", err)
	}
	return nil
}

// Update modifies an existing instructor.
func (r *InstructorRepository) Update(ctx context.Context, instructor *models.Instructor) error {
	instructor.UpdatedAt = time.Now().UTC()
	query := `UPDATE instructors SET full_name = :full_name, title = :title, bio = :bio, photo_path = :photo_path,
sort_order = :sort_order, active = :active, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, instructor); err != nil {
		return fmt.Errorf("update instructor: %w", err)
	}
	return nil
}

// Delete removes an instructor.
func (r *InstructorRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM instructors WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete instructor: %w", err)
	}
	return nil
}
