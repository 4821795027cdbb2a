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

// RequestRepository provides persistence for customer requests and notes.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository creates the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// List returns requests newest first matching the filter.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Kind != nil {
		where = append(where, fmt.Sprintf("kind = $%d", len(args)+1))
		args = append(args, *filter.Kind)
	}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, kind, name, email, phone, message, language, cv_path, status, created_at, updated_at
FROM requests WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`, whereClause, size, offset)
	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM requests WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}
	return requests, total, nil
}

// GetByID returns a request by identifier.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.Request, error) {
	const query = `SELECT id, kind, name, email, phone, message, language, cv_path, status, created_at, updated_at
FROM requests WHERE id = $1`
	var request models.Request
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// Create inserts a new request.
func (r *RequestRepository) Create(ctx context.Context, request *models.Request) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now
	if request.Status == "" {
		request.Status = models.RequestStatusNew
	}
	query := `INSERT INTO requests (id, kind, name, email, phone, message, language, cv_path, status, created_at, updated_at)
VALUES (:id, :kind, :name, :email, :phone, :message, :language, :cv_path, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

// UpdateStatus moves a request through its handling states.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id string, status models.RequestStatus) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE requests SET status = $2, updated_at = $3 WHERE id = $1", id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	return nil
}

// Delete removes a request and its notes.
func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM request_notes WHERE request_id = $1", id); err != nil {
		return fmt.Errorf("delete request notes: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM requests WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return nil
}

// ListNotes returns notes of a request oldest first.
func (r *RequestRepository) ListNotes(ctx context.Context, requestID string) ([]models.RequestNote, error) {
	const query = `SELECT id, request_id, author_id, body, created_at
FROM request_notes WHERE request_id = $1 ORDER BY created_at ASC`
	var notes []models.RequestNote
	if err := r.db.SelectContext(ctx, &notes, query, requestID); err != nil {
		return nil, fmt.Errorf("list request notes: %w", err)
	}
	return notes, nil
}

// CreateNote attaches an admin note to a request.
func (r *RequestRepository) CreateNote(ctx context.Context, note *models.RequestNote) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO request_notes (id, request_id, author_id, body, created_at) VALUES ($1, $2, $3, $4, $5)",
		note.ID, note.RequestID, note.AuthorID, note.Body, note.CreatedAt); err != nil {
		return fmt.Errorf("create request note: %w", err)
	}
	return nil
}
