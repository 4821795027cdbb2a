package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/koreklar/koreskole-api/internal/models"
)

// NewsRepository provides persistence for bilingual news items and their images.
type NewsRepository struct {
	db *sqlx.DB
}

// NewNewsRepository creates the repository.
func NewNewsRepository(db *sqlx.DB) *NewsRepository {
	return &NewsRepository{db: db}
}

// List returns news ordered newest first.
func (r *NewsRepository) List(ctx context.Context, filter models.NewsFilter) ([]models.News, int, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, title, title_translated, body, body_translated, source_lang, author_id, social_post_link, created_at, updated_at
FROM news ORDER BY created_at DESC LIMIT %d OFFSET %d`, size, offset)
	var items []models.News
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, 0, fmt.Errorf("list news: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM news"); err != nil {
		return nil, 0, fmt.Errorf("count news: %w", err)
	}
	return items, total, nil
}

// GetByID returns one news item by identifier.
func (r *NewsRepository) GetByID(ctx context.Context, id string) (*models.News, error) {
	const query = `SELECT id, title, title_translated, body, body_translated, source_lang, author_id, social_post_link, created_at, updated_at
FROM news WHERE id = $1`
	var item models.News
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a new news row.
func (r *NewsRepository) Create(ctx context.Context, item *models.News) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	query := `INSERT INTO news (id, title, title_translated, body, body_translated, source_lang, author_id, social_post_link, created_at, updated_at)
VALUES (:id, :title, :title_translated, :body, :body_translated, :source_lang, :author_id, :social_post_link, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create news: %w", err)
	}
	return nil
}

// Update modifies an existing news row.
func (r *NewsRepository) Update(ctx context.Context, item *models.News) error {
	item.UpdatedAt = time.Now().UTC()
	query := `UPDATE news SET title = :title, title_translated = :title_translated, body = :body, body_translated = :body_translated,
source_lang = :source_lang, social_post_link = :social_post_link, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("update news: %w", err)
	}
	return nil
}

// SetSocialPostLink stores the external post link on an existing row.
func (r *NewsRepository) SetSocialPostLink(ctx context.Context, id, link string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE news SET social_post_link = $2, updated_at = $3 WHERE id = $1", id, link, time.Now().UTC()); err != nil {
		return fmt.Errorf("set social post link: %w", err)
	}
	return nil
}

// Delete removes a news row.
func (r *NewsRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM news WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete news: %w", err)
	}
	return nil
}

// ListImages returns the images owned by a news item ordered by position.
func (r *NewsRepository) ListImages(ctx context.Context, newsID string) ([]models.NewsImage, error) {
	const query = `SELECT id, news_id, storage_path, sort_order, created_at
FROM news_images WHERE news_id = $1 ORDER BY sort_order ASC`
	var images []models.NewsImage
	if err := r.db.SelectContext(ctx, &images, query, newsID); err != nil {
		return nil, fmt.Errorf("list news images: %w", err)
	}
	return images, nil
}

// CreateImage inserts one image row.
func (r *NewsRepository) CreateImage(ctx context.Context, image *models.NewsImage) error {
	if image.ID == "" {
		image.ID = uuid.NewString()
	}
	if image.CreatedAt.IsZero() {
		image.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO news_images (id, news_id, storage_path, sort_order, created_at)
VALUES (:id, :news_id, :storage_path, :sort_order, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, image); err != nil {
		return fmt.Errorf("create news image: %w", err)
	}
	return nil
}

// DeleteImage removes one image row.
func (r *NewsRepository) DeleteImage(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM news_images WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete news image: %w", err)
	}
	return nil
}
