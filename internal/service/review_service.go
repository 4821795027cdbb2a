package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/koreklar/koreskole-api/internal/models"
	appErrors "github.com/koreklar/koreskole-api/pkg/errors"
)

// ReviewRepository abstracts persistence for student reviews.
type ReviewRepository interface {
	List(ctx context.Context, filter models.ReviewFilter) ([]models.Review, int, error)
	GetByID(ctx context.Context, id string) (*models.Review, error)
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id string) error
}

// SaveReviewRequest holds the editable review fields.
type SaveReviewRequest struct {
	Author    string `json:"author" validate:"required,min=2,max=100"`
	Content   string `json:"content" validate:"required,min=5"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Published bool   `json:"published"`
}

// ReviewService manages student reviews.
type ReviewService struct {
	repo      ReviewRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReviewService wires the review service.
func NewReviewService(repo ReviewRepository, logger *zap.Logger) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{repo: repo, validator: validator.New(), logger: logger}
}

// List returns reviews matching the filter.
func (s *ReviewService) List(ctx context.Context, filter models.ReviewFilter) ([]models.Review, int, error) {
	reviews, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reviews")
	}
	return reviews, total, nil
}

// Get returns one review.
func (s *ReviewService) Get(ctx context.Context, id string) (*models.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "review not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review")
	}
	return review, nil
}

// Create stores a new review.
func (s *ReviewService) Create(ctx context.Context, req SaveReviewRequest) (*models.Review, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	review := &models.Review{
		Author:    req.Author,
		Content:   req.Content,
		Rating:    req.Rating,
		Published: req.Published,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create review")
	}
	return review, nil
}

// Update modifies an existing review.
func (s *ReviewService) Update(ctx context.Context, id string, req SaveReviewRequest) (*models.Review, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	review, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	review.Author = req.Author
	review.Content = req.Content
	review.Rating = req.Rating
	review.Published = req.Published
	if err := s.repo.Update(ctx, review); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update review")
	}
	return review, nil
}

// Delete removes a review.
func (s *ReviewService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete review")
	}
	return nil
}
