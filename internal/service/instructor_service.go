package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/koreklar/koreskole-api/internal/models"
	appErrors "github.com/koreklar/koreskole-api/pkg/errors"
)

// InstructorRepository abstracts persistence for instructor bios.
type InstructorRepository interface {
	List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, int, error)
	GetByID(ctx context.Context, id string) (*models.Instructor, error)
	Create(ctx context.Context, instructor *models.Instructor) error
	Update(ctx context.Context, instructor *models.Instructor) error
	Delete(ctx context.Context, id string) error
}

// SaveInstructorRequest holds the editable instructor fields. Photo is an
// optional raw upload that replaces any existing one.
type SaveInstructorRequest struct {
	FullName  string `json:"full_name" validate:"required,min=2,max=100"`
	Title     string `json:"title" validate:"required,min=2,max=100"`
	Bio       string `json:"bio" validate:"max=2000"`
	SortOrder int    `json:"sort_order" validate:"min=0"`
	Active    bool   `json:"active"`

	Photo *MediaUpload `json:"-"`
}

// InstructorService manages instructor bios and their portrait photos.
type InstructorService struct {
	repo       InstructorRepository
	storage    MediaStorage
	normalizer ImageNormalizer
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewInstructorService wires the instructor service.
func NewInstructorService(repo InstructorRepository, storage MediaStorage, normalizer ImageNormalizer, logger *zap.Logger) *InstructorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorService{repo: repo, storage: storage, normalizer: normalizer, validator: validator.New(), logger: logger}
}

// List returns instructors matching the filter.
func (s *InstructorService) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, int, error) {
	instructors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
	}
	return instructors, total, nil
}

// Get returns one instructor.
func (s *InstructorService) Get(ctx context.Context, id string) (*models.Instructor, error) {
	instructor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}
	return instructor, nil
}

// Create stores a new instructor. The photo, when present, is normalized and
// stored before the row is inserted so a broken upload fails the request.
func (s *InstructorService) Create(ctx context.Context, req SaveInstructorRequest) (*models.Instructor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}

	instructor := &models.Instructor{
		FullName:  req.FullName,
		Title:     req.Title,
		Bio:       req.Bio,
		SortOrder: req.SortOrder,
		Active:    req.Active,
	}
	if req.Photo != nil {
		path, err := s.storePhoto(req.Photo)
		if err != nil {
			return nil, err
		}
		instructor.PhotoPath = &path
	}
	if err := s.repo.Create(ctx, instructor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create instructor")
	}
	return instructor, nil
}

// Update modifies an instructor; a new photo replaces the stored one.
func (s *InstructorService) Update(ctx context.Context, id string, req SaveInstructorRequest) (*models.Instructor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}

	instructor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	instructor.FullName = req.FullName
	instructor.Title = req.Title
	instructor.Bio = req.Bio
	instructor.SortOrder = req.SortOrder
	instructor.Active = req.Active

	if req.Photo != nil {
		path, err := s.storePhoto(req.Photo)
		if err != nil {
			return nil, err
		}
		if instructor.PhotoPath != nil {
			if err := s.storage.Delete(*instructor.PhotoPath); err != nil {
				s.logger.Warn("failed to delete replaced instructor photo",
					zap.String("instructor_id", id), zap.Error(err))
			}
		}
		instructor.PhotoPath = &path
	}

	if err := s.repo.Update(ctx, instructor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update instructor")
	}
	return instructor, nil
}

// Delete removes an instructor and its stored photo.
func (s *InstructorService) Delete(ctx context.Context, id string) error {
	instructor, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if instructor.PhotoPath != nil {
		if err := s.storage.Delete(*instructor.PhotoPath); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete instructor photo")
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete instructor")
	}
	return nil
}

func (s *InstructorService) storePhoto(photo *MediaUpload) (string, error) {
	normalized, err := s.normalizer.Normalize(photo.Data)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "photo is not a readable image")
	}
	path := fmt.Sprintf("instructors/%s.jpg", uuid.NewString())
	if _, err := s.storage.Save(path, normalized); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo")
	}
	return path, nil
}
