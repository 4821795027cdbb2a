package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/koreklar/koreskole-api/internal/models"
	appErrors "github.com/koreklar/koreskole-api/pkg/errors"
	"github.com/koreklar/koreskole-api/pkg/storage"
)

// RequestRepository abstracts persistence for customer requests and notes.
type RequestRepository interface {
	List(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error)
	GetByID(ctx context.Context, id string) (*models.Request, error)
	Create(ctx context.Context, request *models.Request) error
	UpdateStatus(ctx context.Context, id string, status models.RequestStatus) error
	Delete(ctx context.Context, id string) error
	ListNotes(ctx context.Context, requestID string) ([]models.RequestNote, error)
	CreateNote(ctx context.Context, note *models.RequestNote) error
}

// UpdateRequestStatusRequest changes the handling status of a request.
type UpdateRequestStatusRequest struct {
	Status models.RequestStatus `json:"status" validate:"required,oneof=NEW IN_PROGRESS DONE"`
}

// CreateRequestNoteRequest adds an internal note to a request.
type CreateRequestNoteRequest struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}

// RequestService serves the admin side of customer requests: listing,
// status handling, internal notes, and time-limited CV downloads.
type RequestService struct {
	repo      RequestRepository
	storage   MediaStorage
	signer    *storage.SignedURLSigner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRequestService wires the request service.
func NewRequestService(repo RequestRepository, store MediaStorage, signer *storage.SignedURLSigner, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{repo: repo, storage: store, signer: signer, validator: validator.New(), logger: logger}
}

// List returns requests matching the filter.
func (s *RequestService) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, int, error) {
	requests, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return requests, total, nil
}

// Get returns one request.
func (s *RequestService) Get(ctx context.Context, id string) (*models.Request, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return request, nil
}

// UpdateStatus changes a request's handling status.
func (s *RequestService) UpdateStatus(ctx context.Context, id string, req UpdateRequestStatusRequest) (*models.Request, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update request status")
	}
	return s.Get(ctx, id)
}

// Delete removes a request, its notes, and any uploaded CV.
func (s *RequestService) Delete(ctx context.Context, id string) error {
	request, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if request.CVPath != nil {
		if err := s.storage.Delete(*request.CVPath); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete uploaded cv")
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete request")
	}
	return nil
}

// ListNotes returns the internal notes on a request, oldest first.
func (s *RequestService) ListNotes(ctx context.Context, requestID string) ([]models.RequestNote, error) {
	if _, err := s.Get(ctx, requestID); err != nil {
		return nil, err
	}
	notes, err := s.repo.ListNotes(ctx, requestID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list request notes")
	}
	return notes, nil
}

// AddNote attaches an internal note authored by the given member.
func (s *RequestService) AddNote(ctx context.Context, requestID, authorID string, req CreateRequestNoteRequest) (*models.RequestNote, error) {
	if authorID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "author identity required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid note payload")
	}
	if _, err := s.Get(ctx, requestID); err != nil {
		return nil, err
	}
	note := &models.RequestNote{
		RequestID: requestID,
		AuthorID:  authorID,
		Body:      req.Body,
	}
	if err := s.repo.CreateNote(ctx, note); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create request note")
	}
	return note, nil
}

// CVDownloadToken issues a signed, time-limited token for the CV attached
// to an application request.
func (s *RequestService) CVDownloadToken(ctx context.Context, id string) (string, error) {
	request, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if request.CVPath == nil {
		return "", appErrors.Clone(appErrors.ErrNotFound, "request has no cv attached")
	}
	token, _, err := s.signer.Generate(request.ID, *request.CVPath)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign cv download")
	}
	return token, nil
}

// ResolveCVDownload validates a signed token and returns the stored path.
func (s *RequestService) ResolveCVDownload(token string) (string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}
	return relPath, nil
}
