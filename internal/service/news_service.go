package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/koreklar/koreskole-api/internal/client"
	"github.com/koreklar/koreskole-api/internal/models"
	appErrors "github.com/koreklar/koreskole-api/pkg/errors"
)

// NewsRepository abstracts persistence for news items and their images.
type NewsRepository interface {
	List(ctx context.Context, filter models.NewsFilter) ([]models.News, int, error)
	GetByID(ctx context.Context, id string) (*models.News, error)
	Create(ctx context.Context, item *models.News) error
	Update(ctx context.Context, item *models.News) error
	SetSocialPostLink(ctx context.Context, id, link string) error
	Delete(ctx context.Context, id string) error
	ListImages(ctx context.Context, newsID string) ([]models.NewsImage, error)
	CreateImage(ctx context.Context, image *models.NewsImage) error
	DeleteImage(ctx context.Context, id string) error
}

// PairTranslator produces both language variants of a text.
type PairTranslator interface {
	TranslatePair(ctx context.Context, text string) (*client.BilingualText, error)
}

// MediaStorage persists binary objects under relative paths.
type MediaStorage interface {
	Save(filename string, data []byte) (string, error)
	Delete(filename string) error
}

// ImageNormalizer converts an uploaded image into the canonical stored form.
type ImageNormalizer interface {
	Normalize(data []byte) ([]byte, error)
}

// SocialPublisher posts an announcement and returns the public post URL.
type SocialPublisher interface {
	Publish(ctx context.Context, message, link string) (string, error)
}

// MediaUpload is one raw image attached to a create or update request.
type MediaUpload struct {
	Filename string
	Data     []byte
}

// MediaLimits bounds the attachments accepted per request. Zero values
// disable the corresponding check.
type MediaLimits struct {
	MaxUploadBytes int64
	MaxFiles       int
}

// CreateNewsRequest carries the admin's original text plus attachments.
type CreateNewsRequest struct {
	Title           string `validate:"required,min=3,max=200"`
	Body            string `validate:"required,min=10"`
	PublishToSocial bool

	Media []MediaUpload
}

// UpdateNewsRequest replaces the text of an existing item. Translation is
// always re-run; new media is appended after the existing images.
type UpdateNewsRequest struct {
	Title string `validate:"required,min=3,max=200"`
	Body  string `validate:"required,min=10"`

	Media []MediaUpload
}

// NewsService implements the bilingual content workflow.
type NewsService struct {
	repo          NewsRepository
	translator    PairTranslator
	storage       MediaStorage
	normalizer    ImageNormalizer
	social        SocialPublisher
	publicBaseURL string
	limits        MediaLimits
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewNewsService wires the content workflow. The social publisher may be nil
// when publishing is not configured.
func NewNewsService(
	repo NewsRepository,
	translator PairTranslator,
	storage MediaStorage,
	normalizer ImageNormalizer,
	social SocialPublisher,
	publicBaseURL string,
	limits MediaLimits,
	logger *zap.Logger,
) *NewsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NewsService{
		repo:          repo,
		translator:    translator,
		storage:       storage,
		normalizer:    normalizer,
		social:        social,
		publicBaseURL: publicBaseURL,
		limits:        limits,
		validator:     validator.New(),
		logger:        logger,
	}
}

// List returns a page of news items with their images attached.
func (s *NewsService) List(ctx context.Context, filter models.NewsFilter) ([]models.News, int, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list news")
	}
	for i := range items {
		images, err := s.repo.ListImages(ctx, items[i].ID)
		if err != nil {
			return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load news images")
		}
		items[i].Images = images
	}
	return items, total, nil
}

// Get returns one news item with images.
func (s *NewsService) Get(ctx context.Context, id string) (*models.News, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "news item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load news item")
	}
	images, err := s.repo.ListImages(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load news images")
	}
	item.Images = images
	return item, nil
}

// Create runs the full submission workflow: translate both fields, persist
// the record, then store each attachment and optionally publish to the
// social page. Translation and the record insert fail the whole request;
// attachment and publish failures are logged and skipped so one bad image
// never loses the submission.
func (s *NewsService) Create(ctx context.Context, authorID string, req CreateNewsRequest) (*models.News, error) {
	if authorID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "author identity required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid news payload")
	}
	if err := s.validateMedia(req.Media); err != nil {
		return nil, err
	}

	title, err := s.translator.TranslatePair(ctx, req.Title)
	if err != nil {
		return nil, err
	}
	body, err := s.translator.TranslatePair(ctx, req.Body)
	if err != nil {
		return nil, err
	}

	item := &models.News{
		Title:           title.Original,
		TitleTranslated: title.Translated,
		Body:            body.Original,
		BodyTranslated:  body.Translated,
		SourceLang:      title.SourceLang,
		AuthorID:        authorID,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create news item")
	}

	item.Images = s.attachMedia(ctx, item, req.Media, 0)

	if req.PublishToSocial && s.social != nil {
		s.publishToSocial(ctx, item)
	}
	return item, nil
}

// Update replaces the text, re-translates both fields, and appends any new
// media after the existing images.
func (s *NewsService) Update(ctx context.Context, id string, req UpdateNewsRequest) (*models.News, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid news payload")
	}
	if err := s.validateMedia(req.Media); err != nil {
		return nil, err
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "news item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load news item")
	}

	title, err := s.translator.TranslatePair(ctx, req.Title)
	if err != nil {
		return nil, err
	}
	body, err := s.translator.TranslatePair(ctx, req.Body)
	if err != nil {
		return nil, err
	}

	item.Title = title.Original
	item.TitleTranslated = title.Translated
	item.Body = body.Original
	item.BodyTranslated = body.Translated
	item.SourceLang = title.SourceLang
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update news item")
	}

	existing, err := s.repo.ListImages(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load news images")
	}
	added := s.attachMedia(ctx, item, req.Media, len(existing))
	item.Images = append(existing, added...)
	return item, nil
}

// Delete removes the stored images, the image rows, and finally the record.
// A failure at any step aborts the cascade so nothing is silently orphaned.
func (s *NewsService) Delete(ctx context.Context, id string) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "news item not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load news item")
	}

	images, err := s.repo.ListImages(ctx, item.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load news images")
	}
	for _, image := range images {
		if err := s.storage.Delete(image.StoragePath); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete stored image")
		}
		if err := s.repo.DeleteImage(ctx, image.ID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete image record")
		}
	}

	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete news item")
	}
	return nil
}

// attachMedia normalizes and stores each upload in order. Each upload is
// independent: a failure logs a warning and moves on, and the stored
// position always mirrors the upload's position in the request.
func (s *NewsService) attachMedia(ctx context.Context, item *models.News, media []MediaUpload, offset int) []models.NewsImage {
	attached := make([]models.NewsImage, 0, len(media))
	for i, upload := range media {
		normalized, err := s.normalizer.Normalize(upload.Data)
		if err != nil {
			s.logger.Warn("skipping attachment that failed normalization",
				zap.String("news_id", item.ID),
				zap.String("filename", upload.Filename),
				zap.Int("position", i),
				zap.Error(err))
			continue
		}

		path := fmt.Sprintf("news/%s/%s.jpg", item.AuthorID, uuid.NewString())
		if _, err := s.storage.Save(path, normalized); err != nil {
			s.logger.Warn("skipping attachment that failed upload",
				zap.String("news_id", item.ID),
				zap.String("filename", upload.Filename),
				zap.Int("position", i),
				zap.Error(err))
			continue
		}

		image := &models.NewsImage{
			NewsID:      item.ID,
			StoragePath: path,
			SortOrder:   offset + i,
		}
		if err := s.repo.CreateImage(ctx, image); err != nil {
			s.logger.Warn("skipping attachment that failed to persist",
				zap.String("news_id", item.ID),
				zap.String("filename", upload.Filename),
				zap.Int("position", i),
				zap.Error(err))
			continue
		}
		attached = append(attached, *image)
	}
	return attached
}

// validateMedia enforces the per-request attachment bounds before any
// translation or persistence happens.
func (s *NewsService) validateMedia(media []MediaUpload) error {
	if s.limits.MaxFiles > 0 && len(media) > s.limits.MaxFiles {
		return appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("at most %d images are allowed per item", s.limits.MaxFiles))
	}
	if s.limits.MaxUploadBytes <= 0 {
		return nil
	}
	for _, upload := range media {
		if int64(len(upload.Data)) > s.limits.MaxUploadBytes {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("image %q exceeds the %d byte upload limit", upload.Filename, s.limits.MaxUploadBytes))
		}
	}
	return nil
}

// publishToSocial posts the full text plus the public URLs of the images
// that made it into storage. Called after attachMedia so item.Images only
// holds successfully stored attachments.
func (s *NewsService) publishToSocial(ctx context.Context, item *models.News) {
	link := ""
	if s.publicBaseURL != "" {
		link = fmt.Sprintf("%s/nyheder/%s", s.publicBaseURL, item.ID)
	}
	message := item.Title + "\n\n" + item.Body
	if urls := s.mediaURLs(item.Images); len(urls) > 0 {
		message += "\n\n" + strings.Join(urls, "\n")
	}
	postURL, err := s.social.Publish(ctx, message, link)
	if err != nil {
		s.logger.Warn("social publish failed; news item saved without post link",
			zap.String("news_id", item.ID),
			zap.Error(err))
		return
	}
	if err := s.repo.SetSocialPostLink(ctx, item.ID, postURL); err != nil {
		s.logger.Warn("failed to store social post link",
			zap.String("news_id", item.ID),
			zap.Error(err))
		return
	}
	item.SocialPostLink = &postURL
}

func (s *NewsService) mediaURLs(images []models.NewsImage) []string {
	if s.publicBaseURL == "" {
		return nil
	}
	urls := make([]string, 0, len(images))
	for _, image := range images {
		urls = append(urls, fmt.Sprintf("%s/uploads/%s", s.publicBaseURL, image.StoragePath))
	}
	return urls
}
