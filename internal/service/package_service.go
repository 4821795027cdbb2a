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

// PackageRepository abstracts persistence for lesson packages and features.
type PackageRepository interface {
	List(ctx context.Context) ([]models.Package, error)
	GetByID(ctx context.Context, id string) (*models.Package, error)
	Create(ctx context.Context, pkg *models.Package) error
	Update(ctx context.Context, pkg *models.Package) error
	Delete(ctx context.Context, id string) error
	ListFeatures(ctx context.Context, packageID string) ([]models.PackageFeature, error)
	ReplaceFeatures(ctx context.Context, packageID string, features []models.PackageFeature) error
	ListAllFeatures(ctx context.Context) ([]models.Feature, error)
	CreateFeature(ctx context.Context, feature *models.Feature) error
}

// PackageFeatureInput links one feature into a package.
type PackageFeatureInput struct {
	FeatureID string `json:"feature_id" validate:"required"`
	Included  bool   `json:"included"`
}

// SavePackageRequest holds the editable package fields. Features replace the
// existing set in the order given.
type SavePackageRequest struct {
	Title      string                `json:"title" validate:"required,min=2,max=100"`
	PriceCents int64                 `json:"price_cents" validate:"required,min=0"`
	Currency   string                `json:"currency" validate:"required,len=3"`
	Highlight  bool                  `json:"highlight"`
	SortOrder  int                   `json:"sort_order" validate:"min=0"`
	Features   []PackageFeatureInput `json:"features" validate:"dive"`
}

// CreateFeatureRequest adds a reusable feature label.
type CreateFeatureRequest struct {
	Label string `json:"label" validate:"required,min=2,max=200"`
}

// PackageService manages pricing packages and their feature lists.
type PackageService struct {
	repo      PackageRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPackageService wires the package service.
func NewPackageService(repo PackageRepository, logger *zap.Logger) *PackageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PackageService{repo: repo, validator: validator.New(), logger: logger}
}

// List returns all packages with their features attached.
func (s *PackageService) List(ctx context.Context) ([]models.Package, error) {
	packages, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list packages")
	}
	for i := range packages {
		features, err := s.repo.ListFeatures(ctx, packages[i].ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load package features")
		}
		packages[i].Features = features
	}
	return packages, nil
}

// Get returns one package with features.
func (s *PackageService) Get(ctx context.Context, id string) (*models.Package, error) {
	pkg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "package not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load package")
	}
	features, err := s.repo.ListFeatures(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load package features")
	}
	pkg.Features = features
	return pkg, nil
}

// Create stores a new package and its feature links.
func (s *PackageService) Create(ctx context.Context, req SavePackageRequest) (*models.Package, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid package payload")
	}

	pkg := &models.Package{
		Title:      req.Title,
		PriceCents: req.PriceCents,
		Currency:   req.Currency,
		Highlight:  req.Highlight,
		SortOrder:  req.SortOrder,
	}
	if err := s.repo.Create(ctx, pkg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create package")
	}
	if err := s.repo.ReplaceFeatures(ctx, pkg.ID, featureLinks(pkg.ID, req.Features)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store package features")
	}
	return s.Get(ctx, pkg.ID)
}

// Update modifies a package and replaces its feature links.
func (s *PackageService) Update(ctx context.Context, id string, req SavePackageRequest) (*models.Package, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid package payload")
	}

	pkg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	pkg.Title = req.Title
	pkg.PriceCents = req.PriceCents
	pkg.Currency = req.Currency
	pkg.Highlight = req.Highlight
	pkg.SortOrder = req.SortOrder
	if err := s.repo.Update(ctx, pkg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update package")
	}
	if err := s.repo.ReplaceFeatures(ctx, id, featureLinks(id, req.Features)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store package features")
	}
	return s.Get(ctx, id)
}

// Delete removes a package.
func (s *PackageService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete package")
	}
	return nil
}

// ListFeatures returns the reusable feature catalog.
func (s *PackageService) ListFeatures(ctx context.Context) ([]models.Feature, error) {
	features, err := s.repo.ListAllFeatures(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list features")
	}
	return features, nil
}

// CreateFeature adds a reusable feature label.
func (s *PackageService) CreateFeature(ctx context.Context, req CreateFeatureRequest) (*models.Feature, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feature payload")
	}
	feature := &models.Feature{Label: req.Label}
	if err := s.repo.CreateFeature(ctx, feature); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create feature")
	}
	return feature, nil
}

func featureLinks(packageID string, inputs []PackageFeatureInput) []models.PackageFeature {
	links := make([]models.PackageFeature, 0, len(inputs))
	for i, input := range inputs {
		links = append(links, models.PackageFeature{
			PackageID: packageID,
			FeatureID: input.FeatureID,
			SortOrder: i,
			Included:  input.Included,
		})
	}
	return links
}
