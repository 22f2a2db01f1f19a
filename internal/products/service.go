package products

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shelfwise/shelfwise-backend/pkg/catalog"
	"github.com/shelfwise/shelfwise-backend/pkg/db"
	"github.com/shelfwise/shelfwise-backend/pkg/db/models"
	"github.com/shelfwise/shelfwise-backend/pkg/errors"
	"github.com/shelfwise/shelfwise-backend/pkg/logger"
	"github.com/shelfwise/shelfwise-backend/pkg/metrics"
	"gorm.io/gorm"
)

// fallbackProductName is assigned when the catalog cannot name a barcode.
// The owner renames the product later from the app.
const fallbackProductName = "new product"

// catalogLookup is the slice of the catalog client the resolver needs.
type catalogLookup interface {
	Lookup(ctx context.Context, barcode string) (*catalog.ProductData, error)
}

// Service resolves barcodes to products, creating and enriching them on first sight.
type Service interface {
	ResolveOrCreate(ctx context.Context, accountID uuid.UUID, barcode string) (*models.Product, error)
	List(ctx context.Context, accountID uuid.UUID) ([]models.Product, error)
}

type serviceImpl struct {
	repo           Repository
	catalog        catalogLookup
	catalogTimeout time.Duration
	maxTags        int
	metrics        *metrics.ScanMetrics
	logger         *logger.Logger
}

// ServiceParams carries the dependencies for NewService.
type ServiceParams struct {
	Repo           Repository
	Catalog        catalogLookup
	CatalogTimeout time.Duration
	MaxTags        int
	Metrics        *metrics.ScanMetrics
	Logger         *logger.Logger
}

// NewService builds the product service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("products: repository is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("products: logger is required")
	}
	if params.CatalogTimeout <= 0 {
		params.CatalogTimeout = 8 * time.Second
	}
	if params.MaxTags <= 0 {
		params.MaxTags = 3
	}
	return &serviceImpl{
		repo:           params.Repo,
		catalog:        params.Catalog,
		catalogTimeout: params.CatalogTimeout,
		maxTags:        params.MaxTags,
		metrics:        params.Metrics,
		logger:         params.Logger,
	}, nil
}

// ResolveOrCreate returns the account's product for the barcode, creating it on
// first sight. Catalog enrichment is best-effort: a miss, timeout, or upstream
// failure still yields a product, named with a placeholder the owner can edit.
func (s *serviceImpl) ResolveOrCreate(ctx context.Context, accountID uuid.UUID, barcode string) (*models.Product, error) {
	if barcode == "" {
		return nil, errors.New(errors.CodeValidation, "barcode is required")
	}

	existing, err := s.repo.FindByBarcode(ctx, accountID, barcode)
	if err == nil {
		return existing, nil
	}
	if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(errors.CodeDependency, err, "failed to look up product")
	}

	data := s.lookupCatalog(ctx, barcode)

	product := &models.Product{
		ID:        uuid.New(),
		AccountID: accountID,
		Barcode:   &barcode,
		Name:      fallbackProductName,
	}
	if data != nil {
		applyCatalogData(product, data)
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "idx_products_account_barcode") {
			// Another scan of the same barcode won the insert. Use its row.
			return s.resolveExisting(ctx, accountID, barcode)
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "failed to create product")
	}

	s.createTags(ctx, product, data)

	return product, nil
}

func (s *serviceImpl) List(ctx context.Context, accountID uuid.UUID) ([]models.Product, error) {
	products, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "failed to list products")
	}
	return products, nil
}

// lookupCatalog queries the external catalog under its own deadline. Any
// failure is absorbed: the scan must not stall or fail because the catalog is
// slow or down.
func (s *serviceImpl) lookupCatalog(ctx context.Context, barcode string) *catalog.ProductData {
	if s.catalog == nil {
		return nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.catalogTimeout)
	defer cancel()

	data, err := s.catalog.Lookup(lookupCtx, barcode)
	if err != nil {
		if stdErrors.Is(err, catalog.ErrNotFound) {
			s.metrics.IncCatalogLookup("miss")
			return nil
		}
		s.metrics.IncCatalogLookup("error")
		logCtx := s.logger.WithField(ctx, "error", err.Error())
		s.logger.Warn(logCtx, "catalog lookup failed, creating product without enrichment")
		return nil
	}

	s.metrics.IncCatalogLookup("hit")
	return data
}

func applyCatalogData(product *models.Product, data *catalog.ProductData) {
	if data.Name != "" {
		product.Name = data.Name
	}
	product.Brand = optional(data.Brand)
	product.ImageURL = optional(data.ImageURL)
	product.Ingredients = optional(data.Ingredients)
	product.NutriScore = optional(data.NutriScore)
	product.EcoScore = optional(data.EcoScore)
	product.Allergens = optional(data.Allergens)
	product.Origin = optional(data.Origin)
	product.Packaging = optional(data.Packaging)
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// createTags stores up to maxTags category tags. Tag persistence is
// best-effort, a failure never rolls back the product itself.
func (s *serviceImpl) createTags(ctx context.Context, product *models.Product, data *catalog.ProductData) {
	if data == nil || len(data.Categories) == 0 {
		return
	}

	categories := data.Categories
	if len(categories) > s.maxTags {
		categories = categories[:s.maxTags]
	}

	tags := make([]models.ProductTag, 0, len(categories))
	for _, category := range categories {
		if category == "" {
			continue
		}
		tags = append(tags, models.ProductTag{
			ID:        uuid.New(),
			ProductID: product.ID,
			Tag:       category,
		})
	}

	if err := s.repo.CreateTags(ctx, tags); err != nil {
		logCtx := s.logger.WithField(ctx, "error", err.Error())
		s.logger.Warn(logCtx, "failed to store product tags")
		return
	}
	product.Tags = tags
}

func (s *serviceImpl) resolveExisting(ctx context.Context, accountID uuid.UUID, barcode string) (*models.Product, error) {
	existing, err := s.repo.FindByBarcode(ctx, accountID, barcode)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "failed to resolve product after conflict")
	}
	return existing, nil
}
