package products

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shelfwise/shelfwise-backend/pkg/catalog"
	"github.com/shelfwise/shelfwise-backend/pkg/db/models"
	pkgerrors "github.com/shelfwise/shelfwise-backend/pkg/errors"
	"github.com/shelfwise/shelfwise-backend/pkg/logger"
	"gorm.io/gorm"
)

type fakeRepository struct {
	findFn       func(ctx context.Context, accountID uuid.UUID, barcode string) (*models.Product, error)
	createFn     func(ctx context.Context, product *models.Product) error
	createTagsFn func(ctx context.Context, tags []models.ProductTag) error

	created     []*models.Product
	createdTags []models.ProductTag
	findCalls   int
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) FindByBarcode(ctx context.Context, accountID uuid.UUID, barcode string) (*models.Product, error) {
	f.findCalls++
	if f.findFn != nil {
		return f.findFn(ctx, accountID, barcode)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) Create(ctx context.Context, product *models.Product) error {
	if f.createFn != nil {
		if err := f.createFn(ctx, product); err != nil {
			return err
		}
	}
	f.created = append(f.created, product)
	return nil
}

func (f *fakeRepository) CreateTags(ctx context.Context, tags []models.ProductTag) error {
	if f.createTagsFn != nil {
		if err := f.createTagsFn(ctx, tags); err != nil {
			return err
		}
	}
	f.createdTags = append(f.createdTags, tags...)
	return nil
}

func (f *fakeRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.Product, error) {
	return nil, nil
}

type fakeCatalog struct {
	data *catalog.ProductData
	err  error
	wait time.Duration
}

func (f *fakeCatalog) Lookup(ctx context.Context, barcode string) (*catalog.ProductData, error) {
	if f.wait > 0 {
		select {
		case <-time.After(f.wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func newTestService(t *testing.T, repo Repository, lookup catalogLookup, timeout time.Duration) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:           repo,
		Catalog:        lookup,
		CatalogTimeout: timeout,
		MaxTags:        3,
		Logger:         logger.New(logger.Options{ServiceName: "test"}),
	})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc
}

func TestService_ResolveOrCreateEnriched(t *testing.T) {
	repo := &fakeRepository{}
	lookup := &fakeCatalog{data: &catalog.ProductData{
		Barcode:    "8000000000017",
		Name:       "Pasta Rossi",
		Brand:      "Rossi",
		NutriScore: "a",
		Categories: []string{"pasta", "dried goods", "italian", "staples"},
	}}

	svc := newTestService(t, repo, lookup, time.Second)
	product, err := svc.ResolveOrCreate(context.Background(), uuid.New(), "8000000000017")
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if product.Name != "Pasta Rossi" {
		t.Fatalf("expected catalog name, got %q", product.Name)
	}
	if product.Brand == nil || *product.Brand != "Rossi" {
		t.Fatalf("expected brand, got %+v", product.Brand)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 created product, got %d", len(repo.created))
	}
	if len(product.Tags) != 3 {
		t.Fatalf("expected tag cap of 3, got %d", len(product.Tags))
	}
	if product.Tags[0].Tag != "pasta" {
		t.Fatalf("unexpected first tag %q", product.Tags[0].Tag)
	}
}

func TestService_ResolveOrCreateExisting(t *testing.T) {
	accountID := uuid.New()
	existing := &models.Product{ID: uuid.New(), AccountID: accountID, Name: "Oat Milk"}
	repo := &fakeRepository{
		findFn: func(ctx context.Context, gotAccount uuid.UUID, barcode string) (*models.Product, error) {
			if gotAccount != accountID {
				t.Fatalf("unexpected account %s", gotAccount)
			}
			return existing, nil
		},
	}

	svc := newTestService(t, repo, &fakeCatalog{err: errors.New("must not be called")}, time.Second)
	product, err := svc.ResolveOrCreate(context.Background(), accountID, "5000000000012")
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if product.ID != existing.ID {
		t.Fatalf("expected existing product, got %s", product.ID)
	}
	if len(repo.created) != 0 {
		t.Fatal("expected no insert for known barcode")
	}
}

func TestService_ResolveOrCreateCatalogMiss(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(t, repo, &fakeCatalog{err: catalog.ErrNotFound}, time.Second)

	product, err := svc.ResolveOrCreate(context.Background(), uuid.New(), "4000000000002")
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if product.Name != fallbackProductName {
		t.Fatalf("expected fallback name, got %q", product.Name)
	}
	if product.Brand != nil {
		t.Fatalf("expected no enrichment, got brand %q", *product.Brand)
	}
	if len(repo.createdTags) != 0 {
		t.Fatal("expected no tags without catalog data")
	}
}

func TestService_ResolveOrCreateCatalogTimeout(t *testing.T) {
	repo := &fakeRepository{}
	lookup := &fakeCatalog{wait: time.Second, data: &catalog.ProductData{Name: "Too Late"}}

	svc := newTestService(t, repo, lookup, 20*time.Millisecond)
	start := time.Now()
	product, err := svc.ResolveOrCreate(context.Background(), uuid.New(), "3000000000009")
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("lookup did not respect its deadline, took %s", elapsed)
	}
	if product.Name != fallbackProductName {
		t.Fatalf("expected fallback name after timeout, got %q", product.Name)
	}
}

func TestService_ResolveOrCreateInsertRace(t *testing.T) {
	accountID := uuid.New()
	winner := &models.Product{ID: uuid.New(), AccountID: accountID, Name: "Tomato Paste"}
	repo := &fakeRepository{
		createFn: func(ctx context.Context, product *models.Product) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_products_account_barcode"}
		},
	}
	repo.findFn = func(ctx context.Context, gotAccount uuid.UUID, barcode string) (*models.Product, error) {
		if repo.findCalls == 1 {
			return nil, gorm.ErrRecordNotFound
		}
		return winner, nil
	}

	svc := newTestService(t, repo, &fakeCatalog{err: catalog.ErrNotFound}, time.Second)
	product, err := svc.ResolveOrCreate(context.Background(), accountID, "2000000000005")
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if product.ID != winner.ID {
		t.Fatalf("expected the winning row, got %s", product.ID)
	}
}

func TestService_ResolveOrCreateTagFailureTolerated(t *testing.T) {
	repo := &fakeRepository{
		createTagsFn: func(ctx context.Context, tags []models.ProductTag) error {
			return errors.New("tags table unavailable")
		},
	}
	lookup := &fakeCatalog{data: &catalog.ProductData{Name: "Rice", Categories: []string{"grains"}}}

	svc := newTestService(t, repo, lookup, time.Second)
	product, err := svc.ResolveOrCreate(context.Background(), uuid.New(), "1000000000001")
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if product.Name != "Rice" {
		t.Fatalf("expected catalog name, got %q", product.Name)
	}
	if len(product.Tags) != 0 {
		t.Fatal("expected no tags attached after tag write failure")
	}
}

func TestService_ResolveOrCreateBlankBarcode(t *testing.T) {
	svc := newTestService(t, &fakeRepository{}, nil, time.Second)
	_, err := svc.ResolveOrCreate(context.Background(), uuid.New(), "")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %s", code)
	}
}
