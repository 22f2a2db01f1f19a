package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shelfwise/shelfwise-backend/pkg/enums"
	"github.com/shelfwise/shelfwise-backend/pkg/errors"
)

// Adjustment reports the outcome of one stock movement.
type Adjustment struct {
	LocationID uuid.UUID
	ProductID  uuid.UUID
	Quantity   int
	ScannedAt  time.Time
}

// Service applies scan-driven stock movements and serves inventory reads.
type Service interface {
	Adjust(ctx context.Context, locationID, productID uuid.UUID, action enums.ScanAction, magnitude int) (*Adjustment, error)
	List(ctx context.Context, accountID, locationID uuid.UUID) ([]StockLine, error)
}

type serviceImpl struct {
	repo Repository
}

// NewService builds the stock service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock: repository is required")
	}
	return &serviceImpl{repo: repo}, nil
}

// Adjust moves the count for (location, product) by magnitude in the action's
// direction. Removes saturate at zero rather than failing.
func (s *serviceImpl) Adjust(ctx context.Context, locationID, productID uuid.UUID, action enums.ScanAction, magnitude int) (*Adjustment, error) {
	if locationID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "location id is required")
	}
	if productID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "product id is required")
	}
	if !action.IsValid() {
		return nil, errors.New(errors.CodeValidation, "unknown scan action")
	}
	if magnitude <= 0 {
		return nil, errors.New(errors.CodeValidation, "quantity must be positive")
	}

	delta := magnitude
	if action == enums.ScanActionRemove {
		delta = -magnitude
	}

	scannedAt := time.Now().UTC()
	quantity, err := s.repo.ApplyDelta(ctx, locationID, productID, delta, scannedAt)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "failed to adjust stock")
	}

	return &Adjustment{
		LocationID: locationID,
		ProductID:  productID,
		Quantity:   quantity,
		ScannedAt:  scannedAt,
	}, nil
}

func (s *serviceImpl) List(ctx context.Context, accountID, locationID uuid.UUID) ([]StockLine, error) {
	if locationID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "location id is required")
	}
	lines, err := s.repo.ListByLocation(ctx, accountID, locationID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "failed to list stock")
	}
	return lines, nil
}
