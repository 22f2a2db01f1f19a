package locations

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shelfwise/shelfwise-backend/pkg/db/models"
	pkgerrors "github.com/shelfwise/shelfwise-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service manages the account's storage locations.
type Service interface {
	Create(ctx context.Context, accountID uuid.UUID, name string) (*models.Location, error)
	List(ctx context.Context, accountID uuid.UUID) ([]models.Location, error)
	Get(ctx context.Context, accountID, locationID uuid.UUID) (*models.Location, error)
}

type service struct {
	repo Repository
}

// NewService wires location dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "locations repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, accountID uuid.UUID, name string) (*models.Location, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location name required")
	}

	location := &models.Location{
		ID:        uuid.New(),
		AccountID: accountID,
		Name:      name,
	}
	if err := s.repo.Create(ctx, location); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create location")
	}
	return location, nil
}

func (s *service) List(ctx context.Context, accountID uuid.UUID) ([]models.Location, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	locations, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list locations")
	}
	return locations, nil
}

func (s *service) Get(ctx context.Context, accountID, locationID uuid.UUID) (*models.Location, error) {
	if accountID == uuid.Nil || locationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account and location ids required")
	}
	location, err := s.repo.FindByID(ctx, accountID, locationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch location")
	}
	return location, nil
}
