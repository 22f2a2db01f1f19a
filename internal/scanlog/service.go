package scanlog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shelfwise/shelfwise-backend/pkg/db/models"
	"github.com/shelfwise/shelfwise-backend/pkg/enums"
	pkgerrors "github.com/shelfwise/shelfwise-backend/pkg/errors"
	"github.com/shelfwise/shelfwise-backend/pkg/pagination"
)

// Service records and serves the scan history.
type Service interface {
	Append(ctx context.Context, params AppendParams) error
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo Repository
}

// AppendParams describes one ingestion event to record.
type AppendParams struct {
	AccountID   uuid.UUID
	DeviceID    uuid.UUID
	ProductID   uuid.UUID
	LocationID  *uuid.UUID
	Action      enums.ScanAction
	Quantity    int
	ProductName string
}

// ListParams configures pagination for the scan history.
type ListParams struct {
	AccountID uuid.UUID
	Limit     int
	Cursor    string
}

// ListResult wraps returned entries and the cursor for the next page.
type ListResult struct {
	Items  []models.ScanLogEntry `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires scan log dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "scan log repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Append(ctx context.Context, params AppendParams) error {
	if params.AccountID == uuid.Nil || params.DeviceID == uuid.Nil || params.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account, device and product ids required")
	}
	if !params.Action.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown scan action")
	}
	if params.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	entry := &models.ScanLogEntry{
		ID:          uuid.New(),
		AccountID:   params.AccountID,
		DeviceID:    params.DeviceID,
		ProductID:   params.ProductID,
		LocationID:  params.LocationID,
		Action:      params.Action,
		Quantity:    params.Quantity,
		ProductName: params.ProductName,
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append scan log entry")
	}
	return nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.AccountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}

	query := listEntriesParams{
		AccountID: params.AccountID,
		Limit:     params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	entries, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list scan log")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  entries,
		Cursor: cursor,
	}, nil
}
