package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shelfwise/shelfwise-backend/internal/devices"
	"github.com/shelfwise/shelfwise-backend/internal/notifications"
	"github.com/shelfwise/shelfwise-backend/internal/scanlog"
	"github.com/shelfwise/shelfwise-backend/internal/stock"
	"github.com/shelfwise/shelfwise-backend/pkg/db/models"
	"github.com/shelfwise/shelfwise-backend/pkg/enums"
	pkgerrors "github.com/shelfwise/shelfwise-backend/pkg/errors"
	"github.com/shelfwise/shelfwise-backend/pkg/logger"
	"github.com/shelfwise/shelfwise-backend/pkg/metrics"
	"go.uber.org/multierr"
)

// IngestParams is one scan event as presented by a device.
type IngestParams struct {
	Serial   string
	Barcode  string
	Action   enums.ScanAction
	Quantity int
}

// IngestResult is the device-facing outcome of a scan.
type IngestResult struct {
	ProductID   uuid.UUID
	ProductName string
}

// deviceResolver, productResolver and stockAdjuster are the slices of
// the downstream services the pipeline needs. scanRecorder and
// notificationPublisher are the fan-out targets.
type deviceResolver interface {
	ResolveBySerial(ctx context.Context, serial string) (*devices.ResolvedDevice, error)
}

type productResolver interface {
	ResolveOrCreate(ctx context.Context, accountID uuid.UUID, barcode string) (*models.Product, error)
}

type stockAdjuster interface {
	Adjust(ctx context.Context, locationID, productID uuid.UUID, action enums.ScanAction, magnitude int) (*stock.Adjustment, error)
}

type scanRecorder interface {
	Append(ctx context.Context, params scanlog.AppendParams) error
}

type notificationPublisher interface {
	Publish(ctx context.Context, params notifications.PublishParams) error
}

// Service runs the scan ingestion pipeline end to end.
type Service interface {
	Ingest(ctx context.Context, params IngestParams) (*IngestResult, error)
}

type serviceImpl struct {
	devices       deviceResolver
	products      productResolver
	stock         stockAdjuster
	scanLog       scanRecorder
	notifications notificationPublisher
	metrics       *metrics.ScanMetrics
	logg          *logger.Logger
	fanoutTimeout time.Duration
}

// ServiceParams wires the ingestion pipeline dependencies.
type ServiceParams struct {
	Devices       deviceResolver
	Products      productResolver
	Stock         stockAdjuster
	ScanLog       scanRecorder
	Notifications notificationPublisher
	Metrics       *metrics.ScanMetrics
	Logger        *logger.Logger
	FanoutTimeout time.Duration
}

// NewService builds the scan ingestion service.
func NewService(params ServiceParams) (Service, error) {
	if params.Devices == nil || params.Products == nil || params.Stock == nil {
		return nil, fmt.Errorf("scan: devices, products and stock services are required")
	}
	if params.ScanLog == nil || params.Notifications == nil {
		return nil, fmt.Errorf("scan: fan-out targets are required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("scan: logger is required")
	}
	if params.FanoutTimeout <= 0 {
		params.FanoutTimeout = 10 * time.Second
	}
	return &serviceImpl{
		devices:       params.Devices,
		products:      params.Products,
		stock:         params.Stock,
		scanLog:       params.ScanLog,
		notifications: params.Notifications,
		metrics:       params.Metrics,
		logg:          params.Logger,
		fanoutTimeout: params.FanoutTimeout,
	}, nil
}

// Ingest runs one scan through the pipeline: resolve the device, resolve or
// create the product, move stock, then fan out the bookkeeping writes. The
// device gets a definitive answer; fan-out failures are logged and counted
// but never surface to the scanner.
func (s *serviceImpl) Ingest(ctx context.Context, params IngestParams) (*IngestResult, error) {
	started := time.Now()
	action := params.Action
	if action == "" {
		action = enums.ScanActionAdd
	}
	quantity := params.Quantity
	if quantity == 0 {
		quantity = 1
	}

	result, err := s.ingest(ctx, params.Serial, params.Barcode, action, quantity)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.metrics.IncScan(action.String(), outcome)
	s.metrics.ObserveDuration(action.String(), time.Since(started))
	return result, err
}

func (s *serviceImpl) ingest(ctx context.Context, serial, barcode string, action enums.ScanAction, quantity int) (*IngestResult, error) {
	if !action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown scan action")
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	ctx = s.logg.WithDeviceSerial(ctx, serial)
	ctx = s.logg.WithBarcode(ctx, barcode)

	device, err := s.devices.ResolveBySerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithAccountID(ctx, device.AccountID.String())

	product, err := s.products.ResolveOrCreate(ctx, device.AccountID, barcode)
	if err != nil {
		return nil, err
	}

	// a device without a location still logs and notifies, it just cannot
	// move stock anywhere
	if device.LocationID != nil {
		if _, err := s.stock.Adjust(ctx, *device.LocationID, product.ID, action, quantity); err != nil {
			return nil, err
		}
	}

	s.fanOut(ctx, device, product, action, quantity)

	return &IngestResult{
		ProductID:   product.ID,
		ProductName: product.Name,
	}, nil
}

// fanOut runs the scan log append and the notification publish concurrently
// and waits for both. Failures are absorbed: the stock movement is already
// committed, so the device response must not depend on bookkeeping writes.
func (s *serviceImpl) fanOut(ctx context.Context, device *devices.ResolvedDevice, product *models.Product, action enums.ScanAction, quantity int) {
	fanoutCtx, cancel := context.WithTimeout(ctx, s.fanoutTimeout)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		combined error
	)
	fail := func(target string, err error) {
		mu.Lock()
		combined = multierr.Append(combined, fmt.Errorf("%s: %w", target, err))
		mu.Unlock()
		s.metrics.IncFanoutFailure(target)
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		err := s.scanLog.Append(fanoutCtx, scanlog.AppendParams{
			AccountID:   device.AccountID,
			DeviceID:    device.DeviceID,
			ProductID:   product.ID,
			LocationID:  device.LocationID,
			Action:      action,
			Quantity:    quantity,
			ProductName: product.Name,
		})
		if err != nil {
			fail("scan_log", err)
		}
	}()
	go func() {
		defer wg.Done()
		err := s.notifications.Publish(fanoutCtx, notifications.PublishParams{
			AccountID: device.AccountID,
			Type:      enums.NotificationTypeScan,
			Title:     "Pantry updated",
			Message:   scanMessage(product.Name, device.LocationName, action, quantity),
		})
		if err != nil {
			fail("notification", err)
		}
	}()
	wg.Wait()

	if combined != nil {
		logCtx := s.logg.WithField(ctx, "error", combined.Error())
		s.logg.Error(logCtx, "scan fan-out partially failed", combined)
	}
}

func scanMessage(productName string, locationName *string, action enums.ScanAction, quantity int) string {
	verb := "added to"
	if action == enums.ScanActionRemove {
		verb = "removed from"
	}
	place := "pantry"
	if locationName != nil && *locationName != "" {
		place = *locationName
	}
	return fmt.Sprintf("%dx %s %s %s", quantity, productName, verb, place)
}
