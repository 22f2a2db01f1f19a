package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/shelfwise/shelfwise-backend/api/responses"
	"github.com/shelfwise/shelfwise-backend/api/validators"
	"github.com/shelfwise/shelfwise-backend/internal/scan"
	"github.com/shelfwise/shelfwise-backend/pkg/enums"
	pkgerrors "github.com/shelfwise/shelfwise-backend/pkg/errors"
	"github.com/shelfwise/shelfwise-backend/pkg/logger"
)

type scanRequest struct {
	Barcode       string `json:"barcode" validate:"required,numeric"`
	ScannerSerial string `json:"scanner_serial" validate:"required"`
	Action        string `json:"action" validate:"omitempty,oneof=add remove"`
	Quantity      int    `json:"quantity" validate:"omitempty,min=1"`
}

type scanSuccessResponse struct {
	Success     bool      `json:"success"`
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName"`
}

type scanErrorResponse struct {
	Error string `json:"error"`
}

// IngestScan accepts one scan event from a device. The wire shape is flat
// rather than the usual data/error envelope because the callers are embedded
// scanner firmware with a fixed parser.
func IngestScan(svc scan.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			writeScanError(r, w, logg, pkgerrors.New(pkgerrors.CodeInternal, "scan service unavailable"))
			return
		}

		var req scanRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			writeScanError(r, w, logg, err)
			return
		}

		action, err := enums.ParseScanAction(req.Action)
		if err != nil {
			writeScanError(r, w, logg, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid action"))
			return
		}

		result, err := svc.Ingest(r.Context(), scan.IngestParams{
			Serial:   req.ScannerSerial,
			Barcode:  req.Barcode,
			Action:   action,
			Quantity: req.Quantity,
		})
		if err != nil {
			writeScanError(r, w, logg, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, scanSuccessResponse{
			Success:     true,
			ProductID:   result.ProductID,
			ProductName: result.ProductName,
		})
	}
}

func writeScanError(r *http.Request, w http.ResponseWriter, logg *logger.Logger, err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())
	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation, pkgerrors.CodeNotFound:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	responses.LogError(r.Context(), logg, err)
	responses.WriteJSON(w, meta.HTTPStatus, scanErrorResponse{Error: msg})
}
