package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shelfwise/shelfwise-backend/api/responses"
	"github.com/shelfwise/shelfwise-backend/api/validators"
	"github.com/shelfwise/shelfwise-backend/internal/devices"
	pkgerrors "github.com/shelfwise/shelfwise-backend/pkg/errors"
	"github.com/shelfwise/shelfwise-backend/pkg/logger"
)

type assignLocationRequest struct {
	LocationID *uuid.UUID `json:"location_id"`
}

// ListDevices returns the account's paired scanners.
func ListDevices(svc devices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "devices service unavailable"))
			return
		}

		accountID, err := accountIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.List(r.Context(), accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// AssignDeviceLocation points a scanner at a storage location. A null
// location detaches the device, scans then log without moving stock.
func AssignDeviceLocation(svc devices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "devices service unavailable"))
			return
		}

		accountID, err := accountIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deviceID, err := uuid.Parse(chi.URLParam(r, "deviceId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid device id"))
			return
		}

		var req assignLocationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.AssignLocation(r.Context(), accountID, deviceID, req.LocationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"assigned": true})
	}
}
