package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/shelfwise/shelfwise-backend/api/middleware"
	"github.com/shelfwise/shelfwise-backend/api/responses"
	"github.com/shelfwise/shelfwise-backend/internal/products"
	pkgerrors "github.com/shelfwise/shelfwise-backend/pkg/errors"
	"github.com/shelfwise/shelfwise-backend/pkg/logger"
)

// ListProducts returns every product the account has scanned.
func ListProducts(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
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

func accountIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.AccountIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account context missing")
	}
	accountID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid account id")
	}
	return accountID, nil
}
