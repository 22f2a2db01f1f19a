package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shelfwise/shelfwise-backend/api/controllers"
	"github.com/shelfwise/shelfwise-backend/api/middleware"
	"github.com/shelfwise/shelfwise-backend/internal/devices"
	"github.com/shelfwise/shelfwise-backend/internal/locations"
	"github.com/shelfwise/shelfwise-backend/internal/notifications"
	"github.com/shelfwise/shelfwise-backend/internal/products"
	"github.com/shelfwise/shelfwise-backend/internal/scan"
	"github.com/shelfwise/shelfwise-backend/internal/scanlog"
	"github.com/shelfwise/shelfwise-backend/internal/stock"
	"github.com/shelfwise/shelfwise-backend/pkg/config"
	"github.com/shelfwise/shelfwise-backend/pkg/logger"
)

// RouterParams carries everything the HTTP surface needs.
type RouterParams struct {
	Config        *config.Config
	Logger        *logger.Logger
	ReadyChecks   map[string]controllers.Pinger
	Scan          scan.Service
	Devices       devices.Service
	Products      products.Service
	Locations     locations.Service
	Stock         stock.Service
	ScanLog       scanlog.Service
	Notifications notifications.Service
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.ReadyChecks))
	})

	r.Handle("/metrics", promhttp.Handler())

	// device-facing ingestion: no bearer auth, the serial is the credential
	r.Group(func(r chi.Router) {
		r.Use(middleware.CORS())
		r.Post("/scan", controllers.IngestScan(params.Scan, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/products", controllers.ListProducts(params.Products, logg))

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", controllers.ListLocations(params.Locations, logg))
			r.Post("/", controllers.CreateLocation(params.Locations, logg))
		})

		r.Get("/stock", controllers.ListStock(params.Stock, logg))
		r.Get("/scan-log", controllers.ListScanLog(params.ScanLog, logg))

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", controllers.ListDevices(params.Devices, logg))
			r.Patch("/{deviceId}/location", controllers.AssignDeviceLocation(params.Devices, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(params.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(params.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(params.Notifications, logg))
		})
	})

	return r
}
