package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shelfwise/shelfwise-backend/api/controllers"
	"github.com/shelfwise/shelfwise-backend/api/routes"
	"github.com/shelfwise/shelfwise-backend/internal/devices"
	"github.com/shelfwise/shelfwise-backend/internal/locations"
	"github.com/shelfwise/shelfwise-backend/internal/notifications"
	"github.com/shelfwise/shelfwise-backend/internal/products"
	"github.com/shelfwise/shelfwise-backend/internal/scan"
	"github.com/shelfwise/shelfwise-backend/internal/scanlog"
	"github.com/shelfwise/shelfwise-backend/internal/stock"
	"github.com/shelfwise/shelfwise-backend/pkg/catalog"
	"github.com/shelfwise/shelfwise-backend/pkg/config"
	"github.com/shelfwise/shelfwise-backend/pkg/db"
	"github.com/shelfwise/shelfwise-backend/pkg/logger"
	"github.com/shelfwise/shelfwise-backend/pkg/metrics"
	"github.com/shelfwise/shelfwise-backend/pkg/migrate"
	"github.com/shelfwise/shelfwise-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	scanMetrics := metrics.NewScanMetrics(prometheus.DefaultRegisterer)
	catalogClient := catalog.NewClient(
		catalog.WithBaseURL(cfg.Catalog.BaseURL),
		catalog.WithTimeout(cfg.Catalog.Timeout),
	)

	deviceService, err := devices.NewService(devices.ServiceParams{
		Repo:     devices.NewRepository(dbClient.DB()),
		Cache:    redisClient,
		CacheTTL: cfg.Scan.DeviceCacheTTL,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create devices service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(products.ServiceParams{
		Repo:           products.NewRepository(dbClient.DB()),
		Catalog:        catalogClient,
		CatalogTimeout: cfg.Catalog.Timeout,
		MaxTags:        cfg.Scan.MaxProductTags,
		Metrics:        scanMetrics,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	stockService, err := stock.NewService(stock.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create stock service", err)
		os.Exit(1)
	}

	scanLogService, err := scanlog.NewService(scanlog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create scan log service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	locationService, err := locations.NewService(locations.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create locations service", err)
		os.Exit(1)
	}

	scanService, err := scan.NewService(scan.ServiceParams{
		Devices:       deviceService,
		Products:      productService,
		Stock:         stockService,
		ScanLog:       scanLogService,
		Notifications: notificationService,
		Metrics:       scanMetrics,
		Logger:        logg,
		FanoutTimeout: cfg.Scan.FanoutTimeout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create scan service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config: cfg,
			Logger: logg,
			ReadyChecks: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
			Scan:          scanService,
			Devices:       deviceService,
			Products:      productService,
			Locations:     locationService,
			Stock:         stockService,
			ScanLog:       scanLogService,
			Notifications: notificationService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
