package main

import (
	"alcyxob/sales-reports/internal/api"
	"alcyxob/sales-reports/internal/config"
	"alcyxob/sales-reports/internal/logging"
	"alcyxob/sales-reports/internal/metrics"
	"alcyxob/sales-reports/internal/repository"
	"alcyxob/sales-reports/internal/repository/mongo"
	"alcyxob/sales-reports/internal/service"
	"alcyxob/sales-reports/internal/storage"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// @title Vendor Sales Report API
// @version 1.0
// @description Upload, list, download and delete vendor sales reports.
// @BasePath /api/v1
func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		zap.NewExample().Fatal("could not load config", zap.Error(err))
	}

	logger := logging.New(cfg.Log.Level)
	logger.Info("configuration loaded",
		zap.String("storageDriver", cfg.Storage.Driver),
		zap.Bool("database", cfg.Database.Enabled))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()

	// run returns instead of exiting so its deferred cleanup always happens.
	if err != nil {
		logger.Error("server exited with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("server exiting")
	_ = logger.Sync()
}

// disconnectDB is replaced in tests.
var disconnectDB = mongo.DisconnectDB

// run wires the server from cfg and serves until ctx is done.
func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	uploadMetrics := metrics.New(registry)

	// --- Initialize Storage ---
	fileStorage, err := storage.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize file storage: %w", err)
	}

	// --- Database Connection ---
	var reportRepo repository.ReportRepository
	if cfg.Database.Enabled {
		dbClient, err := mongo.ConnectDB(ctx, cfg.Database.URI)
		if err != nil {
			return fmt.Errorf("connect to MongoDB: %w", err)
		}
		defer func() {
			logger.Info("disconnecting MongoDB")
			if err := disconnectDB(dbClient); err != nil {
				logger.Error("failed to disconnect MongoDB", zap.Error(err))
			}
		}()

		indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
		appDB, err := mongo.PrepareDatabase(indexCtx, dbClient, cfg.Database.Name)
		cancel()
		if err != nil {
			return fmt.Errorf("prepare database: %w", err)
		}
		reportRepo = mongo.NewMongoReportRepository(appDB)
		logger.Info("database connection established", zap.String("database", cfg.Database.Name))
	} else {
		logger.Warn("database disabled; report listing, download and delete are unavailable")
	}

	// --- Initialize Services ---
	reportService := service.NewReportService(fileStorage, reportRepo, uploadMetrics, logger,
		service.WithPresignExpiry(cfg.Storage.PresignExpiry))

	// --- Initialize Gin Engine ---
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestIDMiddleware(), api.LoggerMiddleware(logger))

	routeOpts := api.RouteOptions{MaxUploadBytes: cfg.Server.MaxUploadBytes}
	if cfg.Metrics.Enabled {
		routeOpts.MetricsHandler = metrics.Handler(registry)
	}
	api.SetupRoutes(router, reportService, routeOpts)

	// --- Start HTTP Server ---
	// No write timeout: large uploads stream to storage for as long as they take.
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	select {
	case err := <-listenErr:
		return fmt.Errorf("listen: %w", err)
	default:
	}
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
