package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fleetsync/server/internal/config"
	"github.com/fleetsync/server/internal/geotab"
	"github.com/fleetsync/server/internal/handlers"
	"github.com/fleetsync/server/internal/livestate"
	custommw "github.com/fleetsync/server/internal/middleware"
	"github.com/fleetsync/server/internal/observability"
	"github.com/fleetsync/server/internal/repository"
	"github.com/fleetsync/server/internal/services"
)

const version = "1.0.0"

func main() {
	once := flag.Bool("once", false, "run a single sync cycle and exit")
	flag.Parse()

	logger := observability.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry is a no-op unless OTEL_ENABLED is set.
	telemetry, err := observability.Initialize(ctx, observability.NewConfig("fleetsync-syncd", version))
	if err != nil {
		logger.Warnf("Telemetry init failed, continuing without: %v", err)
	} else {
		defer telemetry.Shutdown(context.Background())
	}

	var db *sql.DB
	if cfg.UsePostgres() {
		logger.Info("Using PostgreSQL database")
		db, err = repository.NewPostgresDB(cfg.DatabaseURL)
	} else {
		logger.Info("Using SQLite database")
		db, err = repository.NewSQLiteDB(cfg.DatabasePath)
	}
	if err != nil {
		logger.Errorf("Failed to initialize database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	vehicleRepo := repository.NewVehicleRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	logRepo := repository.NewMaintenanceLogRepository(db)

	// Live-state cache is optional; a nil cache is a no-op.
	var cache *livestate.Cache
	if cfg.Redis.Addr != "" {
		cache, err = livestate.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warnf("Redis unavailable, live state disabled: %v", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	metrics, err := observability.NewSyncMetrics()
	if err != nil {
		logger.Warnf("Metric instruments unavailable: %v", err)
	}

	client := geotab.NewClient(time.Duration(cfg.Geotab.TimeoutSeconds) * time.Second)
	creds := geotab.Credentials{
		Username: cfg.Geotab.Username,
		Password: cfg.Geotab.Password,
		Database: cfg.Geotab.Database,
		Server:   cfg.Geotab.Server,
	}

	hub := services.NewWebSocketHub()
	go hub.Run()

	mailer := services.NewSMTPService(cfg.SMTP, logger)
	reconciler := services.NewReconcileService(vehicleRepo, logger)
	usage := services.NewUsageService(client, vehicleRepo, cache, logger,
		time.Duration(cfg.Sync.ReadingWindowMinutes)*time.Minute)
	evaluator := services.NewEvaluator(time.Duration(cfg.Sync.CooldownHours) * time.Hour)
	dispatcher := services.NewDispatchService(mailer, notificationRepo, scheduleRepo, cache, logger, metrics)
	logService := services.NewLogService(logRepo, scheduleRepo, vehicleRepo, logger)

	syncService := services.NewSyncService(
		client, creds, reconciler, usage, evaluator, dispatcher,
		vehicleRepo, scheduleRepo, hub, logger, metrics,
		time.Duration(cfg.Sync.IntervalSeconds)*time.Second,
		time.Duration(cfg.Sync.AuthRetrySeconds)*time.Second,
	)

	if *once {
		result, err := syncService.RunOnce(ctx)
		if err != nil {
			logger.Errorf("Sync cycle failed: %v", err)
			os.Exit(1)
		}
		logger.WithFields(map[string]interface{}{
			"devices": result.DevicesSeen,
			"synced":  result.VehiclesSynced,
			"fired":   result.AlertsFired,
		}).Info("Single sync cycle complete")
		return
	}

	healthHandler := handlers.NewHealthHandler()
	statusHandler := handlers.NewStatusHandler(syncService, notificationRepo)
	maintenanceHandler := handlers.NewMaintenanceHandler(logService)
	wsHandler := handlers.NewWebSocketHandler(hub)

	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(custommw.APIKeyAuth(cfg.Security.APIKey, cfg.Security.APIKeyHeader))

	r.Get("/health", healthHandler.HealthCheck)
	r.Get("/api/health", healthHandler.HealthCheck)
	r.Get("/api/status", statusHandler.LastCycle)
	r.Get("/api/notifications", statusHandler.ListNotifications)
	r.Post("/api/logs", maintenanceHandler.RecordLog)
	r.Get("/api/ws", wsHandler.HandleConnection)

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("address", cfg.ServerAddress).Info("Status server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Server error: %v", err)
			stop()
		}
	}()

	go func() {
		if err := syncService.Run(ctx); err != nil && err != context.Canceled {
			logger.Errorf("Sync loop exited: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}
	logger.Info("Stopped")
}
