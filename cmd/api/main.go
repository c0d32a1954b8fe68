package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yectos/projects-api/docs"
	"github.com/yectos/projects-api/internal/auth"
	"github.com/yectos/projects-api/internal/cache"
	"github.com/yectos/projects-api/internal/config"
	"github.com/yectos/projects-api/internal/database"
	"github.com/yectos/projects-api/internal/events"
	"github.com/yectos/projects-api/internal/http/handler"
	"github.com/yectos/projects-api/internal/http/middleware"
	"github.com/yectos/projects-api/internal/http/router"
	"github.com/yectos/projects-api/internal/jobs"
	"github.com/yectos/projects-api/internal/logger"
	"github.com/yectos/projects-api/internal/repository"
	"github.com/yectos/projects-api/internal/service"
	"github.com/yectos/projects-api/internal/storage"
	"go.uber.org/zap"
)

// @title Yectos Projects API
// @version 1.0
// @description Project, payment and stage tracking for freelancers and small studios
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@yectos.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description ID token issued by the identity provider, as "Bearer <token>"

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Basic configuration first so logging can come up before secrets resolve
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if host := os.Getenv("SWAGGER_HOST"); host != "" {
		docs.SwaggerInfo.Host = host
	} else {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// In development secrets come from the environment, elsewhere from Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Warn("Database auto-migration applied; use cmd/migrate outside development")
	}

	dashboardCache := cache.New(&cfg.Cache, log)
	defer func() {
		if err := dashboardCache.Close(); err != nil {
			log.Warn("Error closing cache", zap.Error(err))
		}
	}()

	// Events degrade to a no-op publisher when the broker is unreachable
	publisher, err := events.New(&cfg.Events, log)
	if err != nil {
		log.Warn("Event publisher unavailable, events will be dropped", zap.Error(err))
		publisher = events.NoopPublisher{}
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("Error closing event publisher", zap.Error(err))
		}
	}()

	var exportStore storage.Storage
	if cfg.Jobs.ExportEnabled {
		exportStore, err = storage.NewStorage(&cfg.Storage, log)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		log.Info("Export storage initialized", zap.String("mode", cfg.Storage.Mode))
	}

	projectRepo := repository.NewProjectRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	projectService := service.NewProjectService(projectRepo, activityRepo, dashboardCache, publisher, log)
	dashboardService := service.NewDashboardService(projectRepo, snapshotRepo, dashboardCache, cfg.Cache.TTLDuration(), log)
	snapshotService := service.NewSnapshotService(projectRepo, snapshotRepo, publisher, exportStore, log)

	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	rt := router.NewRouter(
		cfg,
		log,
		authMiddleware,
		rateLimiter,
		handler.NewHealthHandler(db, dashboardCache, publisher, log),
		handler.NewAuthHandler(log),
		handler.NewProjectHandler(projectService, log),
		handler.NewDashboardHandler(dashboardService, log),
	)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)
		snapshotJob := jobs.NewSnapshotJob(snapshotService, log, cfg.Jobs.SnapshotTimeoutDuration())
		if err := scheduler.AddJob(jobs.SnapshotJobName, cfg.Jobs.SnapshotSchedule, snapshotJob.Run); err != nil {
			return fmt.Errorf("failed to register snapshot job: %w", err)
		}
		scheduler.Start()
		log.Info("Scheduler started",
			zap.String("cron_expr", cfg.Jobs.SnapshotSchedule),
			zap.Duration("timeout", cfg.Jobs.SnapshotTimeoutDuration()),
			zap.Bool("export_enabled", exportStore != nil),
		)
	} else {
		log.Info("Background jobs disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
