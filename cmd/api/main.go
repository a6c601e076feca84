package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/meridian-steel/shop-api/docs"
	"github.com/meridian-steel/shop-api/internal/auth"
	"github.com/meridian-steel/shop-api/internal/config"
	"github.com/meridian-steel/shop-api/internal/database"
	"github.com/meridian-steel/shop-api/internal/domain"
	"github.com/meridian-steel/shop-api/internal/http/handler"
	"github.com/meridian-steel/shop-api/internal/http/middleware"
	"github.com/meridian-steel/shop-api/internal/http/router"
	"github.com/meridian-steel/shop-api/internal/jobs"
	"github.com/meridian-steel/shop-api/internal/legacy"
	"github.com/meridian-steel/shop-api/internal/logger"
	"github.com/meridian-steel/shop-api/internal/repository"
	"github.com/meridian-steel/shop-api/internal/service"
	"github.com/meridian-steel/shop-api/internal/storage"
)

// legacySyncTimeout bounds a single reconciliation pass against the old
// shop system (two max-number queries plus counter updates).
const legacySyncTimeout = 2 * time.Minute

// @title Meridian Steel Shop API
// @version 1.0
// @description Estimating, work order, and purchase order API for the fabrication shop

// @contact.name API Support
// @contact.email support@meridiansteel.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
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

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "shop-api-staging.meridiansteel.com"
	case "production":
		docs.SwaggerInfo.Host = "shop-api.meridiansteel.com"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Legacy shop-system connection (optional, read-only). The API runs fine
	// without it; we just lose nightly number reconciliation.
	legacyClient, err := legacy.NewClient(&cfg.Legacy, log)
	if err != nil {
		log.Warn("Legacy database connection failed, continuing without it", zap.Error(err))
		legacyClient = nil
	}

	// Initialize repositories
	floors := map[domain.NumberKind]int{
		domain.NumberKindPurchaseOrder:   cfg.Numbering.POFloor,
		domain.NumberKindDeliveryReceipt: cfg.Numbering.DRFloor,
	}
	estimateRepo := repository.NewEstimateRepository(db)
	workOrderRepo := repository.NewWorkOrderRepository(db)
	purchaseOrderRepo := repository.NewPurchaseOrderRepository(db)
	laborRuleRepo := repository.NewLaborRuleRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db, floors)
	fileRepo := repository.NewFileRepository(db)

	// Initialize services
	estimateService := service.NewEstimateService(estimateRepo, laborRuleRepo, &cfg.Pricing, log)
	workOrderService := service.NewWorkOrderService(db, workOrderRepo, estimateRepo, sequenceRepo, log)
	purchaseOrderService := service.NewPurchaseOrderService(db, purchaseOrderRepo, sequenceRepo, log)
	laborRuleService := service.NewLaborRuleService(laborRuleRepo, log)
	numberService := service.NewNumberService(sequenceRepo, log)
	fileService := service.NewFileService(fileRepo, fileStorage, cfg.Storage.MaxUploadSizeMB, log)

	// Seed the documented default rules on first boot only
	if err := laborRuleService.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("failed to seed labor minimum rules: %w", err)
	}

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	estimateHandler := handler.NewEstimateHandler(estimateService, log)
	workOrderHandler := handler.NewWorkOrderHandler(workOrderService, log)
	purchaseOrderHandler := handler.NewPurchaseOrderHandler(purchaseOrderService, log)
	laborRuleHandler := handler.NewLaborRuleHandler(laborRuleService, log)
	numberHandler := handler.NewNumberHandler(numberService, log)
	fileHandler := handler.NewFileHandler(fileService, cfg.Storage.MaxUploadSizeMB, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		legacyClient,
		authMiddleware,
		rateLimiter,
		estimateHandler,
		workOrderHandler,
		purchaseOrderHandler,
		laborRuleHandler,
		numberHandler,
		fileHandler,
	)

	// Nightly reconciliation of sequence counters against the legacy tables
	var scheduler *jobs.Scheduler
	if legacyClient.IsEnabled() {
		scheduler = jobs.NewScheduler(log)
		if err := jobs.RegisterNumberSyncJob(
			scheduler,
			legacyClient,
			sequenceRepo,
			log,
			cfg.Legacy.SyncSchedule,
			legacySyncTimeout,
			true, // catch up at startup, not just at 3am
		); err != nil {
			log.Error("Failed to register number sync job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with number sync job",
				zap.String("cron_expr", cfg.Legacy.SyncSchedule),
			)
		}
	} else {
		log.Info("Legacy number sync disabled",
			zap.Bool("legacy_enabled", cfg.Legacy.Enabled),
		)
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
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if err := legacyClient.Close(); err != nil {
			log.Warn("Error closing legacy database connection", zap.Error(err))
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
