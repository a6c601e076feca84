package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meridian-steel/shop-api/internal/auth"
	"github.com/meridian-steel/shop-api/internal/config"
	"github.com/meridian-steel/shop-api/internal/database"
	"github.com/meridian-steel/shop-api/internal/domain"
	"github.com/meridian-steel/shop-api/internal/http/handler"
	"github.com/meridian-steel/shop-api/internal/http/middleware"
	"github.com/meridian-steel/shop-api/internal/legacy"

	_ "github.com/meridian-steel/shop-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                  *config.Config
	logger               *zap.Logger
	db                   *gorm.DB
	legacyClient         *legacy.Client
	authMiddleware       *auth.Middleware
	rateLimiter          *middleware.RateLimiter
	estimateHandler      *handler.EstimateHandler
	workOrderHandler     *handler.WorkOrderHandler
	purchaseOrderHandler *handler.PurchaseOrderHandler
	laborRuleHandler     *handler.LaborRuleHandler
	numberHandler        *handler.NumberHandler
	fileHandler          *handler.FileHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	legacyClient *legacy.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	estimateHandler *handler.EstimateHandler,
	workOrderHandler *handler.WorkOrderHandler,
	purchaseOrderHandler *handler.PurchaseOrderHandler,
	laborRuleHandler *handler.LaborRuleHandler,
	numberHandler *handler.NumberHandler,
	fileHandler *handler.FileHandler,
) *Router {
	return &Router{
		cfg:                  cfg,
		logger:               logger,
		db:                   db,
		legacyClient:         legacyClient,
		authMiddleware:       authMiddleware,
		rateLimiter:          rateLimiter,
		estimateHandler:      estimateHandler,
		workOrderHandler:     workOrderHandler,
		purchaseOrderHandler: purchaseOrderHandler,
		laborRuleHandler:     laborRuleHandler,
		numberHandler:        numberHandler,
		fileHandler:          fileHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		// The legacy link is optional; an unhealthy legacy connection is
		// reported but never fails readiness.
		checks["legacy"] = rt.legacyClient.HealthCheck(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Estimates
			r.Route("/estimates", func(r chi.Router) {
				r.Get("/", rt.estimateHandler.List)
				r.Post("/", rt.estimateHandler.Create)
				r.Get("/{id}", rt.estimateHandler.GetByID)
				r.Put("/{id}", rt.estimateHandler.Update)
				r.Delete("/{id}", rt.estimateHandler.Delete)
				r.Post("/{id}/status", rt.estimateHandler.SetStatus)
				r.Get("/{id}/breakdown", rt.estimateHandler.Breakdown)
				r.Post("/{id}/recompute", rt.estimateHandler.Recompute)
				r.Post("/{id}/convert", rt.workOrderHandler.ConvertEstimate)

				// Parts
				r.Post("/{id}/parts", rt.estimateHandler.AddPart)
				r.Put("/{id}/parts/{partId}", rt.estimateHandler.UpdatePart)
				r.Delete("/{id}/parts/{partId}", rt.estimateHandler.RemovePart)

				r.Get("/{id}/files", rt.fileHandler.ListByEstimate)
			})

			// Work orders
			r.Route("/work-orders", func(r chi.Router) {
				r.Get("/", rt.workOrderHandler.List)
				r.Get("/by-number/{number}", rt.workOrderHandler.GetByDRNumber)
				r.Get("/{id}", rt.workOrderHandler.GetByID)
				r.Post("/{id}/status", rt.workOrderHandler.SetStatus)
				r.Get("/{id}/files", rt.fileHandler.ListByWorkOrder)
			})

			// Purchase orders
			r.Route("/purchase-orders", func(r chi.Router) {
				r.Get("/", rt.purchaseOrderHandler.List)
				r.Post("/", rt.purchaseOrderHandler.Create)
				r.Get("/{id}", rt.purchaseOrderHandler.GetByID)
				r.Post("/{id}/receive", rt.purchaseOrderHandler.MarkReceived)
				r.Post("/{id}/void", rt.purchaseOrderHandler.VoidNumber)
				r.Post("/{id}/release", rt.purchaseOrderHandler.ReleaseNumber)
			})

			// Reference numbers
			r.Route("/numbers/{kind}", func(r chi.Router) {
				r.Get("/", rt.numberHandler.List)
				r.Post("/allocate", rt.numberHandler.Allocate)
				r.Post("/reserve", rt.numberHandler.Reserve)
				r.Get("/{number}", rt.numberHandler.Get)
				r.Delete("/{number}", rt.numberHandler.Release)
				r.Post("/{number}/void", rt.numberHandler.Void)
			})

			// Labor minimum rules (admin-managed configuration)
			r.Route("/labor-rules", func(r chi.Router) {
				r.Get("/", rt.laborRuleHandler.List)
				r.Get("/{id}", rt.laborRuleHandler.GetByID)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(domain.RoleAdmin, domain.RoleAPIService))
					r.Post("/", rt.laborRuleHandler.Create)
					r.Put("/{id}", rt.laborRuleHandler.Update)
					r.Delete("/{id}", rt.laborRuleHandler.Delete)
				})
			})

			// Files
			r.Route("/files", func(r chi.Router) {
				r.Post("/upload", rt.fileHandler.Upload)
				r.Get("/{id}", rt.fileHandler.GetByID)
				r.Get("/{id}/download", rt.fileHandler.Download)
				r.Delete("/{id}", rt.fileHandler.Delete)
			})
		})
	})

	return r
}
