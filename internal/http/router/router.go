package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"github.com/yectos/projects-api/internal/auth"
	"github.com/yectos/projects-api/internal/config"
	"github.com/yectos/projects-api/internal/http/handler"
	"github.com/yectos/projects-api/internal/http/middleware"
	"github.com/yectos/projects-api/internal/metrics"
	"go.uber.org/zap"

	_ "github.com/yectos/projects-api/docs" // registers the OpenAPI document
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	authMiddleware   *auth.Middleware
	rateLimiter      *middleware.RateLimiter
	healthHandler    *handler.HealthHandler
	authHandler      *handler.AuthHandler
	projectHandler   *handler.ProjectHandler
	dashboardHandler *handler.DashboardHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	projectHandler *handler.ProjectHandler,
	dashboardHandler *handler.DashboardHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		authMiddleware:   authMiddleware,
		rateLimiter:      rateLimiter,
		healthHandler:    healthHandler,
		authHandler:      authHandler,
		projectHandler:   projectHandler,
		dashboardHandler: dashboardHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	if rt.cfg.Metrics.Enabled {
		r.Use(middleware.Metrics)
	}
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	r.Get("/health", rt.healthHandler.Live)
	r.Get("/health/db", rt.healthHandler.Database)
	r.Get("/health/ready", rt.healthHandler.Ready)

	if rt.cfg.Metrics.Enabled {
		r.Handle(rt.cfg.Metrics.Path, metrics.Handler())
	}

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
			r.Use(chimw.Timeout(timeout))
		}

		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.LimitByUser)

			r.Get("/auth/me", rt.authHandler.Me)

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", rt.projectHandler.List)
				r.Post("/", rt.projectHandler.Create)
				r.Get("/tags", rt.projectHandler.Tags)
				r.Get("/export", rt.projectHandler.Export)
				r.Get("/{id}", rt.projectHandler.GetByID)
				r.Put("/{id}", rt.projectHandler.Update)
				r.Delete("/{id}", rt.projectHandler.Delete)
				r.Get("/{id}/activities", rt.projectHandler.GetActivities)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/stats", rt.dashboardHandler.GetStats)
				r.Get("/charts", rt.dashboardHandler.GetCharts)
				r.Get("/history", rt.dashboardHandler.GetHistory)
			})
		})
	})

	return r
}
