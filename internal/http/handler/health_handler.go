package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/yectos/projects-api/internal/cache"
	"github.com/yectos/projects-api/internal/database"
	"github.com/yectos/projects-api/internal/events"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const healthCheckTimeout = 3 * time.Second

var errBrokerDisconnected = errors.New("broker connection closed")

// connectionReporter is implemented by event publishers that hold a broker connection
type connectionReporter interface {
	IsConnected() bool
}

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	db        *gorm.DB
	cache     cache.Cache
	publisher events.Publisher
	logger    *zap.Logger
}

// NewHealthHandler creates a HealthHandler. The publisher is only checked when
// it reports its broker connection.
func NewHealthHandler(db *gorm.DB, dashboardCache cache.Cache, publisher events.Publisher, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		cache:     dashboardCache,
		publisher: publisher,
		logger:    logger,
	}
}

// Live is the basic liveness probe
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Database reports database health with pool statistics
func (h *HealthHandler) Database(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	stats, err := database.HealthCheckWithStats(ctx, h.db)
	if err != nil {
		h.logger.Error("Database health check failed", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unhealthy",
			"error":   err.Error(),
			"service": "database",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "database",
		"stats":   stats,
	})
}

// Ready checks every dependency the API needs to serve traffic
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := make(map[string]interface{})
	allHealthy := true

	record := func(name string, err error) {
		if err != nil {
			h.logger.Error("health check failed", zap.String("dependency", name), zap.Error(err))
			checks[name] = map[string]interface{}{"status": "unhealthy", "error": err.Error()}
			allHealthy = false
			return
		}
		checks[name] = map[string]interface{}{"status": "healthy"}
	}

	record("database", database.HealthCheck(ctx, h.db))
	record("cache", h.cache.Ping(ctx))

	if reporter, ok := h.publisher.(connectionReporter); ok {
		var err error
		if !reporter.IsConnected() {
			err = errBrokerDisconnected
		}
		record("events", err)
	}

	status, code := "healthy", http.StatusOK
	if !allHealthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	respondJSON(w, code, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}
