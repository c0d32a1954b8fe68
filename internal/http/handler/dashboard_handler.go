package handler

import (
	"net/http"

	"github.com/yectos/projects-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// GetStats godoc
// @Summary Dashboard statistics
// @Description Counts per status, revenue totals, completion rate and average value over all of the caller's projects
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DashboardStats
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dashboard/stats [get]
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.GetStats(r.Context())
	if err != nil {
		h.logger.Error("failed to compute dashboard stats", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to compute dashboard statistics")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetCharts godoc
// @Summary Dashboard charts
// @Description Status distribution, revenue of the last six creation months and the five newest projects
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DashboardCharts
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dashboard/charts [get]
func (h *DashboardHandler) GetCharts(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.GetCharts(r.Context())
	if err != nil {
		h.logger.Error("failed to compute dashboard charts", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to compute dashboard charts")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetHistory godoc
// @Summary Dashboard history
// @Description Daily snapshots of the caller's dashboard statistics, newest first
// @Tags Dashboard
// @Produce json
// @Param limit query int false "Maximum snapshots (max 200)" default(30)
// @Success 200 {array} domain.DashboardSnapshotDTO
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dashboard/history [get]
func (h *DashboardHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.History(r.Context(), queryInt(r, "limit"))
	if err != nil {
		h.logger.Error("failed to load dashboard history", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to load dashboard history")
		return
	}
	respondJSON(w, http.StatusOK, result)
}
