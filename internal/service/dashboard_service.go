package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yectos/projects-api/internal/auth"
	"github.com/yectos/projects-api/internal/cache"
	"github.com/yectos/projects-api/internal/domain"
	"github.com/yectos/projects-api/internal/mapper"
	"github.com/yectos/projects-api/internal/metrics"
	"github.com/yectos/projects-api/internal/repository"
	"github.com/yectos/projects-api/internal/stats"
	"go.uber.org/zap"
)

type DashboardService struct {
	projectRepo  *repository.ProjectRepository
	snapshotRepo *repository.SnapshotRepository
	cache        cache.Cache
	cacheTTL     time.Duration
	logger       *zap.Logger
}

func NewDashboardService(
	projectRepo *repository.ProjectRepository,
	snapshotRepo *repository.SnapshotRepository,
	dashboardCache cache.Cache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		projectRepo:  projectRepo,
		snapshotRepo: snapshotRepo,
		cache:        dashboardCache,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

// GetStats returns aggregate statistics over all of the caller's projects
func (s *DashboardService) GetStats(ctx context.Context) (*domain.DashboardStats, error) {
	key := cache.DashboardStatsKey(auth.UserIDFromContext(ctx))

	var cached domain.DashboardStats
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	projects, err := s.projectRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	result := stats.ComputeDashboardStats(projects)
	s.store(ctx, key, result)
	return &result, nil
}

// GetCharts returns the chart series for the caller's dashboard
func (s *DashboardService) GetCharts(ctx context.Context) (*domain.DashboardCharts, error) {
	key := cache.DashboardChartsKey(auth.UserIDFromContext(ctx))

	var cached domain.DashboardCharts
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	projects, err := s.projectRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	charts := domain.DashboardCharts{
		StatusDistribution: stats.StatusDistribution(projects),
		MonthlyRevenue:     stats.MonthlyRevenue(projects),
		RecentProjects:     mapper.ToProjectDTOs(stats.RecentProjects(projects)),
	}
	s.store(ctx, key, charts)
	return &charts, nil
}

// History returns the caller's stored daily snapshots, newest first
func (s *DashboardService) History(ctx context.Context, limit int) ([]domain.DashboardSnapshotDTO, error) {
	snapshots, err := s.snapshotRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	dtos := make([]domain.DashboardSnapshotDTO, len(snapshots))
	for i := range snapshots {
		dtos[i] = mapper.ToDashboardSnapshotDTO(&snapshots[i])
	}
	return dtos, nil
}

// lookup reads a cached value. Cache errors count as a miss.
func (s *DashboardService) lookup(ctx context.Context, key string, dest interface{}) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		metrics.RecordCacheResult("error")
		s.logger.Warn("dashboard cache read failed", zap.Error(err), zap.String("key", key))
		return false
	}
	if found {
		metrics.RecordCacheResult("hit")
		return true
	}
	metrics.RecordCacheResult("miss")
	return false
}

func (s *DashboardService) store(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err), zap.String("key", key))
	}
}
