package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yectos/projects-api/internal/auth"
	"github.com/yectos/projects-api/internal/domain"
	"github.com/yectos/projects-api/internal/events"
	"github.com/yectos/projects-api/internal/export"
	"github.com/yectos/projects-api/internal/mapper"
	"github.com/yectos/projects-api/internal/metrics"
	"github.com/yectos/projects-api/internal/repository"
	"github.com/yectos/projects-api/internal/stats"
	"github.com/yectos/projects-api/internal/storage"
	"go.uber.org/zap"
)

// SnapshotRetention is how long daily dashboard snapshots are kept
const SnapshotRetention = 400 * 24 * time.Hour

// SnapshotResult summarizes one snapshot run
type SnapshotResult struct {
	Users    int
	Failed   int
	Exported int
	Pruned   int64
}

// SnapshotService records a daily copy of every user's dashboard statistics
// and optionally archives an export of their projects
type SnapshotService struct {
	projectRepo  *repository.ProjectRepository
	snapshotRepo *repository.SnapshotRepository
	publisher    events.Publisher
	store        storage.Storage
	logger       *zap.Logger
}

// NewSnapshotService creates a SnapshotService. A nil store disables export archiving.
func NewSnapshotService(
	projectRepo *repository.ProjectRepository,
	snapshotRepo *repository.SnapshotRepository,
	publisher events.Publisher,
	store storage.Storage,
	logger *zap.Logger,
) *SnapshotService {
	return &SnapshotService{
		projectRepo:  projectRepo,
		snapshotRepo: snapshotRepo,
		publisher:    publisher,
		store:        store,
		logger:       logger,
	}
}

// RecordAll snapshots every project owner for the day containing now. A
// failure for one user is logged and does not stop the run.
func (s *SnapshotService) RecordAll(ctx context.Context, now time.Time) (*SnapshotResult, error) {
	owners, err := s.projectRepo.ListOwners(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list project owners: %w", err)
	}

	result := &SnapshotResult{Users: len(owners)}
	for _, userID := range owners {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		exported, err := s.RecordForUser(ctx, userID, now)
		if err != nil {
			result.Failed++
			s.logger.Error("failed to record dashboard snapshot",
				zap.Error(err),
				zap.String("user_id", userID))
			continue
		}
		if exported {
			result.Exported++
		}
	}

	cutoff := now.UTC().Add(-SnapshotRetention)
	pruned, err := s.snapshotRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Warn("failed to prune old snapshots", zap.Error(err))
	}
	result.Pruned = pruned

	return result, nil
}

// RecordForUser stores today's statistics for one user and reports whether an
// export was archived
func (s *SnapshotService) RecordForUser(ctx context.Context, userID string, now time.Time) (bool, error) {
	ctx = auth.WithUserContext(ctx, &auth.UserContext{UserID: userID, DisplayName: "snapshot job"})

	projects, err := s.projectRepo.ListAll(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load projects: %w", err)
	}

	dashboard := stats.ComputeDashboardStats(projects)
	snapshot := mapper.ToDashboardSnapshot(userID, now.UTC(), dashboard)
	if err := s.snapshotRepo.Upsert(ctx, snapshot); err != nil {
		return false, fmt.Errorf("failed to store snapshot: %w", err)
	}

	event := events.SnapshotEvent{
		EventID: uuid.New(),
		UserID:  userID,
		TakenOn: snapshot.TakenOn.Format("2006-01-02"),
		Stats:   dashboard,
	}
	pubErr := s.publisher.Publish(ctx, events.SnapshotRecorded, event)
	metrics.RecordEventPublished(events.SnapshotRecorded, pubErr == nil)
	if pubErr != nil {
		s.logger.Warn("failed to publish snapshot event", zap.Error(pubErr), zap.String("user_id", userID))
	}

	if s.store == nil {
		return false, nil
	}
	if err := s.archive(ctx, userID, projects, now); err != nil {
		return false, err
	}
	return true, nil
}

// archive writes the user's projects to exports/<user>/<day>.json
func (s *SnapshotService) archive(ctx context.Context, userID string, projects []domain.Project, now time.Time) error {
	var buf bytes.Buffer
	doc := export.NewDocument(userID, projects, now)
	if err := export.Encode(&buf, doc, export.FormatJSON); err != nil {
		return err
	}

	key := storage.ExportKey(userID, now, export.FormatJSON.Extension())
	size, err := s.store.Put(ctx, key, export.FormatJSON.ContentType(), &buf)
	if err != nil {
		return fmt.Errorf("failed to archive export: %w", err)
	}

	s.logger.Debug("project export archived",
		zap.String("user_id", userID),
		zap.String("key", key),
		zap.Int64("size", size))
	return nil
}
