package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/yectos/projects-api/internal/service"
	"go.uber.org/zap"
)

// SnapshotJobName is the name of the daily dashboard snapshot job
const SnapshotJobName = "dashboard_snapshot"

// SnapshotRecorder records the daily statistics of every project owner
type SnapshotRecorder interface {
	RecordAll(ctx context.Context, now time.Time) (*service.SnapshotResult, error)
}

// SnapshotJob stores each user's dashboard statistics once per run
type SnapshotJob struct {
	recorder SnapshotRecorder
	logger   *zap.Logger
	timeout  time.Duration
	now      func() time.Time
}

// NewSnapshotJob creates the snapshot job. The timeout bounds a single run.
func NewSnapshotJob(recorder SnapshotRecorder, logger *zap.Logger, timeout time.Duration) *SnapshotJob {
	return &SnapshotJob{
		recorder: recorder,
		logger:   logger,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Run takes the snapshot for the current day. Per-user failures are counted
// and only fail the run when no user succeeded.
func (j *SnapshotJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	result, err := j.recorder.RecordAll(ctx, j.now())
	if err != nil {
		return fmt.Errorf("snapshot run failed: %w", err)
	}

	j.logger.Info("dashboard snapshot completed",
		zap.Int("users", result.Users),
		zap.Int("failed", result.Failed),
		zap.Int("exported", result.Exported),
		zap.Int64("pruned", result.Pruned))

	if result.Users > 0 && result.Failed == result.Users {
		return fmt.Errorf("snapshot failed for all %d users", result.Users)
	}
	return nil
}
