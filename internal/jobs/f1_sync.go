package jobs

import (
	"context"

	"pitwall/internal/services"
)

// F1SyncJobName identifies the daily data sync in scheduler logs.
const F1SyncJobName = "f1-data-sync"

// F1SyncJob adapts the sync service to the scheduler. The admin re-run
// endpoint reuses the same Run path.
type F1SyncJob struct {
	sync *services.SyncService
}

// NewF1SyncJob creates the sync job wrapper.
func NewF1SyncJob(sync *services.SyncService) *F1SyncJob {
	return &F1SyncJob{sync: sync}
}

// Run executes one sync cycle.
func (j *F1SyncJob) Run(ctx context.Context) error {
	return j.sync.Run(ctx)
}
