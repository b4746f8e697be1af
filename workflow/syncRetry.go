package workflow

import (
	"context"
	"os"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/retail_backend/config"
	"bitbucket.org/mmdatafocus/retail_backend/models"
)

const (
	syncRetryBatchSize   = 50
	syncRetryMaxInterval = 10 * time.Minute
)

// RunPendingSyncRetry pushes every pending mutation's current quantities to
// the POS once. Delivery is at-least-once; the POS patch carries absolute
// quantities so a duplicate push is harmless. Returns how many mutations
// transitioned to synced and how many are still pending after the pass.
func RunPendingSyncRetry(ctx context.Context) (synced int, failed int, err error) {
	if primaryClient == nil {
		return 0, 0, nil
	}

	pending, err := models.ListPendingSyncMutations(ctx, syncRetryBatchSize)
	if err != nil {
		return 0, 0, err
	}

	logger := config.GetLogger()
	for _, mutation := range pending {
		if pushErr := pushMutationQuantities(ctx, mutation); pushErr != nil {
			failed++
			config.LogError(logger, "workflow", "RunPendingSyncRetry", "pushMutationQuantities",
				map[string]any{"mutation_id": mutation.ID, "attempts": mutation.SyncAttempts}, pushErr)
			if markErr := models.MarkMutationSyncFailed(ctx, mutation.ID, pushErr); markErr != nil {
				config.LogError(logger, "workflow", "RunPendingSyncRetry", "MarkMutationSyncFailed", nil, markErr)
			}
			continue
		}
		if markErr := models.MarkMutationSynced(ctx, mutation.ID); markErr != nil {
			config.LogError(logger, "workflow", "RunPendingSyncRetry", "MarkMutationSynced", nil, markErr)
			failed++
			continue
		}
		synced++
	}
	return synced, failed, nil
}

func syncRetryBaseInterval() time.Duration {
	if v := os.Getenv("SYNC_RETRY_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return 30 * time.Second
}

// StartSyncRetryWorker loops RunPendingSyncRetry until ctx is cancelled.
// The interval doubles after a pass with failures, up to ten minutes, and
// resets after a clean pass so a recovered POS drains the backlog quickly.
func StartSyncRetryWorker(ctx context.Context) {
	base := syncRetryBaseInterval()
	interval := base
	logger := config.GetLogger()

	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}

		synced, failed, err := RunPendingSyncRetry(ctx)
		if err != nil {
			config.LogError(logger, "workflow", "StartSyncRetryWorker", "RunPendingSyncRetry", nil, err)
			failed++
		}
		if synced > 0 || failed > 0 {
			logger.WithField("synced", synced).WithField("failed", failed).
				Info("sync retry pass complete")
		}

		if failed > 0 {
			interval *= 2
			if interval > syncRetryMaxInterval {
				interval = syncRetryMaxInterval
			}
		} else {
			interval = base
		}
	}
}
