package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/muralmap/internal/core/domain"
)

// RefreshWorkflowID is the fixed ID of the scheduled refresh, so only one runs.
const RefreshWorkflowID = "mural-refresh"

// RefreshInput is the input for the refresh workflow.
type RefreshInput struct {
	Reason string
}

// RefreshWorkflow syncs the extra murals and rebuilds the published
// collection. A failed sync is logged and the rebuild still runs with
// whatever the database already holds.
func RefreshWorkflow(ctx workflow.Context, input RefreshInput) (*domain.DataRefresh, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting mural refresh", "reason", input.Reason)

	syncCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 1 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})

	// Step 1: copy the extras file into the database
	var synced int
	if err := workflow.ExecuteActivity(syncCtx, "SyncExtras").Get(ctx, &synced); err != nil {
		logger.Warn("extra murals sync failed, rebuilding anyway", "error", err)
	}

	// Step 2: scrape and rebuild. A full scrape fetches every mural page
	// with a throttle between them.
	rebuildCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Minute,
			BackoffCoefficient: 2,
			MaximumAttempts:    3,
		},
	})

	var refresh domain.DataRefresh
	if err := workflow.ExecuteActivity(rebuildCtx, "RebuildCollection").Get(ctx, &refresh); err != nil {
		return nil, err
	}

	logger.Info("Mural refresh complete", "features", refresh.Features, "synced", synced)
	return &refresh, nil
}
