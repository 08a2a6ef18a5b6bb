package workflows

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/muralmap/internal/core/domain"
	"github.com/samirrijal/muralmap/internal/core/ports"
	"github.com/samirrijal/muralmap/internal/core/usecases"
)

// RefreshActivities holds the activity implementations for the refresh workflow.
type RefreshActivities struct {
	Murals *usecases.MuralService
	// ExtrasFile and ExtrasRepo are optional. When both are set the file is
	// copied into the table before the rebuild.
	ExtrasFile ports.ExtraMuralSource
	ExtrasRepo ports.ExtraMuralRepository
}

// SyncExtras upserts the hand-maintained murals file into the database and
// returns how many rows it wrote.
func (a *RefreshActivities) SyncExtras(ctx context.Context) (int, error) {
	if a.ExtrasFile == nil || a.ExtrasRepo == nil {
		return 0, nil
	}
	murals, err := a.ExtrasFile.ExtraMurals(ctx)
	if err != nil {
		return 0, fmt.Errorf("read extra murals: %w", err)
	}
	if len(murals) == 0 {
		return 0, nil
	}
	if err := a.ExtrasRepo.UpsertBatch(ctx, murals); err != nil {
		return 0, fmt.Errorf("upsert extra murals: %w", err)
	}
	slog.Info("extra murals synced", "rows", len(murals))
	return len(murals), nil
}

// RebuildCollection scrapes the wiki, replaces the cached collection, and
// announces the refresh.
func (a *RefreshActivities) RebuildCollection(ctx context.Context) (*domain.DataRefresh, error) {
	r, err := a.Murals.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("rebuild collection: %w", err)
	}
	return r, nil
}
