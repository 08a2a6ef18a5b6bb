package extras

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samirrijal/muralmap/internal/core/domain"
	"github.com/samirrijal/muralmap/internal/core/ports"
)

// Chain reads several sources in order and concatenates their murals.
// Murals with an id already seen are dropped, so a row loaded into the
// database and still present in the CSV appears once. A failing source is
// skipped; the chain only fails when every source does.
type Chain []ports.ExtraMuralSource

// ExtraMurals implements ports.ExtraMuralSource.
func (c Chain) ExtraMurals(ctx context.Context) ([]domain.Mural, error) {
	var (
		out  []domain.Mural
		errs []error
	)
	seen := map[int]bool{}
	for i, src := range c {
		murals, err := src.ExtraMurals(ctx)
		if err != nil {
			slog.Warn("extra murals source failed, skipping", "source", i, "error", err)
			errs = append(errs, err)
			continue
		}
		for _, m := range murals {
			if m.ID != 0 && seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			out = append(out, m)
		}
	}
	if len(c) > 0 && len(errs) == len(c) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
