package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"sync"

	"github.com/samirrijal/muralmap/internal/adapters/extras"
	"github.com/samirrijal/muralmap/internal/adapters/postgres"
	"github.com/samirrijal/muralmap/internal/app"
	"github.com/samirrijal/muralmap/internal/core/domain"
	"github.com/samirrijal/muralmap/internal/pkg/config"
	"github.com/samirrijal/muralmap/internal/pkg/logging"
)

// Loads hand-maintained mural CSV files into the extra_murals table.
// Usage: extras [file.csv ...]   (default: murals.extras_csv)
func main() {
	cfg, err := config.Load("muralmap-extras")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("muralmap-extras", os.Getenv("LOG_LEVEL"), "text")

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	paths := os.Args[1:]
	if len(paths) == 0 {
		paths = []string{cfg.Murals.ExtrasCSV}
	}

	defaults := app.ExtraDefaults(cfg.Murals)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		parsed = make([]rows, len(paths))
		failed bool
	)
	sem := make(chan struct{}, 4) // max 4 files parsed at once

	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			// A missing file is fine for the API but not here.
			_, err := os.Stat(path)
			var murals []domain.Mural
			if err == nil {
				murals, err = extras.NewCSVSource(path, defaults).ExtraMurals(ctx)
			}
			if err != nil {
				slog.Error("extras file", "path", path, "error", err)
				mu.Lock()
				failed = true
				mu.Unlock()
				return
			}
			slog.Info("extras file parsed", "path", path, "rows", len(murals))
			parsed[i] = murals
		}(i, path)
	}
	wg.Wait()
	if failed {
		os.Exit(1)
	}

	// Files earlier on the command line win on duplicate ids.
	chain := make(extras.Chain, len(parsed))
	for i, r := range parsed {
		chain[i] = r
	}
	murals, err := chain.ExtraMurals(ctx)
	if err != nil {
		log.Fatalf("merge extras: %v", err)
	}

	murals = assignIDs(murals, cfg.Murals.ReserveUntilID+1)
	if err := postgres.NewExtraMuralRepo(db).UpsertBatch(ctx, murals); err != nil {
		log.Fatalf("upsert: %v", err)
	}
	slog.Info("extra murals loaded", "files", len(paths), "rows", len(murals))
}

// assignIDs numbers rows without an id from next upward, skipping ids in use.
func assignIDs(murals []domain.Mural, next int) []domain.Mural {
	used := map[int]bool{}
	for _, m := range murals {
		if m.ID != 0 {
			used[m.ID] = true
		}
	}
	for i := range murals {
		if murals[i].ID != 0 {
			continue
		}
		for used[next] {
			next++
		}
		murals[i].ID = next
		used[next] = true
		next++
	}
	return murals
}

// rows is an already parsed file.
type rows []domain.Mural

func (r rows) ExtraMurals(ctx context.Context) ([]domain.Mural, error) { return r, nil }
