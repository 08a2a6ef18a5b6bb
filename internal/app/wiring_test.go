package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/samirrijal/muralmap/internal/adapters/memory"
	"github.com/samirrijal/muralmap/internal/pkg/config"
	"github.com/samirrijal/muralmap/internal/viewer"
)

func TestMapOptions_MatchesDefaults(t *testing.T) {
	cfg, err := config.Load("muralmap-test")
	if err != nil {
		t.Fatal(err)
	}
	got := MapOptions(cfg.Map)
	want := viewer.DefaultMapOptions()
	if got != want {
		t.Errorf("expected configured defaults to match the viewer defaults\n got: %+v\nwant: %+v", got, want)
	}
}

func TestDatasetOptions(t *testing.T) {
	cfg, err := config.Load("muralmap-test")
	if err != nil {
		t.Fatal(err)
	}
	opts := DatasetOptions(cfg)
	if opts.FirstID != 707 || opts.ReserveUntilID != 1600 || opts.ReserveMap != 21 {
		t.Errorf("unexpected dataset options %+v", opts)
	}
	if opts.IndexURL != cfg.LocalWiki.IndexURL {
		t.Errorf("expected reserved link to the index page, got %q", opts.IndexURL)
	}
}

func TestExtras_CSVOnly(t *testing.T) {
	cfg, err := config.Load("muralmap-test")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "extra_murals.csv")
	csv := "name,latitude,longitude\nLake Mural,37.80,-122.26\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.Murals.ExtrasCSV = path

	murals, err := Extras(cfg, nil).ExtraMurals(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(murals) != 1 || murals[0].Name != "Lake Mural" {
		t.Fatalf("unexpected extras %+v", murals)
	}
	if murals[0].Maps != 17 || murals[0].Icon != "art_black_t.png" {
		t.Errorf("expected defaults applied, got %+v", murals[0])
	}
}

func TestCache_FallsBackToMemory(t *testing.T) {
	cache, vc, closeFn := Cache(config.ValkeyConfig{Addr: "127.0.0.1:1"})
	defer closeFn()

	if vc != nil {
		t.Fatal("expected no valkey client")
	}
	if _, ok := cache.(*memory.Cache); !ok {
		t.Errorf("expected memory cache, got %T", cache)
	}
}

func TestDatabase_Disabled(t *testing.T) {
	if db := Database(context.Background(), config.DatabaseConfig{}); db != nil {
		t.Error("expected nil database when disabled")
	}
}
