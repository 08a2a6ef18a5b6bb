//go:build integration

package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/samirrijal/muralmap/internal/adapters/postgres"
	"github.com/samirrijal/muralmap/internal/core/domain"
	"github.com/samirrijal/muralmap/internal/pkg/config"
)

// setupTestDB connects to the configured database and applies the extras schema.
func setupTestDB(t *testing.T) *postgres.DB {
	cfg, err := config.Load("muralmap-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := postgres.New(ctx, cfg.Database.DSN(), 2)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	schema, err := os.ReadFile("../../../migrations/001_extra_murals.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if _, err := db.Pool.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

func clearIDs(t *testing.T, db *postgres.DB, ids ...int) {
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM extra_murals WHERE id = ANY($1)`, ids)
	})
}

func TestExtraMuralRepo_UpsertAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := postgres.NewExtraMuralRepo(db)
	ctx := context.Background()
	clearIDs(t, db, 900001, 900002)

	murals := []domain.Mural{
		{ID: 900002, Name: "Second", Location: domain.GeoPoint{Lat: 37.81, Lon: -122.26}, Zoom: 13, Blank: 1, Maps: 17},
		{ID: 900001, Name: "First", Location: domain.GeoPoint{Lat: 37.80, Lon: -122.27}, Address: "Oakland", Zoom: 13, Blank: 1, Maps: 17},
	}
	if err := repo.UpsertBatch(ctx, murals); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	murals[1].Name = "First (renamed)"
	if err := repo.UpsertBatch(ctx, murals[1:]); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := repo.ExtraMurals(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	byID := map[int]domain.Mural{}
	var order []int
	for _, m := range got {
		if m.ID == 900001 || m.ID == 900002 {
			byID[m.ID] = m
			order = append(order, m.ID)
		}
	}
	if len(order) != 2 || order[0] != 900001 {
		t.Fatalf("expected both murals ordered by id, got %v", order)
	}
	if byID[900001].Name != "First (renamed)" || byID[900001].Address != "Oakland" {
		t.Errorf("expected update to win, got %+v", byID[900001])
	}
	if byID[900002].Address != "" {
		t.Errorf("expected empty address for NULL, got %q", byID[900002].Address)
	}
}

func TestDB_Ping(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("ping: %v", err)
	}
}
