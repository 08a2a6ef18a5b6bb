package extras

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samirrijal/muralmap/internal/core/domain"
)

var defaults = domain.Mural{Address: "Oakland, CA", Zoom: 13, Icon: "art_black_t.png", Blank: 1, Maps: 17}

func TestParse(t *testing.T) {
	in := "\xef\xbb\xbfid,name,latitude,longitude,popup,maps\n" +
		"1601,Lake Merritt Wall,37.8044,-122.2590,\"<b>wall</b>\",21.0\n" +
		",No Position,,\n" +
		"1602,Second,37.81,-122.27,,\n"

	murals, err := Parse(strings.NewReader(in), defaults)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(murals) != 2 {
		t.Fatalf("expected 2 murals, got %d", len(murals))
	}

	m := murals[0]
	if m.ID != 1601 || m.Name != "Lake Merritt Wall" || m.Maps != 21 || m.Popup != "<b>wall</b>" {
		t.Errorf("unexpected first mural %+v", m)
	}
	if m.Location.Lat != 37.8044 || m.Location.Lon != -122.2590 {
		t.Errorf("unexpected location %+v", m.Location)
	}
	if m.Address != "Oakland, CA" || m.Zoom != 13 {
		t.Errorf("expected defaults to fill empty columns, got %+v", m)
	}
	if murals[1].Maps != 17 {
		t.Errorf("expected default maps 17, got %d", murals[1].Maps)
	}
}

func TestParse_MissingColumn(t *testing.T) {
	if _, err := Parse(strings.NewReader("name,latitude\nx,1\n"), defaults); err == nil {
		t.Error("expected error for missing longitude column")
	}
}

func TestParse_Empty(t *testing.T) {
	murals, err := Parse(strings.NewReader(""), defaults)
	if err != nil || murals != nil {
		t.Errorf("expected no murals and no error, got %v, %v", murals, err)
	}
}

func TestCSVSource_MissingFile(t *testing.T) {
	src := NewCSVSource(filepath.Join(t.TempDir(), "nope.csv"), defaults)
	murals, err := src.ExtraMurals(context.Background())
	if err != nil {
		t.Fatalf("missing file should not be an error, got %v", err)
	}
	if len(murals) != 0 {
		t.Errorf("expected no murals, got %d", len(murals))
	}
}

func TestCSVSource_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra_murals.csv")
	if err := os.WriteFile(path, []byte("name,latitude,longitude\nA,37.8,-122.2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	murals, err := NewCSVSource(path, defaults).ExtraMurals(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(murals) != 1 || murals[0].Name != "A" {
		t.Errorf("unexpected murals %+v", murals)
	}
}

type staticSource []domain.Mural

func (s staticSource) ExtraMurals(ctx context.Context) ([]domain.Mural, error) { return s, nil }

func TestChain_DropsDuplicateIDs(t *testing.T) {
	chain := Chain{
		staticSource{{ID: 1601, Name: "db"}},
		staticSource{{ID: 1601, Name: "csv"}, {ID: 1602, Name: "csv only"}, {Name: "no id"}},
	}
	murals, err := chain.ExtraMurals(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(murals) != 3 {
		t.Fatalf("expected 3 murals, got %d", len(murals))
	}
	if murals[0].Name != "db" || murals[1].ID != 1602 {
		t.Errorf("unexpected order %+v", murals)
	}
}

type failingSource struct{ err error }

func (s failingSource) ExtraMurals(ctx context.Context) ([]domain.Mural, error) { return nil, s.err }

func TestChain_SkipsFailingSource(t *testing.T) {
	chain := Chain{
		failingSource{err: errors.New("database down")},
		staticSource{{ID: 1601, Name: "csv"}},
	}
	murals, err := chain.ExtraMurals(context.Background())
	if err != nil {
		t.Fatalf("expected the csv murals despite the failing source, got %v", err)
	}
	if len(murals) != 1 || murals[0].Name != "csv" {
		t.Errorf("unexpected murals %+v", murals)
	}
}

func TestChain_AllSourcesFail(t *testing.T) {
	dbErr := errors.New("database down")
	chain := Chain{failingSource{err: dbErr}, failingSource{err: errors.New("csv unreadable")}}
	if _, err := chain.ExtraMurals(context.Background()); !errors.Is(err, dbErr) {
		t.Errorf("expected joined source errors, got %v", err)
	}
}
