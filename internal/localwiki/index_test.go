package localwiki

import (
	"testing"
)

const indexFixture = `<html><script>var geoms = [` +
	`["SRID=4326;GEOMETRYCOLLECTION (POINT (-122.2712 37.8044))", "<a href=\"/oakland/Some_Mural\">Some Mural</a>"], ` +
	`["SRID=4326;GEOMETRYCOLLECTION (POLYGON ((-122.25 37.81, -122.26 37.82)))", "<a href=\"/oakland/Other_Wall\">Other Wall</a>"], ` +
	`["SRID=4326;GEOMETRYCOLLECTION (garbage` +
	`];</script></html>`

func TestParseIndex(t *testing.T) {
	entries, skipped := ParseIndex(indexFixture, "https://localwiki.org/oakland/")

	if skipped != 1 {
		t.Errorf("expected 1 skipped chunk, got %d", skipped)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.Name != "Some Mural" {
		t.Errorf("expected name 'Some Mural', got %q", first.Name)
	}
	if first.PageURL != "https://localwiki.org/oakland/Some_Mural" {
		t.Errorf("unexpected page url %q", first.PageURL)
	}
	if first.Location.Lon != -122.2712 || first.Location.Lat != 37.8044 {
		t.Errorf("unexpected location %+v", first.Location)
	}

	second := entries[1]
	if second.Name != "Other Wall" {
		t.Errorf("expected name 'Other Wall', got %q", second.Name)
	}
	if second.Location.Lon != -122.25 || second.Location.Lat != 37.81 {
		t.Errorf("polygon should use its first vertex, got %+v", second.Location)
	}
}

func TestParseIndex_NoGeometries(t *testing.T) {
	entries, skipped := ParseIndex("<html><body>No murals yet</body></html>", "https://localwiki.org/oakland/")
	if len(entries) != 0 || skipped != 0 {
		t.Errorf("expected nothing, got %d entries and %d skipped", len(entries), skipped)
	}
}
