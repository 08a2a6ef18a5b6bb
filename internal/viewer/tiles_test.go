package viewer

import (
	"testing"

	"github.com/paulmach/orb/maptile"

	"github.com/samirrijal/muralmap/internal/core/domain"
)

func TestTileLayer_URL(t *testing.T) {
	l := DefaultMapOptions().BaseLayer
	l.AccessToken = "tok"

	got := l.URL(maptile.New(327, 791, 11))
	want := "https://api.tiles.mapbox.com/v4/mapbox.streets/11/327/791.png?access_token=tok"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	client := l.ClientTemplate()
	if client != "https://api.tiles.mapbox.com/v4/mapbox.streets/{z}/{x}/{y}.png?access_token=tok" {
		t.Errorf("unexpected client template %s", client)
	}
}

func TestTileLayer_TileAt(t *testing.T) {
	l := DefaultMapOptions().BaseLayer

	tile := l.TileAt(domain.GeoPoint{Lat: 37.8, Lon: -122.25}, 11.5)
	if tile.Z != 11 {
		t.Errorf("expected zoom truncated to 11, got %d", tile.Z)
	}
	if tile.X != 328 || tile.Y != 791 {
		t.Errorf("expected tile 328/791, got %d/%d", tile.X, tile.Y)
	}

	if capped := l.TileAt(domain.GeoPoint{Lat: 37.8, Lon: -122.25}, 18); capped.Z != 15 {
		t.Errorf("expected zoom capped at 15, got %d", capped.Z)
	}
}
