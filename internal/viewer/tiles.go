package viewer

import (
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb/maptile"

	"github.com/samirrijal/muralmap/internal/core/domain"
)

// TileLayer is the map's base layer. Tile loading happens in the client;
// a failed tile is never reported back here.
type TileLayer struct {
	URLTemplate string `json:"url_template"`
	ID          string `json:"id"`
	AccessToken string `json:"-"`
	MaxZoom     int    `json:"max_zoom"`
	Attribution string `json:"attribution"`
}

// URL expands the template for one tile.
func (l TileLayer) URL(t maptile.Tile) string {
	return strings.NewReplacer(
		"{id}", l.ID,
		"{z}", strconv.Itoa(int(t.Z)),
		"{x}", strconv.FormatUint(uint64(t.X), 10),
		"{y}", strconv.FormatUint(uint64(t.Y), 10),
		"{accessToken}", l.AccessToken,
	).Replace(l.URLTemplate)
}

// TileAt returns the tile covering p at zoom, which is truncated the way a
// tile layer picks its level and capped at MaxZoom.
func (l TileLayer) TileAt(p domain.GeoPoint, zoom float64) maptile.Tile {
	z := int(math.Floor(zoom))
	if l.MaxZoom > 0 && z > l.MaxZoom {
		z = l.MaxZoom
	}
	if z < 0 {
		z = 0
	}
	return maptile.At(clampPoint(p).Point(), maptile.Zoom(z))
}

// ClientTemplate returns the template with the id and token filled in and
// the {z}/{x}/{y} placeholders left for the browser.
func (l TileLayer) ClientTemplate() string {
	return strings.NewReplacer("{id}", l.ID, "{accessToken}", l.AccessToken).Replace(l.URLTemplate)
}
