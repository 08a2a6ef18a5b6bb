// Package localwiki scrapes mural records from the Oakland LocalWiki.
//
// The murals index page embeds every mapped page as a WKT geometry
// collection followed by a link to the page. The index parser walks those
// fragments; the page parser reads the wiki tags and image frames of a
// single mural page.
package localwiki

import (
	"strconv"
	"strings"

	"github.com/samirrijal/muralmap/internal/core/domain"
)

// geometryMarker precedes every mapped page on the index.
const geometryMarker = `["SRID=4326;GEOMETRYCOLLECTION (`

// IndexEntry is one mapped page found on the murals index.
type IndexEntry struct {
	Name     string
	PageURL  string
	Location domain.GeoPoint
}

// ParseIndex extracts the mapped pages from the murals index HTML.
// baseURL is the wiki root that page paths are appended to, e.g.
// "https://localwiki.org/oakland/". Fragments that cannot be parsed are
// skipped; their number is returned as skipped.
func ParseIndex(body, baseURL string) (entries []IndexEntry, skipped int) {
	chunks := strings.Split(body, geometryMarker)
	// The first chunk is page preamble before any geometry.
	for _, chunk := range chunks[1:] {
		entry, ok := parseChunk(chunk, baseURL)
		if !ok {
			skipped++
			continue
		}
		entries = append(entries, entry)
	}
	return entries, skipped
}

// parseChunk reads one fragment of the form
//
//	POINT (-122.27 37.80))", "<a href=\"/oakland/Some_Mural\">Some Mural</a>...
func parseChunk(chunk, baseURL string) (IndexEntry, bool) {
	parts := strings.Split(chunk, ">")
	if len(parts) < 2 {
		return IndexEntry{}, false
	}
	head := parts[0]

	// Name is the anchor text minus the trailing "</a".
	name := parts[1]
	if len(name) < 3 {
		return IndexEntry{}, false
	}
	name = name[:len(name)-3]

	// Page path follows /oakland/ and ends with an escaped quote (\").
	_, path, ok := strings.Cut(head, "/oakland/")
	if !ok || len(path) < 2 {
		return IndexEntry{}, false
	}
	path = path[:len(path)-2]

	// Oakland longitudes are always negative, so the first '-' marks the
	// start of the coordinate pair.
	_, coords, ok := strings.Cut(head, "-")
	if !ok {
		return IndexEntry{}, false
	}
	fields := strings.Split(coords, " ")
	if len(fields) < 2 {
		return IndexEntry{}, false
	}
	lon, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return IndexEntry{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimRight(fields[1], `),"`), 64)
	if err != nil {
		return IndexEntry{}, false
	}

	return IndexEntry{
		Name:     name,
		PageURL:  baseURL + path,
		Location: domain.GeoPoint{Lat: lat, Lon: -lon},
	}, true
}
