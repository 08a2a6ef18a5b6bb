package domain

import "time"

// Mural is one row of the published dataset. Field names follow the
// properties the OAM map software expects.
type Mural struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Location GeoPoint `json:"location"`
	Address  string   `json:"address"`
	Zoom     int      `json:"zoom"`
	Icon     string   `json:"icon"`
	Popup    string   `json:"popup"`
	Link     string   `json:"link"`
	Blank    int      `json:"blank"`
	Maps     int      `json:"maps"`
}

// Properties returns the GeoJSON properties for the mural.
func (m Mural) Properties() map[string]any {
	return map[string]any{
		"id":      m.ID,
		"name":    m.Name,
		"address": m.Address,
		"zoom":    m.Zoom,
		"icon":    m.Icon,
		"popup":   m.Popup,
		"link":    m.Link,
		"blank":   m.Blank,
		"maps":    m.Maps,
	}
}

// WikiMural is a mural found on the LocalWiki index, enriched with what its
// own page says about it.
type WikiMural struct {
	Name     string   `json:"name"`
	PageURL  string   `json:"page_url"`
	Location GeoPoint `json:"location"`
	Popup    string   `json:"popup"`
	Reserved bool     `json:"reserved"` // tagged "not currently visible"
}

// DataRefresh describes a completed rebuild of the mural dataset.
type DataRefresh struct {
	Time     time.Time `json:"time"`
	Features int       `json:"features"`
	Scraped  int       `json:"scraped"`
	Extras   int       `json:"extras"`
}
