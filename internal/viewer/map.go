package viewer

import (
	"sync"

	"github.com/samirrijal/muralmap/internal/core/domain"
)

// MapOptions is the initial view of a map.
type MapOptions struct {
	Center           domain.GeoPoint `json:"center"`
	Zoom             float64         `json:"zoom"`
	BaseLayer        TileLayer       `json:"base_layer"`
	MaxClusterRadius float64         `json:"max_cluster_radius"`
}

// DefaultMapOptions centres on Oakland with the Mapbox streets layer.
// The access token is left empty.
func DefaultMapOptions() MapOptions {
	return MapOptions{
		Center: domain.GeoPoint{Lat: 37.8, Lon: -122.25},
		Zoom:   11.5,
		BaseLayer: TileLayer{
			URLTemplate: "https://api.tiles.mapbox.com/v4/{id}/{z}/{x}/{y}.png?access_token={accessToken}",
			ID:          "mapbox.streets",
			MaxZoom:     15,
			Attribution: `Map data &copy; <a href="https://www.openstreetmap.org/">OpenStreetMap</a> contributors, <a href="https://creativecommons.org/licenses/by-sa/2.0/">CC-BY-SA</a>, Imagery © <a href="https://www.mapbox.com/">Mapbox</a>`,
		},
		MaxClusterRadius: DefaultClusterRadius,
	}
}

// Map is a headless map canvas: a fixed base layer plus at most one
// marker layer.
type Map struct {
	opts MapOptions

	mu      sync.RWMutex
	markers *ClusterGroup
}

// NewMap creates a map with the given options.
func NewMap(opts MapOptions) *Map {
	if opts.MaxClusterRadius <= 0 {
		opts.MaxClusterRadius = DefaultClusterRadius
	}
	return &Map{opts: opts}
}

// Options returns the map's initial view.
func (m *Map) Options() MapOptions {
	return m.opts
}

// Center returns the initial centre.
func (m *Map) Center() domain.GeoPoint { return m.opts.Center }

// Zoom returns the initial zoom.
func (m *Map) Zoom() float64 { return m.opts.Zoom }

// BaseLayer returns the tile layer.
func (m *Map) BaseLayer() TileLayer { return m.opts.BaseLayer }

// SetMarkerLayer attaches g, detaching any previous marker layer.
func (m *Map) SetMarkerLayer(g *ClusterGroup) {
	m.mu.Lock()
	m.markers = g
	m.mu.Unlock()
}

// MarkerLayer returns the attached marker layer, or nil.
func (m *Map) MarkerLayer() *ClusterGroup {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.markers
}
