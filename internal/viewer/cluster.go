package viewer

import (
	"math"
	"sync"

	"github.com/paulmach/orb/geo"

	"github.com/samirrijal/muralmap/internal/core/domain"
)

// DefaultClusterRadius is the aggregation radius in screen pixels.
const DefaultClusterRadius = 40

// ClusterGroup aggregates markers that fall within Radius pixels of each
// other at a given zoom. Membership is recomputed per zoom and memoised.
type ClusterGroup struct {
	Radius  float64
	MaxZoom int // at or above this zoom every marker stands alone

	mu      sync.Mutex
	markers []domain.Marker
	byZoom  map[float64][]domain.Cluster
}

// NewClusterGroup creates an empty group. A non-positive radius uses
// DefaultClusterRadius.
func NewClusterGroup(radius float64, maxZoom int) *ClusterGroup {
	if radius <= 0 {
		radius = DefaultClusterRadius
	}
	return &ClusterGroup{Radius: radius, MaxZoom: maxZoom, byZoom: map[float64][]domain.Cluster{}}
}

// AddMarker appends a marker to the group.
func (g *ClusterGroup) AddMarker(m domain.Marker) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.markers = append(g.markers, m)
	clear(g.byZoom)
}

// Markers returns a copy of the markers in insertion order.
func (g *ClusterGroup) Markers() []domain.Marker {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.Marker(nil), g.markers...)
}

// Len returns the number of markers.
func (g *ClusterGroup) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.markers)
}

// Clusters returns the glyphs drawn at zoom. A cluster of one is a plain
// marker.
func (g *ClusterGroup) Clusters(zoom float64) []domain.Cluster {
	g.mu.Lock()
	defer g.mu.Unlock()

	if cached, ok := g.byZoom[zoom]; ok {
		return cached
	}
	var out []domain.Cluster
	if g.MaxZoom > 0 && zoom >= float64(g.MaxZoom) {
		out = singletons(g.markers)
	} else {
		out = clusterMarkers(g.markers, zoom, g.Radius)
	}
	g.byZoom[zoom] = out
	return out
}

type gridKey struct{ x, y int }

type building struct {
	seed    pixel
	members []domain.Marker
}

// clusterMarkers is a greedy single pass: each marker joins the nearest
// existing cluster whose seed lies within radius, otherwise it seeds a new
// one. A grid of radius-sized cells limits the search to nine cells.
func clusterMarkers(markers []domain.Marker, zoom, radius float64) []domain.Cluster {
	var (
		grid     = map[gridKey][]int{}
		clusters []*building
		r2       = radius * radius
	)

	for _, m := range markers {
		px := projectPoint(m.Location, zoom)
		cell := gridKey{int(math.Floor(px.X / radius)), int(math.Floor(px.Y / radius))}

		best, bestDist := -1, math.Inf(1)
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for _, ci := range grid[gridKey{cell.x + dx, cell.y + dy}] {
					d := clusters[ci].seed.dist2(px)
					if d <= r2 && d < bestDist {
						best, bestDist = ci, d
					}
				}
			}
		}

		if best >= 0 {
			clusters[best].members = append(clusters[best].members, m)
			continue
		}
		grid[cell] = append(grid[cell], len(clusters))
		clusters = append(clusters, &building{seed: px, members: []domain.Marker{m}})
	}

	out := make([]domain.Cluster, 0, len(clusters))
	for _, b := range clusters {
		out = append(out, newCluster(b.members))
	}
	return out
}

func singletons(markers []domain.Marker) []domain.Cluster {
	out := make([]domain.Cluster, 0, len(markers))
	for _, m := range markers {
		out = append(out, newCluster([]domain.Marker{m}))
	}
	return out
}

func newCluster(members []domain.Marker) domain.Cluster {
	points := make([]domain.GeoPoint, len(members))
	for i, m := range members {
		points[i] = m.Location
	}
	center := centroid(points)
	var spread float64
	for _, p := range points {
		if d := geo.DistanceHaversine(center.Point(), p.Point()); d > spread {
			spread = d
		}
	}
	return domain.Cluster{
		Center:  center,
		Count:   len(members),
		Markers: members,
		Bounds:  domain.BoundsOf(points),
		Spread:  spread,
	}
}
