package viewer

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/samirrijal/muralmap/internal/core/domain"
)

const (
	tileSize = 256

	// maxLatitude is the edge of the square Web Mercator world.
	maxLatitude = 85.0511287798

	earthRadius = 6378137.0
)

// pixel is a position in the Web Mercator pixel plane at some zoom,
// origin at the top-left of the world.
type pixel struct {
	X, Y float64
}

// projectPoint returns the pixel position of p at a (possibly fractional)
// zoom level.
func projectPoint(p domain.GeoPoint, zoom float64) pixel {
	m := project.Point(clampPoint(p).Point(), project.WGS84.ToMercator)
	scale := tileSize * math.Exp2(zoom)
	half := math.Pi * earthRadius
	return pixel{
		X: (m.X() + half) / (2 * half) * scale,
		Y: (half - m.Y()) / (2 * half) * scale,
	}
}

func clampPoint(p domain.GeoPoint) domain.GeoPoint {
	p.Lat = math.Max(-maxLatitude, math.Min(maxLatitude, p.Lat))
	return p
}

func (a pixel) dist2(b pixel) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// centroid averages member locations.
func centroid(points []domain.GeoPoint) domain.GeoPoint {
	if len(points) == 0 {
		return domain.GeoPoint{}
	}
	var sum orb.Point
	for _, p := range points {
		sum[0] += p.Lon
		sum[1] += p.Lat
	}
	n := float64(len(points))
	return domain.PointFrom(orb.Point{sum[0] / n, sum[1] / n})
}
