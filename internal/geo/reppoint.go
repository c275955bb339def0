package geo

import (
	"math"
	"sort"

	"github.com/twpayne/go-geom"
)

// RepresentativePoint returns a deterministic interior point for a tract
// polygon: the midpoint of the widest horizontal crossing of the largest
// polygon part at its centroid latitude. Falls back to the centroid when the
// scanline yields no crossings (degenerate rings). The point is used only as
// a nearest-neighbor anchor, never for containment tests.
func RepresentativePoint(mp *geom.MultiPolygon) geom.Coord {
	poly := largestPolygon(mp)
	cx, cy := ringCentroid(poly.LinearRing(0).FlatCoords())

	var xs []float64
	for r := 0; r < poly.NumLinearRings(); r++ {
		xs = append(xs, ringCrossings(poly.LinearRing(r).FlatCoords(), cy)...)
	}
	if len(xs) < 2 {
		return geom.Coord{cx, cy}
	}
	sort.Float64s(xs)

	// Even-odd pairing: [xs[0],xs[1]], [xs[2],xs[3]], ... are interior spans.
	bestMid, bestWidth := cx, -1.0
	for i := 0; i+1 < len(xs); i += 2 {
		if w := xs[i+1] - xs[i]; w > bestWidth {
			bestWidth = w
			bestMid = (xs[i] + xs[i+1]) / 2
		}
	}
	if bestWidth <= 0 {
		return geom.Coord{cx, cy}
	}
	return geom.Coord{bestMid, cy}
}

// largestPolygon returns the part with the largest exterior-ring area.
func largestPolygon(mp *geom.MultiPolygon) *geom.Polygon {
	best := mp.Polygon(0)
	bestArea := math.Abs(ringArea(best.LinearRing(0).FlatCoords()))
	for i := 1; i < mp.NumPolygons(); i++ {
		p := mp.Polygon(i)
		if a := math.Abs(ringArea(p.LinearRing(0).FlatCoords())); a > bestArea {
			best, bestArea = p, a
		}
	}
	return best
}

// ringArea computes the signed shoelace area of a flat XY coordinate ring.
// Works whether or not the ring repeats its first vertex.
func ringArea(flat []float64) float64 {
	n := len(flat) / 2
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
	}
	return sum / 2
}

// ringCentroid computes the area-weighted centroid of a ring, falling back
// to the vertex mean when the ring is degenerate.
func ringCentroid(flat []float64) (float64, float64) {
	n := len(flat) / 2
	area := ringArea(flat)
	if n == 0 {
		return 0, 0
	}
	if n < 3 || area == 0 {
		var sx, sy float64
		for i := 0; i < n; i++ {
			sx += flat[2*i]
			sy += flat[2*i+1]
		}
		return sx / float64(n), sy / float64(n)
	}

	var cx, cy float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
		cx += (flat[2*i] + flat[2*j]) * cross
		cy += (flat[2*i+1] + flat[2*j+1]) * cross
	}
	return cx / (6 * area), cy / (6 * area)
}

// ringCrossings returns the x coordinates where the horizontal line y=cy
// crosses the ring's edges, using the half-open rule so vertices on the
// scanline are counted exactly once.
func ringCrossings(flat []float64, cy float64) []float64 {
	n := len(flat) / 2
	var xs []float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		x1, y1 := flat[2*i], flat[2*i+1]
		x2, y2 := flat[2*j], flat[2*j+1]
		if (y1 <= cy && cy < y2) || (y2 <= cy && cy < y1) {
			xs = append(xs, x1+(cy-y1)*(x2-x1)/(y2-y1))
		}
	}
	return xs
}
