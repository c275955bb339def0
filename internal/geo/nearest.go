package geo

import (
	"math"

	"go.uber.org/zap"

	"github.com/ascending-research/mobility-cli/internal/errdefs"
)

// TractLink assigns a school to its nearest tract. Exactly one row per input
// point, in input order, with the original identifier preserved.
type TractLink struct {
	UniversalID string  `csv:"universal-id"`
	TractFIPS   string  `csv:"Tract_FIPS"`
	DistanceM   float64 `csv:"distance_m"`
}

// anchor is a tract's projected representative point.
type anchor struct {
	geoid string
	x, y  float64
}

// NearestLinker links points to tracts by planar distance between the point
// and each tract's representative interior point, both in EPSG:5070.
type NearestLinker struct {
	anchors []anchor
}

// NewNearestLinker computes and projects each tract's representative point.
func NewNearestLinker(tracts []Tract) (*NearestLinker, error) {
	if len(tracts) == 0 {
		return nil, errdefs.Geometryf("geo: no tracts to link against")
	}

	anchors := make([]anchor, 0, len(tracts))
	for _, tr := range tracts {
		rep := RepresentativePoint(tr.Geom)
		x, y := ProjectAlbers(rep.X(), rep.Y())
		if math.IsNaN(x) || math.IsNaN(y) {
			return nil, errdefs.Geometryf("geo: tract %s projects to NaN", tr.GEOID)
		}
		anchors = append(anchors, anchor{geoid: tr.GEOID, x: x, y: y})
	}
	return &NearestLinker{anchors: anchors}, nil
}

// Link finds the nearest tract for each point. When two representative
// points are exactly equidistant, the lexicographically smaller GEOID wins.
func (l *NearestLinker) Link(points []SchoolPoint) []TractLink {
	links := make([]TractLink, 0, len(points))
	for _, p := range points {
		px, py := ProjectAlbers(p.Geom.X(), p.Geom.Y())

		best := l.anchors[0]
		bestDist := math.Hypot(px-best.x, py-best.y)
		for _, a := range l.anchors[1:] {
			d := math.Hypot(px-a.x, py-a.y)
			if d < bestDist || (d == bestDist && a.geoid < best.geoid) {
				best, bestDist = a, d
			}
		}

		links = append(links, TractLink{
			UniversalID: p.ID,
			TractFIPS:   best.geoid,
			DistanceM:   bestDist,
		})
	}

	zap.L().Info("geo: linked schools to tracts",
		zap.Int("schools", len(points)),
		zap.Int("tracts", len(l.anchors)),
	)
	return links
}
