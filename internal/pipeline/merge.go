package pipeline

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/ascending-research/mobility-cli/internal/geo"
	"github.com/ascending-research/mobility-cli/internal/hierarchy"
	"github.com/ascending-research/mobility-cli/internal/transform"
)

// MergedRow is the final linkage table: one row per school, with hierarchy
// fields left empty when the school's tract has no hierarchy entry.
type MergedRow struct {
	UniversalID string  `csv:"universal-id"`
	TractFIPS   string  `csv:"Tract_FIPS"`
	DistanceM   float64 `csv:"distance_m"`
	State       string  `csv:"State"`
	CZID        string  `csv:"CZ_ID"`
	CountyFIPS  string  `csv:"County_FIPS"`
}

// MergeLinks left-joins the school-tract links with the hierarchy rows on
// the canonical 11-digit tract FIPS. Both sides are normalized before the
// join; one source carries the key as an integer-typed field, the other as a
// formatted string. Never drops a link row.
func MergeLinks(links []geo.TractLink, rows []hierarchy.Row) []MergedRow {
	byTract := make(map[string]hierarchy.Row, len(rows))
	for _, r := range rows {
		key := transform.NormalizeTractFIPS(r.TractFIPS)
		if _, ok := byTract[key]; !ok {
			byTract[key] = r
		}
	}

	out := make([]MergedRow, 0, len(links))
	var matched int
	for _, l := range links {
		m := MergedRow{
			UniversalID: l.UniversalID,
			TractFIPS:   transform.NormalizeTractFIPS(l.TractFIPS),
			DistanceM:   l.DistanceM,
		}
		if h, ok := byTract[m.TractFIPS]; ok {
			m.State = h.State
			m.CZID = strconv.Itoa(h.CZID)
			m.CountyFIPS = h.CountyFIPS
			matched++
		}
		out = append(out, m)
	}

	zap.L().Info("pipeline: merged links with hierarchy",
		zap.Int("links", len(links)),
		zap.Int("matched", matched),
		zap.Int("unmatched", len(links)-matched),
	)
	return out
}
