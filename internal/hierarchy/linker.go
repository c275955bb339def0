package hierarchy

import (
	"go.uber.org/zap"

	"github.com/ascending-research/mobility-cli/internal/errdefs"
	"github.com/ascending-research/mobility-cli/internal/transform"
)

// Row is one tract's hierarchy entry with canonical column names.
type Row struct {
	State      string `csv:"State"`
	CZID       int    `csv:"CZ_ID"`
	CountyFIPS string `csv:"County_FIPS"`
	TractFIPS  string `csv:"Tract_FIPS"`
}

// CZKey returns the zero-padded 5-digit commuting-zone key used by the
// mobility merges.
func (r Row) CZKey() string {
	return transform.FormatFIPS(r.CZID, transform.CZIDLen)
}

// Link left-joins the demographic table onto the commuting-zone table by
// county FIPS, filters to the state allow-list, and casts the CZ id to an
// integer. A filtered row without a numeric CZ id aborts with a
// type-conversion error: nulls from the join must surface, not be coerced.
func Link(demo []DemographicRow, cz []CommutingZoneRow, states []string) ([]Row, error) {
	czByCounty := make(map[string]string, len(cz))
	for _, c := range cz {
		if _, ok := czByCounty[c.CountyFIPS]; ok {
			zap.L().Warn("hierarchy: duplicate county in cz table", zap.String("county_fips", c.CountyFIPS))
			continue
		}
		czByCounty[c.CountyFIPS] = c.CZID
	}

	allowed := make(map[string]bool, len(states))
	for _, s := range states {
		allowed[s] = true
	}

	var out []Row
	for _, d := range demo {
		if !allowed[d.State] {
			continue
		}

		raw, ok := czByCounty[d.CountyFIPS]
		if !ok {
			return nil, errdefs.TypeConversionf("hierarchy: county %s (%s) has no commuting-zone entry", d.CountyFIPS, d.State)
		}
		czID, err := transform.ParseCZID(raw)
		if err != nil {
			return nil, errdefs.TypeConversion(err, "hierarchy: county "+d.CountyFIPS)
		}

		out = append(out, Row{
			State:      d.State,
			CZID:       czID,
			CountyFIPS: d.CountyFIPS,
			TractFIPS:  d.TractFIPS,
		})
	}

	zap.L().Info("hierarchy: linked tracts to commuting zones",
		zap.Int("in", len(demo)),
		zap.Int("out", len(out)),
		zap.Strings("states", states),
	)
	return out, nil
}
