// Package mobility joins the school-tract-CZ linkage with the
// intergenerational mobility tables, producing one table keyed on commuting
// zone and one keyed on county.
package mobility

import (
	"context"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/ascending-research/mobility-cli/internal/errdefs"
	"github.com/ascending-research/mobility-cli/internal/fetcher"
	"github.com/ascending-research/mobility-cli/internal/pipeline"
	"github.com/ascending-research/mobility-cli/internal/transform"
)

// Source column names in the mobility dataset. These headers contain commas,
// so the loaders resolve them by index rather than struct tags.
const (
	czIDColumn       = "CZ"
	czUpwardColumn   = "AM, 80-82 Cohort"
	countyFIPSColumn = "County FIPS Code"
	countyUpwardCol  = "Absolute Upward Mobility"
)

// CZMobility is one commuting zone's absolute upward mobility. Upward is nil
// when the source cell is blank.
type CZMobility struct {
	CZID   string
	Upward *float64
}

// CountyMobility is one county's absolute upward mobility.
type CountyMobility struct {
	CountyFIPS string
	Upward     *float64
}

// CZRow is the school linkage extended with commuting-zone mobility. Upward
// stays nil for schools whose CZ has no mobility entry.
type CZRow struct {
	UniversalID string   `csv:"universal-id"`
	TractFIPS   string   `csv:"Tract_FIPS"`
	DistanceM   float64  `csv:"distance_m"`
	State       string   `csv:"State"`
	CZID        string   `csv:"CZ_ID"`
	CountyFIPS  string   `csv:"County_FIPS"`
	Upward      *float64 `csv:"Absolute_Upward_Mobility"`
}

// CountyRow is the school linkage extended with county mobility. Rows without
// a mobility value are dropped, so Upward is always set.
type CountyRow struct {
	UniversalID string  `csv:"universal-id"`
	TractFIPS   string  `csv:"Tract_FIPS"`
	DistanceM   float64 `csv:"distance_m"`
	State       string  `csv:"State"`
	CZID        string  `csv:"CZ_ID"`
	CountyFIPS  string  `csv:"County_FIPS"`
	Upward      float64 `csv:"Absolute_Upward_Mobility"`
}

// LoadCZMobility reads the commuting-zone mobility table.
func LoadCZMobility(ctx context.Context, path string) ([]CZMobility, error) {
	header, rows, err := readTable(ctx, path)
	if err != nil {
		return nil, err
	}

	czIdx := indexOf(header, czIDColumn)
	upIdx := indexOf(header, czUpwardColumn)
	if czIdx < 0 || upIdx < 0 {
		return nil, errdefs.DataLoadf("mobility: %s missing required columns (%s, %s)",
			path, czIDColumn, czUpwardColumn)
	}

	out := make([]CZMobility, 0, len(rows))
	for _, row := range rows {
		key := cellAt(row, czIdx)
		if key == "" {
			continue
		}
		up, err := parseUpward(cellAt(row, upIdx))
		if err != nil {
			return nil, errdefs.TypeConversionf("mobility: cz %s has non-numeric upward mobility %q", key, cellAt(row, upIdx))
		}
		out = append(out, CZMobility{CZID: transform.NormalizeCZID(key), Upward: up})
	}

	zap.L().Info("mobility: loaded cz table", zap.String("path", path), zap.Int("rows", len(out)))
	return out, nil
}

// LoadCountyMobility reads the county mobility table. The first data row is a
// units note in the source file and is skipped.
func LoadCountyMobility(ctx context.Context, path string) ([]CountyMobility, error) {
	header, rows, err := readTable(ctx, path)
	if err != nil {
		return nil, err
	}

	fipsIdx := indexOf(header, countyFIPSColumn)
	upIdx := indexOf(header, countyUpwardCol)
	if fipsIdx < 0 || upIdx < 0 {
		return nil, errdefs.DataLoadf("mobility: %s missing required columns (%s, %s)",
			path, countyFIPSColumn, countyUpwardCol)
	}

	if len(rows) > 0 {
		rows = rows[1:]
	}

	out := make([]CountyMobility, 0, len(rows))
	for _, row := range rows {
		key := cellAt(row, fipsIdx)
		if key == "" {
			continue
		}
		up, err := parseUpward(cellAt(row, upIdx))
		if err != nil {
			return nil, errdefs.TypeConversionf("mobility: county %s has non-numeric upward mobility %q", key, cellAt(row, upIdx))
		}
		out = append(out, CountyMobility{CountyFIPS: transform.NormalizeCountyFIPS(key), Upward: up})
	}

	zap.L().Info("mobility: loaded county table", zap.String("path", path), zap.Int("rows", len(out)))
	return out, nil
}

// MergeCZ left-joins the linkage with CZ mobility on the zero-padded CZ id.
// Every linkage row survives; unmatched rows carry a nil mobility.
func MergeCZ(merged []pipeline.MergedRow, czs []CZMobility) []CZRow {
	byCZ := make(map[string]*float64, len(czs))
	for _, c := range czs {
		if _, ok := byCZ[c.CZID]; !ok {
			byCZ[c.CZID] = c.Upward
		}
	}

	out := make([]CZRow, 0, len(merged))
	var matched int
	for _, m := range merged {
		row := CZRow{
			UniversalID: m.UniversalID,
			TractFIPS:   m.TractFIPS,
			DistanceM:   m.DistanceM,
			State:       m.State,
			CZID:        m.CZID,
			CountyFIPS:  m.CountyFIPS,
		}
		if m.CZID != "" {
			if up, ok := byCZ[transform.NormalizeCZID(m.CZID)]; ok && up != nil {
				v := *up
				row.Upward = &v
				matched++
			}
		}
		out = append(out, row)
	}

	zap.L().Info("mobility: merged cz mobility",
		zap.Int("links", len(merged)),
		zap.Int("matched", matched),
	)
	return out
}

// MergeCounty left-joins the linkage with county mobility on the zero-padded
// county FIPS, then drops rows without a mobility value.
func MergeCounty(merged []pipeline.MergedRow, counties []CountyMobility) []CountyRow {
	byCounty := make(map[string]*float64, len(counties))
	for _, c := range counties {
		if _, ok := byCounty[c.CountyFIPS]; !ok {
			byCounty[c.CountyFIPS] = c.Upward
		}
	}

	var out []CountyRow
	for _, m := range merged {
		if m.CountyFIPS == "" {
			continue
		}
		up, ok := byCounty[transform.NormalizeCountyFIPS(m.CountyFIPS)]
		if !ok || up == nil {
			continue
		}
		out = append(out, CountyRow{
			UniversalID: m.UniversalID,
			TractFIPS:   m.TractFIPS,
			DistanceM:   m.DistanceM,
			State:       m.State,
			CZID:        m.CZID,
			CountyFIPS:  m.CountyFIPS,
			Upward:      *up,
		})
	}

	zap.L().Info("mobility: merged county mobility",
		zap.Int("links", len(merged)),
		zap.Int("kept", len(out)),
	)
	return out
}

func readTable(ctx context.Context, path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errdefs.DataLoad(err, "mobility: open "+path)
	}
	defer f.Close() //nolint:errcheck

	header, rows, err := fetcher.ReadCSV(ctx, f, fetcher.CSVOptions{HasHeader: true, TrimSpace: true})
	if err != nil {
		return nil, nil, errdefs.DataLoad(err, "mobility: read "+path)
	}
	return header, rows, nil
}

func parseUpward(cell string) (*float64, error) {
	if cell == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}
