// Package hierarchy loads the region lookup tables (tract demographics and
// county-to-commuting-zone equivalency) and joins them into one mapping from
// tract to {state, commuting zone, county}.
package hierarchy

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/ascending-research/mobility-cli/internal/errdefs"
	"github.com/ascending-research/mobility-cli/internal/fetcher"
	"github.com/ascending-research/mobility-cli/internal/transform"
)

// DemographicRow maps a tract to its county and state. Keys are canonical
// zero-padded strings from the moment they are loaded.
type DemographicRow struct {
	CountyFIPS string
	State      string
	TractFIPS  string
}

// CommutingZoneRow maps a county to its 1990 commuting-zone id. The id stays
// a raw cell value here; the linker owns the integer cast.
type CommutingZoneRow struct {
	CountyFIPS string
	CZID       string
}

// DemographicColumns names the demographic workbook's columns. TractFIPS is
// matched by prefix: the source header carries a lookup URL in its name.
type DemographicColumns struct {
	CountyFIPS string
	State      string
	TractFIPS  string
}

// CZColumns names the commuting-zone workbook's columns.
type CZColumns struct {
	CZID       string
	CountyFIPS string
}

// LoadDemographics reads the demographic workbook. headerOffset is the number
// of title rows above the real header (1 in the source workbook).
func LoadDemographics(path string, cols DemographicColumns, headerOffset int) ([]DemographicRow, error) {
	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{SkipRows: headerOffset})
	if err != nil {
		return nil, errdefs.DataLoad(err, "hierarchy: read demographics "+path)
	}
	if len(rows) == 0 {
		return nil, errdefs.DataLoadf("hierarchy: demographics %s is empty", path)
	}

	header := rows[0]
	countyIdx := findColumn(header, cols.CountyFIPS, false)
	stateIdx := findColumn(header, cols.State, false)
	tractIdx := findColumn(header, cols.TractFIPS, true)
	if countyIdx < 0 || stateIdx < 0 || tractIdx < 0 {
		return nil, errdefs.DataLoadf("hierarchy: demographics %s missing required columns (%s, %s, %s*)",
			path, cols.CountyFIPS, cols.State, cols.TractFIPS)
	}

	var out []DemographicRow
	for _, row := range rows[1:] {
		county := cellAt(row, countyIdx)
		state := cellAt(row, stateIdx)
		tract := cellAt(row, tractIdx)

		if county == "" && state == "" && tract == "" {
			continue // trailing blank rows
		}
		if county == "" || tract == "" {
			return nil, errdefs.JoinKeyf("hierarchy: demographics %s row for state %q has blank FIPS key", path, state)
		}

		out = append(out, DemographicRow{
			CountyFIPS: transform.NormalizeCountyFIPS(county),
			State:      state,
			TractFIPS:  transform.NormalizeTractFIPS(tract),
		})
	}

	zap.L().Info("hierarchy: loaded demographics", zap.String("path", path), zap.Int("rows", len(out)))
	return out, nil
}

// LoadCommutingZones reads the CZ equivalency table from .xlsx or .csv.
func LoadCommutingZones(ctx context.Context, path string, cols CZColumns) ([]CommutingZoneRow, error) {
	var header []string
	var rows [][]string

	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		f, err := os.Open(path)
		if err != nil {
			return nil, errdefs.DataLoad(err, "hierarchy: open cz table "+path)
		}
		defer f.Close() //nolint:errcheck

		header, rows, err = fetcher.ReadCSV(ctx, f, fetcher.CSVOptions{HasHeader: true, TrimSpace: true})
		if err != nil {
			return nil, errdefs.DataLoad(err, "hierarchy: read cz table "+path)
		}
	} else {
		all, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
		if err != nil {
			return nil, errdefs.DataLoad(err, "hierarchy: read cz table "+path)
		}
		if len(all) == 0 {
			return nil, errdefs.DataLoadf("hierarchy: cz table %s is empty", path)
		}
		header, rows = all[0], all[1:]
	}

	czIdx := findColumn(header, cols.CZID, false)
	countyIdx := findColumn(header, cols.CountyFIPS, false)
	if czIdx < 0 || countyIdx < 0 {
		return nil, errdefs.DataLoadf("hierarchy: cz table %s missing required columns (%s, %s)",
			path, cols.CZID, cols.CountyFIPS)
	}

	var out []CommutingZoneRow
	for _, row := range rows {
		county := cellAt(row, countyIdx)
		cz := cellAt(row, czIdx)
		if county == "" && cz == "" {
			continue
		}
		out = append(out, CommutingZoneRow{
			CountyFIPS: transform.NormalizeCountyFIPS(county),
			CZID:       cz,
		})
	}

	zap.L().Info("hierarchy: loaded commuting zones", zap.String("path", path), zap.Int("rows", len(out)))
	return out, nil
}

// findColumn locates a header by exact name, or by prefix when the source
// header embeds extra annotation after the stable part.
func findColumn(header []string, name string, prefix bool) int {
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == name {
			return i
		}
		if prefix && strings.HasPrefix(h, name) {
			return i
		}
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
