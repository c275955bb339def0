// Package geo loads school points and census-tract polygons and links each
// school to its nearest tract under an equal-area projection.
package geo

import (
	"context"
	"math"
	"os"
	"strconv"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/ascending-research/mobility-cli/internal/errdefs"
	"github.com/ascending-research/mobility-cli/internal/fetcher"
)

// SchoolPoint is one school location in geographic coordinates (EPSG:4326).
type SchoolPoint struct {
	ID   string
	Geom *geom.Point
}

// PointColumns names the columns of the school CSV.
type PointColumns struct {
	ID  string
	Lon string
	Lat string
}

// LoadSchoolPoints reads the school CSV and returns one point per row,
// preserving row order.
func LoadSchoolPoints(ctx context.Context, path string, cols PointColumns) ([]SchoolPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errdefs.DataLoad(err, "geo: open school csv "+path)
	}
	defer f.Close() //nolint:errcheck

	header, rows, err := fetcher.ReadCSV(ctx, f, fetcher.CSVOptions{HasHeader: true, TrimSpace: true})
	if err != nil {
		return nil, errdefs.DataLoad(err, "geo: read school csv "+path)
	}

	idIdx, lonIdx, latIdx := -1, -1, -1
	for i, name := range header {
		switch name {
		case cols.ID:
			idIdx = i
		case cols.Lon:
			lonIdx = i
		case cols.Lat:
			latIdx = i
		}
	}
	if idIdx < 0 || lonIdx < 0 || latIdx < 0 {
		return nil, errdefs.DataLoadf("geo: school csv %s missing required columns (%s, %s, %s)",
			path, cols.ID, cols.Lon, cols.Lat)
	}

	points := make([]SchoolPoint, 0, len(rows))
	for n, row := range rows {
		if lonIdx >= len(row) || latIdx >= len(row) || idIdx >= len(row) {
			return nil, errdefs.DataLoadf("geo: school csv %s row %d is short (%d fields)", path, n+2, len(row))
		}

		lon, err := strconv.ParseFloat(row[lonIdx], 64)
		if err != nil {
			return nil, errdefs.DataLoadf("geo: school csv %s row %d: bad %s value %q", path, n+2, cols.Lon, row[lonIdx])
		}
		lat, err := strconv.ParseFloat(row[latIdx], 64)
		if err != nil {
			return nil, errdefs.DataLoadf("geo: school csv %s row %d: bad %s value %q", path, n+2, cols.Lat, row[latIdx])
		}
		if math.IsNaN(lon) || math.IsInf(lon, 0) || math.IsNaN(lat) || math.IsInf(lat, 0) {
			return nil, errdefs.Geometryf("geo: school %s has non-finite coordinates (%v, %v)", row[idIdx], lon, lat)
		}

		points = append(points, SchoolPoint{
			ID:   row[idIdx],
			Geom: geom.NewPointFlat(geom.XY, []float64{lon, lat}).SetSRID(4326),
		})
	}

	zap.L().Info("geo: loaded school points", zap.String("path", path), zap.Int("count", len(points)))
	return points, nil
}
