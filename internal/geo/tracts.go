package geo

import (
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/ascending-research/mobility-cli/internal/errdefs"
	"github.com/ascending-research/mobility-cli/internal/fetcher"
)

// Tract is one census-tract polygon in geographic coordinates (EPSG:4326).
type Tract struct {
	GEOID string
	Geom  *geom.MultiPolygon
}

// LoadTracts reads a tract shapefile and returns {GEOID, polygon} records.
// A .zip path is extracted to a temp dir first (census shapefiles ship
// zipped). Records with a blank GEOID or unusable geometry are skipped.
func LoadTracts(path, geoidField string) ([]Tract, error) {
	log := zap.L().With(zap.String("component", "geo.tracts"))

	shpPath := path
	if strings.HasSuffix(strings.ToLower(path), ".zip") {
		extractDir, err := os.MkdirTemp("", "tracts")
		if err != nil {
			return nil, errdefs.DataLoad(err, "geo: create extract dir")
		}
		if err := fetcher.ExtractZIP(path, extractDir); err != nil {
			return nil, errdefs.DataLoad(err, "geo: extract "+path)
		}
		shpPath, err = fetcher.FindFileByExt(extractDir, ".shp")
		if err != nil {
			return nil, errdefs.DataLoad(err, "geo: locate .shp in "+path)
		}
	}

	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, errdefs.DataLoad(err, "geo: open shapefile "+shpPath)
	}
	defer func() { _ = reader.Close() }()

	geoidIdx := fieldIndex(reader, geoidField)
	if geoidIdx < 0 {
		return nil, errdefs.DataLoadf("geo: shapefile %s has no %q field", shpPath, geoidField)
	}

	var tracts []Tract
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()

		geoid := strings.TrimSpace(strings.TrimRight(reader.Attribute(geoidIdx), "\x00"))
		if geoid == "" {
			skipped++
			continue
		}

		mp := ShapeToMultiPolygon(shape)
		if mp == nil {
			skipped++
			continue
		}

		tracts = append(tracts, Tract{GEOID: geoid, Geom: mp})
	}

	if skipped > 0 {
		log.Debug("skipped shapefile records", zap.Int("skipped", skipped))
	}
	if len(tracts) == 0 {
		return nil, errdefs.DataLoadf("geo: shapefile %s has no usable tract records", shpPath)
	}

	log.Info("loaded tracts", zap.String("path", path), zap.Int("count", len(tracts)))
	return tracts, nil
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}
