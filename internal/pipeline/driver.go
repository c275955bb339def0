package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/ascending-research/mobility-cli/internal/config"
	"github.com/ascending-research/mobility-cli/internal/geo"
	"github.com/ascending-research/mobility-cli/internal/hierarchy"
	"github.com/ascending-research/mobility-cli/internal/store"
)

// Output file names, written under the configured output directory.
const (
	SchoolTractFile = "school_tract_linkage.csv"
	TractCZFile     = "tract_cz_linkage.csv"
	MergedFile      = "school_tract_cz_merged.csv"
	ManifestFile    = "run_manifest.yaml"
)

// Driver sequences the loaders and linkers and persists the link tables.
// Any stage failure aborts the run; outputs already written stay on disk
// for inspection and manual restart.
type Driver struct {
	cfg *config.Config
	st  *store.Store // nil disables run logging
}

// New creates a Driver. st may be nil.
func New(cfg *config.Config, st *store.Store) *Driver {
	return &Driver{cfg: cfg, st: st}
}

// Result summarizes a completed run.
type Result struct {
	RunID     string
	Links     []geo.TractLink
	Hierarchy []hierarchy.Row
	Merged    []MergedRow
}

// Manifest is the machine-readable run summary written beside the tables.
type Manifest struct {
	RunID       string          `yaml:"run_id,omitempty"`
	StartedAt   time.Time       `yaml:"started_at"`
	CompletedAt time.Time       `yaml:"completed_at"`
	Stages      []ManifestStage `yaml:"stages"`
}

// ManifestStage records one stage's output.
type ManifestStage struct {
	Name   string `yaml:"name"`
	Rows   int    `yaml:"rows"`
	Output string `yaml:"output,omitempty"`
}

// LinkSchools runs the point loader, tract loader, and nearest linker, and
// writes the school-tract link table. Returns the links and loaded points.
func (d *Driver) LinkSchools(ctx context.Context) ([]geo.TractLink, []geo.SchoolPoint, error) {
	cols := geo.PointColumns{
		ID:  d.cfg.Columns.SchoolID,
		Lon: d.cfg.Columns.Lon,
		Lat: d.cfg.Columns.Lat,
	}

	points, err := geo.LoadSchoolPoints(ctx, d.cfg.Inputs.SchoolsCSV, cols)
	if err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: load schools stage")
	}

	tracts, err := geo.LoadTracts(d.cfg.Inputs.TractShapefile, d.cfg.Columns.TractGEOID)
	if err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: load tracts stage")
	}

	linker, err := geo.NewNearestLinker(tracts)
	if err != nil {
		return nil, nil, eris.Wrap(err, "pipeline: build linker stage")
	}
	links := linker.Link(points)

	if err := WriteCSVFile(filepath.Join(d.cfg.Output.Dir, SchoolTractFile), links); err != nil {
		return nil, nil, err
	}
	return links, points, nil
}

// LinkHierarchy runs the hierarchy loaders and linker and writes the
// tract-CZ link table.
func (d *Driver) LinkHierarchy(ctx context.Context) ([]hierarchy.Row, error) {
	demo, err := hierarchy.LoadDemographics(d.cfg.Inputs.DemographicsXLSX, hierarchy.DemographicColumns{
		CountyFIPS: d.cfg.Columns.DemoCountyFIPS,
		State:      d.cfg.Columns.DemoState,
		TractFIPS:  d.cfg.Columns.DemoTractFIPS,
	}, d.cfg.Linkage.DemoHeaderOffset)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load demographics stage")
	}

	cz, err := hierarchy.LoadCommutingZones(ctx, d.cfg.Inputs.CZEquivalency, hierarchy.CZColumns{
		CZID:       d.cfg.Columns.CZID,
		CountyFIPS: d.cfg.Columns.CZCountyFIPS,
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load commuting zones stage")
	}

	rows, err := hierarchy.Link(demo, cz, d.cfg.Linkage.States)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: link hierarchy stage")
	}

	if err := WriteCSVFile(filepath.Join(d.cfg.Output.Dir, TractCZFile), rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Run executes the full pipeline: the two independent branches concurrently,
// then the final merge.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	log := zap.L().With(zap.String("component", "pipeline.driver"))
	startedAt := time.Now().UTC()

	var runID string
	if d.st != nil {
		var err error
		runID, err = d.st.StartRun(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: start run")
		}
	}

	var (
		links  []geo.TractLink
		points []geo.SchoolPoint
		rows   []hierarchy.Row
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		links, points, err = d.LinkSchools(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = d.LinkHierarchy(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		d.failRun(ctx, runID, err)
		return nil, err
	}

	merged := MergeLinks(links, rows)
	if err := WriteCSVFile(filepath.Join(d.cfg.Output.Dir, MergedFile), merged); err != nil {
		d.failRun(ctx, runID, err)
		return nil, err
	}

	if err := d.writeManifest(runID, startedAt, len(links), len(rows), len(merged)); err != nil {
		d.failRun(ctx, runID, err)
		return nil, err
	}

	if d.st != nil {
		if err := d.saveRun(ctx, runID, points, merged, rows); err != nil {
			d.failRun(ctx, runID, err)
			return nil, err
		}
	}

	log.Info("run complete",
		zap.String("run_id", runID),
		zap.Int("schools", len(links)),
		zap.Int("hierarchy_rows", len(rows)),
		zap.Int("merged", len(merged)),
		zap.Duration("elapsed", time.Since(startedAt)),
	)

	return &Result{RunID: runID, Links: links, Hierarchy: rows, Merged: merged}, nil
}

func (d *Driver) writeManifest(runID string, startedAt time.Time, links, rows, merged int) error {
	m := Manifest{
		RunID:       runID,
		StartedAt:   startedAt,
		CompletedAt: time.Now().UTC(),
		Stages: []ManifestStage{
			{Name: "school_tract_linkage", Rows: links, Output: SchoolTractFile},
			{Name: "tract_cz_linkage", Rows: rows, Output: TractCZFile},
			{Name: "merged", Rows: merged, Output: MergedFile},
		},
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return eris.Wrap(err, "pipeline: marshal manifest")
	}
	path := filepath.Join(d.cfg.Output.Dir, ManifestFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "pipeline: write %s", path)
	}
	return nil
}

func (d *Driver) saveRun(ctx context.Context, runID string, points []geo.SchoolPoint, merged []MergedRow, rows []hierarchy.Row) error {
	geomByID := make(map[string][]byte, len(points))
	for _, p := range points {
		wkb, err := geo.EncodePointWKB(p.Geom)
		if err != nil {
			return err
		}
		geomByID[p.ID] = wkb
	}

	records := make([]store.LinkRecord, 0, len(merged))
	for _, m := range merged {
		records = append(records, store.LinkRecord{
			UniversalID: m.UniversalID,
			TractFIPS:   m.TractFIPS,
			DistanceM:   m.DistanceM,
			State:       m.State,
			CZID:        m.CZID,
			CountyFIPS:  m.CountyFIPS,
			Geom:        geomByID[m.UniversalID],
		})
	}

	if err := d.st.SaveLinks(ctx, runID, records); err != nil {
		return err
	}
	return d.st.CompleteRun(ctx, runID, store.RunCounts{
		Schools: int64(len(points)),
		Tracts:  int64(len(rows)),
		Merged:  int64(len(merged)),
	})
}

func (d *Driver) failRun(ctx context.Context, runID string, cause error) {
	if d.st == nil || runID == "" {
		return
	}
	if err := d.st.FailRun(ctx, runID, cause.Error()); err != nil {
		zap.L().Warn("pipeline: failed to record run failure", zap.Error(err))
	}
}
