// Package pipeline sequences the linkage stages and owns the persisted
// intermediate and final tables.
package pipeline

import (
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// WriteCSVFile marshals a slice of rows to a CSV file, creating parent
// directories as needed. rows must be a slice of csv-tagged structs.
func WriteCSVFile(path string, rows any) error {
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrapf(err, "pipeline: marshal %s", filepath.Base(path))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "pipeline: create dir for %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "pipeline: write %s", path)
	}
	return nil
}

// ReadCSVFile unmarshals a CSV file into out, a pointer to a slice of
// csv-tagged structs.
func ReadCSVFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "pipeline: read %s", path)
	}
	if err := csvutil.Unmarshal(data, out); err != nil {
		return eris.Wrapf(err, "pipeline: unmarshal %s", filepath.Base(path))
	}
	return nil
}
