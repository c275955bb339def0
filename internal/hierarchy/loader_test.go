package hierarchy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/ascending-research/mobility-cli/internal/errdefs"
)

var demoCols = DemographicColumns{
	CountyFIPS: "State-County FIPS Code",
	State:      "Select State",
	TractFIPS:  "State-County-Tract FIPS Code",
}

var czCols = CZColumns{
	CZID:       "Commuting Zone ID, 1990",
	CountyFIPS: "FIPS",
}

func writeXLSX(t *testing.T, rows [][]string) string {
	t.Helper()

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, row := range rows {
		r := sheet.AddRow()
		for _, cell := range row {
			r.AddCell().SetString(cell)
		}
	}

	path := filepath.Join(t.TempDir(), "table.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestLoadDemographics(t *testing.T) {
	path := writeXLSX(t, [][]string{
		{"Census tract demographics, 2010"},
		{"State-County FIPS Code", "Select State", "State-County-Tract FIPS Code (lookup by address at http://www.ffiec.gov/Geocode/)"},
		{"17001", "IL", "17001000100"},
		{"1001", "AL", "1001000100"},
	})

	rows, err := LoadDemographics(path, demoCols, 1)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, DemographicRow{CountyFIPS: "17001", State: "IL", TractFIPS: "17001000100"}, rows[0])
	// keys are zero-padded at the boundary
	assert.Equal(t, DemographicRow{CountyFIPS: "01001", State: "AL", TractFIPS: "01001000100"}, rows[1])
}

func TestLoadDemographicsMissingColumn(t *testing.T) {
	path := writeXLSX(t, [][]string{
		{"FIPS", "State"},
		{"17001", "IL"},
	})

	_, err := LoadDemographics(path, demoCols, 0)
	assert.ErrorIs(t, err, errdefs.ErrDataLoad)
}

func TestLoadDemographicsBlankKey(t *testing.T) {
	path := writeXLSX(t, [][]string{
		{"State-County FIPS Code", "Select State", "State-County-Tract FIPS Code"},
		{"", "IL", "17001000100"},
	})

	_, err := LoadDemographics(path, demoCols, 0)
	assert.ErrorIs(t, err, errdefs.ErrJoinKey)
}

func TestLoadDemographicsSkipsBlankRows(t *testing.T) {
	path := writeXLSX(t, [][]string{
		{"State-County FIPS Code", "Select State", "State-County-Tract FIPS Code"},
		{"17001", "IL", "17001000100"},
		{"", "", ""},
	})

	rows, err := LoadDemographics(path, demoCols, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestLoadCommutingZonesXLSX(t *testing.T) {
	path := writeXLSX(t, [][]string{
		{"Commuting Zone ID, 1990", "FIPS", "County Name"},
		{"123", "17001", "Adams"},
		{"456", "1001", "Autauga"},
	})

	rows, err := LoadCommutingZones(context.Background(), path, czCols)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, CommutingZoneRow{CountyFIPS: "17001", CZID: "123"}, rows[0])
	assert.Equal(t, CommutingZoneRow{CountyFIPS: "01001", CZID: "456"}, rows[1])
}

func TestLoadCommutingZonesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cz.csv")
	content := "\"Commuting Zone ID, 1990\",FIPS\n123,17001\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rows, err := LoadCommutingZones(context.Background(), path, czCols)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, CommutingZoneRow{CountyFIPS: "17001", CZID: "123"}, rows[0])
}

func TestLoadCommutingZonesMissingColumn(t *testing.T) {
	path := writeXLSX(t, [][]string{
		{"CZ", "County"},
		{"123", "17001"},
	})

	_, err := LoadCommutingZones(context.Background(), path, czCols)
	assert.ErrorIs(t, err, errdefs.ErrDataLoad)
}

func TestLoadCommutingZonesMissingFile(t *testing.T) {
	_, err := LoadCommutingZones(context.Background(), filepath.Join(t.TempDir(), "absent.xlsx"), czCols)
	assert.ErrorIs(t, err, errdefs.ErrDataLoad)
}
