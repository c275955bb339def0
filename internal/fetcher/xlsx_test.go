package fetcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

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

	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	path := writeXLSX(t, [][]string{
		{"FIPS", "State"},
		{"17001", "IL"},
		{"18001", "IN"},
	})

	rows, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"FIPS", "State"}, rows[0])
	assert.Equal(t, []string{"17001", "IL"}, rows[1])
}

func TestReadXLSXSkipRows(t *testing.T) {
	path := writeXLSX(t, [][]string{
		{"Some workbook title"},
		{"FIPS", "State"},
		{"17001", "IL"},
	})

	rows, err := ReadXLSX(path, XLSXOptions{SkipRows: 1})
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"FIPS", "State"}, rows[0])
}

func TestReadXLSXMissingSheet(t *testing.T) {
	path := writeXLSX(t, [][]string{{"a"}})

	_, err := ReadXLSX(path, XLSXOptions{SheetName: "nope"})
	assert.Error(t, err)

	_, err = ReadXLSX(path, XLSXOptions{SheetIndex: 5})
	assert.Error(t, err)
}

func TestReadXLSXMissingFile(t *testing.T) {
	_, err := ReadXLSX(filepath.Join(t.TempDir(), "absent.xlsx"), XLSXOptions{})
	assert.Error(t, err)
}
