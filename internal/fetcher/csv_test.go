package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRows(t *testing.T, rowCh <-chan []string, errCh <-chan error) [][]string {
	t.Helper()
	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	require.NoError(t, <-errCh)
	return rows
}

func TestStreamCSV(t *testing.T) {
	input := "id,lon,lat\ns1,-87.6,41.8\ns2,-88.2,42.0\n"

	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
	})

	rows := collectRows(t, rowCh, errCh)
	assert.Equal(t, [][]string{{"s1", "-87.6", "41.8"}, {"s2", "-88.2", "42.0"}}, rows)
	assert.Equal(t, []string{"id", "lon", "lat"}, <-headerCh)
}

func TestStreamCSVTrimSpace(t *testing.T) {
	input := "a, b ,c\n 1 ,2, 3\n"

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{TrimSpace: true})
	rows := collectRows(t, rowCh, errCh)

	assert.Equal(t, [][]string{{"a", "b", "c"}, {"1", "2", "3"}}, rows)
}

func TestStreamCSVVariableFields(t *testing.T) {
	input := "a,b,c\n1,2\n"

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	rows := collectRows(t, rowCh, errCh)

	require.Len(t, rows, 2)
	assert.Len(t, rows[1], 2)
}

func TestStreamCSVCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rowCh, errCh := StreamCSV(ctx, strings.NewReader("a,b\n1,2\n"), CSVOptions{})
	for range rowCh {
	}
	assert.Error(t, <-errCh)
}

func TestReadCSV(t *testing.T) {
	input := "id,name\n1,alpha\n2,beta\n"

	header, rows, err := ReadCSV(context.Background(), strings.NewReader(input), CSVOptions{HasHeader: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name"}, header)
	assert.Equal(t, [][]string{{"1", "alpha"}, {"2", "beta"}}, rows)
}

func TestReadCSVEmpty(t *testing.T) {
	header, rows, err := ReadCSV(context.Background(), strings.NewReader(""), CSVOptions{HasHeader: true})
	require.NoError(t, err)
	assert.Nil(t, header)
	assert.Empty(t, rows)
}
