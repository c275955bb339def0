package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ascending-research/mobility-cli/internal/geo"
	"github.com/ascending-research/mobility-cli/internal/hierarchy"
)

func TestMergeLinks(t *testing.T) {
	links := []geo.TractLink{
		{UniversalID: "s1", TractFIPS: "17001000100", DistanceM: 0},
		{UniversalID: "s2", TractFIPS: "17031000100", DistanceM: 120.5},
		{UniversalID: "s3", TractFIPS: "55025000100", DistanceM: 12},
	}
	rows := []hierarchy.Row{
		{State: "IL", CZID: 123, CountyFIPS: "17001", TractFIPS: "17001000100"},
		{State: "IL", CZID: 456, CountyFIPS: "17031", TractFIPS: "17031000100"},
	}

	merged := MergeLinks(links, rows)

	require.Len(t, merged, len(links))
	assert.Equal(t, MergedRow{
		UniversalID: "s1", TractFIPS: "17001000100", DistanceM: 0,
		State: "IL", CZID: "123", CountyFIPS: "17001",
	}, merged[0])
	assert.Equal(t, "456", merged[1].CZID)

	// tract without a hierarchy entry keeps the link, hierarchy fields empty
	assert.Equal(t, "s3", merged[2].UniversalID)
	assert.Empty(t, merged[2].State)
	assert.Empty(t, merged[2].CZID)
	assert.Empty(t, merged[2].CountyFIPS)
}

func TestMergeLinksNormalizesKeys(t *testing.T) {
	links := []geo.TractLink{
		{UniversalID: "s1", TractFIPS: "1001000100"}, // short GEOID from the shapefile
	}
	rows := []hierarchy.Row{
		{State: "AL", CZID: 9, CountyFIPS: "01001", TractFIPS: "01001000100"},
	}

	merged := MergeLinks(links, rows)

	require.Len(t, merged, 1)
	assert.Equal(t, "01001000100", merged[0].TractFIPS)
	assert.Equal(t, "AL", merged[0].State)
}

func TestMergeLinksPreservesOrder(t *testing.T) {
	var links []geo.TractLink
	for _, id := range []string{"z", "a", "m", "b"} {
		links = append(links, geo.TractLink{UniversalID: id, TractFIPS: "17001000100"})
	}

	merged := MergeLinks(links, nil)

	require.Len(t, merged, 4)
	for i, id := range []string{"z", "a", "m", "b"} {
		assert.Equal(t, id, merged[i].UniversalID)
	}
}

func TestMergeLinksDuplicateHierarchyKeepsFirst(t *testing.T) {
	links := []geo.TractLink{{UniversalID: "s1", TractFIPS: "17001000100"}}
	rows := []hierarchy.Row{
		{State: "IL", CZID: 123, CountyFIPS: "17001", TractFIPS: "17001000100"},
		{State: "IL", CZID: 999, CountyFIPS: "17001", TractFIPS: "17001000100"},
	}

	merged := MergeLinks(links, rows)

	require.Len(t, merged, 1)
	assert.Equal(t, "123", merged[0].CZID)
}

func TestMergeLinksEmpty(t *testing.T) {
	assert.Empty(t, MergeLinks(nil, nil))
}
