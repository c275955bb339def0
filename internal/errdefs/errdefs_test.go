package errdefs

import (
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"data load with cause", DataLoad(errors.New("no such file"), "open schools.csv"), ErrDataLoad},
		{"data load formatted", DataLoadf("column %q not found", "lon"), ErrDataLoad},
		{"geometry with cause", Geometry(errors.New("empty ring"), "tract 17001000100"), ErrGeometry},
		{"geometry formatted", Geometryf("no usable tracts in %s", "tracts.shp"), ErrGeometry},
		{"join key", JoinKeyf("tract %s has blank county FIPS", "17001000100"), ErrJoinKey},
		{"type conversion with cause", TypeConversion(errors.New("bad int"), "county 17001"), ErrTypeConversion},
		{"type conversion formatted", TypeConversionf("county %s has no commuting zone", "17001"), ErrTypeConversion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
		})
	}
}

func TestClassSurvivesFurtherWrapping(t *testing.T) {
	err := eris.Wrap(DataLoadf("column missing"), "load schools")
	assert.ErrorIs(t, err, ErrDataLoad)
	assert.NotErrorIs(t, err, ErrGeometry)
	assert.Contains(t, err.Error(), "column missing")
}
