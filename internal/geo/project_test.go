package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectAlbersOrigin(t *testing.T) {
	x, y := ProjectAlbers(-96.0, 23.0)
	assert.InDelta(t, 0.0, x, 1e-6)
	assert.InDelta(t, 0.0, y, 1e-6)
}

func TestProjectAlbersOrientation(t *testing.T) {
	x0, y0 := ProjectAlbers(-96.0, 40.0)
	xe, _ := ProjectAlbers(-95.0, 40.0)
	_, yn := ProjectAlbers(-96.0, 41.0)

	assert.Greater(t, xe, x0, "east of the central meridian should have larger easting")
	assert.Greater(t, yn, y0, "northward should have larger northing")

	xw, _ := ProjectAlbers(-97.0, 40.0)
	assert.Less(t, xw, x0)
}

// One degree of latitude along the central meridian is ~110.9 km on GRS80;
// planar distance in the projection must agree closely.
func TestProjectAlbersMeridianDistance(t *testing.T) {
	x1, y1 := ProjectAlbers(-96.0, 40.0)
	x2, y2 := ProjectAlbers(-96.0, 41.0)

	d := math.Hypot(x2-x1, y2-y1)
	assert.InDelta(t, 111000, d, 1500)
}

// Distances are symmetric around the central meridian.
func TestProjectAlbersSymmetry(t *testing.T) {
	xe, ye := ProjectAlbers(-95.0, 40.0)
	xw, yw := ProjectAlbers(-97.0, 40.0)

	assert.InDelta(t, xe, -xw, 1e-6)
	assert.InDelta(t, ye, yw, 1e-6)
}
