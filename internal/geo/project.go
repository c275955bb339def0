package geo

import "math"

// Conus Albers (EPSG:5070) forward projection on the GRS80 ellipsoid,
// after Snyder, Map Projections — A Working Manual, eq. 14-1..14-4.
// The nearest-neighbor step needs a planar, distance-preserving frame for
// the study area; this is the projection the source analysis used.
const (
	grs80A  = 6378137.0         // semi-major axis (m)
	grs80F  = 1 / 298.257222101 // flattening
	albLat1 = 29.5              // first standard parallel (deg)
	albLat2 = 45.5              // second standard parallel (deg)
	albLat0 = 23.0              // latitude of origin (deg)
	albLon0 = -96.0             // central meridian (deg)
)

var (
	grs80E2 = grs80F * (2 - grs80F)
	grs80E  = math.Sqrt(grs80E2)

	albersN, albersC, albersRho0 = albersConstants()
)

func albersConstants() (n, c, rho0 float64) {
	phi1 := albLat1 * math.Pi / 180
	phi2 := albLat2 * math.Pi / 180
	phi0 := albLat0 * math.Pi / 180

	m1 := albersM(phi1)
	m2 := albersM(phi2)
	q1 := albersQ(phi1)
	q2 := albersQ(phi2)
	q0 := albersQ(phi0)

	n = (m1*m1 - m2*m2) / (q2 - q1)
	c = m1*m1 + n*q1
	rho0 = grs80A * math.Sqrt(c-n*q0) / n
	return n, c, rho0
}

func albersM(phi float64) float64 {
	s := math.Sin(phi)
	return math.Cos(phi) / math.Sqrt(1-grs80E2*s*s)
}

func albersQ(phi float64) float64 {
	s := math.Sin(phi)
	return (1 - grs80E2) * (s/(1-grs80E2*s*s) - (1/(2*grs80E))*math.Log((1-grs80E*s)/(1+grs80E*s)))
}

// ProjectAlbers converts geographic lon/lat (degrees, EPSG:4326) to planar
// easting/northing meters in EPSG:5070.
func ProjectAlbers(lon, lat float64) (x, y float64) {
	phi := lat * math.Pi / 180
	lam := lon * math.Pi / 180
	lam0 := albLon0 * math.Pi / 180

	q := albersQ(phi)
	rho := grs80A * math.Sqrt(albersC-albersN*q) / albersN
	theta := albersN * (lam - lam0)

	return rho * math.Sin(theta), albersRho0 - rho*math.Cos(theta)
}
