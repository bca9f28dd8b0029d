// Package geo holds positions on a spherical earth and the great-circle
// quantities needed to rotate wavefields between path-local frames.
package geo

import (
	"fmt"
	"math"

	"github.com/tidwall/geodesic"
)

// EarthRadius is the reference radius in km.
const EarthRadius = 6371.0

// sphere is the zero-flattening ellipsoid the geodesic problems are solved on.
var sphere = geodesic.NewEllipsoid(EarthRadius, 0)

// sinEpsilon bounds |sin Δ| below which two points are treated as coincident
// or antipodal and the azimuth is undefined.
const sinEpsilon = 1e-10

// HorizontalPosition is a point on the sphere in degrees.
type HorizontalPosition struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FullPosition adds a radius in km.
type FullPosition struct {
	HorizontalPosition
	R float64 `json:"r"`
}

// NewFullPosition returns the position at (lat, lon, r).
func NewFullPosition(lat, lon, r float64) FullPosition {
	return FullPosition{HorizontalPosition: HorizontalPosition{Latitude: lat, Longitude: lon}, R: r}
}

func (p HorizontalPosition) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", p.Latitude, p.Longitude)
}

func (p FullPosition) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.3f)", p.Latitude, p.Longitude, p.R)
}

// Equal compares with an absolute tolerance in degrees.
func (p HorizontalPosition) Equal(q HorizontalPosition, eps float64) bool {
	return math.Abs(p.Latitude-q.Latitude) <= eps && math.Abs(lonDiff(p.Longitude, q.Longitude)) <= eps
}

func lonDiff(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return d
}

// inverse solves the geodesic from p to q, returning the arc length in
// radians and the azimuth at p in degrees.
func inverse(p, q HorizontalPosition) (delta, azi float64) {
	var s12 float64
	sphere.Inverse(p.Latitude, p.Longitude, q.Latitude, q.Longitude, &s12, &azi, nil)
	return s12 / EarthRadius, azi
}

// EpicentralDistance returns the great-circle distance from p to q in radians.
func EpicentralDistance(p, q HorizontalPosition) float64 {
	delta, _ := inverse(p, q)
	return delta
}

// Azimuth returns the azimuth of q seen from p, clockwise from north, in
// radians within [0, 2π). When the points coincide or are antipodal the
// azimuth is undefined and 0 is returned.
func Azimuth(p, q HorizontalPosition) float64 {
	delta, azi := inverse(p, q)
	if math.Abs(math.Sin(delta)) < sinEpsilon {
		return 0
	}

	az := azi * math.Pi / 180
	if az < 0 {
		az += 2 * math.Pi
	}
	if az >= 2*math.Pi {
		az = 0
	}
	return az
}

// BackAzimuth returns the azimuth of p seen from q.
func BackAzimuth(p, q HorizontalPosition) float64 {
	return Azimuth(q, p)
}
