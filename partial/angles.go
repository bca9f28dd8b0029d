package partial

import (
	"math"

	"github.com/UT-GlobalSeismology/Kibrary-sub006/algorithms/geo"
)

// Angles are the two rotations applied around one contraction.
type Angles struct {
	// Tensor rotates the backward wavefield's path frame onto the forward
	// wavefield's frame at the perturbation point.
	Tensor float64
	// Vector rotates the contracted R/T pair onto the event-station great
	// circle.
	Vector float64
}

// ComputeAngles returns the rotations for a kernel at point recorded at
// station from event. Degenerate geometries (coincident or antipodal points)
// contribute a zero azimuth.
func ComputeAngles(event, station, point geo.HorizontalPosition) Angles {
	return Angles{
		Tensor: geo.Azimuth(point, station) - geo.Azimuth(point, event),
		Vector: 2*math.Pi - geo.Azimuth(station, event),
	}
}
