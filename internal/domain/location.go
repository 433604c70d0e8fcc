package domain

import (
	"fmt"
	"math"
)

// Immutable geographic point with a display label.
type Location struct {
	Latitude  float64
	Longitude float64
	Label     string
}

// LngLat returns the point in [lng, lat] order, as polylines store it.
func (l Location) LngLat() LngLat { return LngLat{l.Longitude, l.Latitude} }

// Validate reports whether both coordinates are finite numbers.
func (l Location) Validate() error {
	if !isFinite(l.Latitude) || !isFinite(l.Longitude) {
		return fmt.Errorf("location %q: coordinates must be finite (lat=%v, lng=%v)", l.Label, l.Latitude, l.Longitude)
	}
	return nil
}

// DefaultDepot is the garage every tour starts and ends at unless the
// deployment configures another one.
var DefaultDepot = Location{Latitude: -29.1750, Longitude: -51.1850, Label: "Depot"}

// A Location within a Tour. ContainerID is nil for the depot endpoints.
type Waypoint struct {
	Location
	ContainerID *int
}

func (w Waypoint) IsDepot() bool { return w.ContainerID == nil }

// Ordered sequence of waypoints that begins and ends at the depot.
type Tour []Waypoint

// One directed hop between two consecutive waypoints.
type Leg struct {
	From Waypoint
	To   Waypoint
}

// Legs returns the len(t)-1 adjacent pairs in traversal order.
func (t Tour) Legs() []Leg {
	if len(t) < 2 {
		return nil
	}

	legs := make([]Leg, 0, len(t)-1)
	for i := 0; i+1 < len(t); i++ {
		legs = append(legs, Leg{From: t[i], To: t[i+1]})
	}
	return legs
}

// ContainerIDs returns the container ids in visiting order, depot excluded.
func (t Tour) ContainerIDs() []int {
	ids := make([]int, 0, len(t))
	for _, w := range t {
		if w.ContainerID != nil {
			ids = append(ids, *w.ContainerID)
		}
	}
	return ids
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
