// Package geo holds the pure distance functions used by the route engine.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

// Planar returns the Euclidean distance between two points treating raw
// latitude/longitude degrees as plane coordinates. It is only meaningful for
// ranking nearby candidates, not as a physical distance.
func Planar(lat1, lng1, lat2, lng2 float64) float64 {
	dx := lat2 - lat1
	dy := lng2 - lng1
	return math.Sqrt(dx*dx + dy*dy)
}

// Haversine returns the great-circle distance in kilometers.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}
