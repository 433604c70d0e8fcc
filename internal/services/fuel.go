package services

import "math"

// EstimateFuelCost returns the fuel cost of driving distanceKm, rounded to
// two decimals.
func EstimateFuelCost(distanceKm, litersPer100Km, pricePerLiter float64) float64 {
	if distanceKm <= 0 || litersPer100Km <= 0 || pricePerLiter <= 0 {
		return 0
	}
	liters := distanceKm / 100 * litersPer100Km
	return math.Round(liters*pricePerLiter*100) / 100
}
