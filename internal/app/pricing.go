package app

import (
	"math"
	"time"
)

// nightsBetween counts started 24h periods; a non-positive span yields 0.
func nightsBetween(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// totalCost is the only place a booking price is derived. Both intent
// preparation and booking finalization go through it.
func totalCost(pricePerNight float64, nights int) float64 {
	return math.Round(pricePerNight*float64(nights)*100) / 100
}
