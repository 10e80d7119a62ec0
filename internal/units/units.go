package units

import "math"

// Geotab reports odometer values in meters and engine hours in seconds.
const (
	milesPerMeter  = 0.000621371
	secondsPerHour = 3600.0
)

// MetersToMiles converts a raw odometer reading to miles.
func MetersToMiles(meters float64) float64 {
	return meters * milesPerMeter
}

// SecondsToHours converts a raw engine-hours reading to hours.
func SecondsToHours(seconds float64) float64 {
	return seconds / secondsPerHour
}

// Round1 rounds to one decimal place. Stored usage counters are rounded
// so that sensor noise does not churn the record on every sync.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
