// Package fare estimates trip distance and price between two coordinates.
package fare

import (
	"math"

	"zuru/internal/domain"
)

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0

	// DefaultRatePerKm is the price per kilometre in KES.
	DefaultRatePerKm = 4.5
)

// Quote is a computed trip price. It is derived and never persisted on its own.
type Quote struct {
	DistanceKm float64 `json:"distance_km"`
	Amount     int     `json:"amount_kes"`
}

// Distance returns the great-circle distance between a and b in kilometres.
func Distance(a, b domain.Coordinate) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLng/2), 2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// ForDistance prices a distance, rounding half away from zero.
func ForDistance(distanceKm, ratePerKm float64) int {
	if distanceKm <= 0 {
		return 0
	}
	return int(math.Round(distanceKm * ratePerKm))
}

// Estimate returns the one-way quote from origin to destination.
func Estimate(origin, destination domain.Coordinate, ratePerKm float64) Quote {
	distance := Distance(origin, destination)
	return Quote{
		DistanceKm: distance,
		Amount:     ForDistance(distance, ratePerKm),
	}
}

// ApplyTripType returns the amount payable for the trip type given a one-way fare.
func ApplyTripType(oneWay int, tripType domain.TripType) int {
	return oneWay * Multiplier(tripType)
}

// Multiplier is 2 for round trips and 1 otherwise.
func Multiplier(tripType domain.TripType) int {
	if tripType == domain.TripTypeRoundTrip {
		return 2
	}
	return 1
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
