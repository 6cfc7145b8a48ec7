package domain

import "time"

// TripType represents whether a trip returns to its origin.
type TripType string

const (
	TripTypeOneWay    TripType = "one-way"
	TripTypeRoundTrip TripType = "round-trip"
)

// Booking is created when a user confirms a destination on the map.
// It is never modified after creation.
type Booking struct {
	ID              string
	DestinationName string
	UserEmail       string
	Origin          Coordinate
	Destination     Coordinate
	DistanceKm      float64
	TripType        TripType
	FareAmount      int // KES, doubled for round trips
	CreatedAt       time.Time
}
