package domain

// Destination is an entry of the curated destination catalogue.
type Destination struct {
	ID          string
	Name        string
	Location    string
	Description string
	Price       float64
	ImageURL    string
	Coordinate  Coordinate
}
