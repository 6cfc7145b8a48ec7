package domain

import "time"

// PaymentMethod represents how a trip was paid for.
type PaymentMethod string

const (
	PaymentMethodMpesa  PaymentMethod = "M-PESA"
	PaymentMethodPayPal PaymentMethod = "PayPal"
	PaymentMethodCard   PaymentMethod = "Card"
)

// TravelMode represents the means of transport.
type TravelMode string

const (
	TravelModeSGR    TravelMode = "SGR"
	TravelModeRoad   TravelMode = "Road"
	TravelModeFlight TravelMode = "Flight"
)

// VehicleType represents the vehicle used for road travel.
type VehicleType string

const (
	VehicleTypeCar    VehicleType = "Car"
	VehicleTypeMatatu VehicleType = "Matatu"
	VehicleTypeBus    VehicleType = "Bus"
)

// Payment is the record created on payment confirmation.
// VehicleType is set iff TravelMode is Road; ReturnDate is set iff TripType is round-trip.
type Payment struct {
	ID             string
	UserEmail      string
	Destination    string
	BookingID      string
	Method         PaymentMethod
	Amount         int // KES
	TravelDate     time.Time
	TripType       TripType
	ReturnDate     *time.Time
	TravelMode     TravelMode
	VehicleType    *VehicleType
	Reference      string // provider charge reference
	IdempotencyKey string
	CreatedAt      time.Time
}

// Receipt is the printable view of a payment.
type Receipt struct {
	PaymentID   string
	UserEmail   string
	Destination string
	Method      PaymentMethod
	BaseFare    int
	Multiplier  int
	Amount      int
	TravelDate  time.Time
	TripType    TripType
	ReturnDate  *time.Time
	TravelMode  TravelMode
	VehicleType *VehicleType
	Reference   string
	PaidAt      time.Time
	Route       string
}

// In returns a copy of p with its travel dates expressed in loc, the zone
// they were parsed in. Stores may hand them back in UTC.
func (p *Payment) In(loc *time.Location) *Payment {
	if p == nil || loc == nil {
		return p
	}
	out := *p
	out.TravelDate = p.TravelDate.In(loc)
	if p.ReturnDate != nil {
		rd := p.ReturnDate.In(loc)
		out.ReturnDate = &rd
	}
	return &out
}
