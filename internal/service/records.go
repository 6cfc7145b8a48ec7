package service

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"zuru/internal/domain"
	"zuru/internal/fare"
)

// DateLayout is the wire format of travel and return dates (dd/MM/yyyy).
const DateLayout = "02/01/2006"

var validate = validator.New()

// BookingForm is the raw input of the explore screen's "book" action.
type BookingForm struct {
	Destination string
	UserEmail   string
	Origin      domain.Coordinate
	Target      domain.Coordinate
	TripType    string
}

// PaymentForm is the raw input of the payment screen.
type PaymentForm struct {
	UserEmail   string
	Destination string
	BookingID   string
	Method      string
	Amount      int // manual one-way amount, used when no booking is referenced
	TravelDate  string
	TripType    string
	ReturnDate  string
	TravelMode  string
	VehicleType string
	CardToken   string // provider payment method token, card payments only
}

// SignUpForm is the raw input of account creation.
type SignUpForm struct {
	Email           string
	Password        string
	ConfirmPassword string
	DisplayName     string
}

// BuildBookingRecord validates the booking form and assembles the record to
// persist. The quote is the one-way fare; round trips pay double.
func BuildBookingRecord(form BookingForm, quote fare.Quote, now time.Time) (*domain.Booking, error) {
	destination := strings.TrimSpace(form.Destination)
	if destination == "" {
		return nil, invalid("destination", "destination is required")
	}
	if destination == UnknownLocation {
		return nil, invalid("destination", "destination could not be resolved")
	}
	if !form.Target.Valid() {
		return nil, invalid("destination", "destination coordinates out of range")
	}
	if !form.Origin.Valid() {
		return nil, invalid("origin", "origin coordinates out of range")
	}

	tripType, err := parseTripType(form.TripType)
	if err != nil {
		return nil, err
	}

	return &domain.Booking{
		ID:              uuid.New().String(),
		DestinationName: destination,
		UserEmail:       form.UserEmail,
		Origin:          form.Origin,
		Destination:     form.Target,
		DistanceKm:      quote.DistanceKm,
		TripType:        tripType,
		FareAmount:      fare.ApplyTripType(quote.Amount, tripType),
		CreatedAt:       now,
	}, nil
}

// BuildPaymentRecord validates the payment form and assembles the record to
// persist. baseFare is the one-way amount; round trips pay double. A booking
// fare may be zero, a manual amount must be positive. Dates are interpreted
// in loc.
func BuildPaymentRecord(form PaymentForm, baseFare int, now time.Time, loc *time.Location) (*domain.Payment, error) {
	destination := strings.TrimSpace(form.Destination)
	if destination == "" {
		return nil, invalid("destination", "destination is required")
	}
	if baseFare < 0 {
		return nil, invalid("amount", "amount must not be negative")
	}
	if baseFare == 0 && form.BookingID == "" {
		return nil, invalid("amount", "amount must be positive")
	}

	method, err := parseMethod(form.Method)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(form.TravelDate) == "" {
		return nil, invalid("travelDate", "travel date is required")
	}
	travelDate, err := time.ParseInLocation(DateLayout, strings.TrimSpace(form.TravelDate), loc)
	if err != nil {
		return nil, invalid("travelDate", "travel date must be dd/mm/yyyy")
	}

	tripType, err := parseTripType(form.TripType)
	if err != nil {
		return nil, err
	}

	var returnDate *time.Time
	if tripType == domain.TripTypeRoundTrip {
		if strings.TrimSpace(form.ReturnDate) == "" {
			return nil, invalid("returnDate", "return date is required for round trips")
		}
		rd, err := time.ParseInLocation(DateLayout, strings.TrimSpace(form.ReturnDate), loc)
		if err != nil {
			return nil, invalid("returnDate", "return date must be dd/mm/yyyy")
		}
		if !rd.After(travelDate) {
			return nil, invalid("returnDate", "return date must be after travel date")
		}
		returnDate = &rd
	}

	mode, err := parseTravelMode(form.TravelMode)
	if err != nil {
		return nil, err
	}

	var vehicle *domain.VehicleType
	if mode == domain.TravelModeRoad {
		v, err := parseVehicleType(form.VehicleType)
		if err != nil {
			return nil, err
		}
		vehicle = &v
	}

	return &domain.Payment{
		ID:          uuid.New().String(),
		UserEmail:   form.UserEmail,
		Destination: destination,
		BookingID:   form.BookingID,
		Method:      method,
		Amount:      fare.ApplyTripType(baseFare, tripType),
		TravelDate:  travelDate,
		TripType:    tripType,
		ReturnDate:  returnDate,
		TravelMode:  mode,
		VehicleType: vehicle,
		CreatedAt:   now,
	}, nil
}

// ValidateSignUp checks the account creation form.
func ValidateSignUp(form SignUpForm) error {
	if err := ValidateEmail(form.Email); err != nil {
		return err
	}
	return ValidateNewPassword(form.Password, form.ConfirmPassword)
}

// ValidateEmail checks that email matches the standard address pattern.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("email", "email is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return invalid("email", "invalid email format")
	}
	return nil
}

// ValidateNewPassword checks a new password and, when supplied, its confirmation.
func ValidateNewPassword(password, confirm string) error {
	if strings.TrimSpace(password) == "" {
		return invalid("password", "password is required")
	}
	if confirm != "" && confirm != password {
		return invalid("confirmPassword", "passwords do not match")
	}
	return nil
}

func parseTripType(s string) (domain.TripType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "one-way", "oneway", "one_way":
		return domain.TripTypeOneWay, nil
	case "round-trip", "roundtrip", "round_trip":
		return domain.TripTypeRoundTrip, nil
	default:
		return "", invalid("tripType", "trip type must be one-way or round-trip")
	}
}

func parseMethod(s string) (domain.PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m-pesa", "mpesa":
		return domain.PaymentMethodMpesa, nil
	case "paypal":
		return domain.PaymentMethodPayPal, nil
	case "card":
		return domain.PaymentMethodCard, nil
	default:
		return "", invalid("method", "payment method must be M-PESA, PayPal or Card")
	}
}

func parseTravelMode(s string) (domain.TravelMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sgr":
		return domain.TravelModeSGR, nil
	case "road":
		return domain.TravelModeRoad, nil
	case "flight":
		return domain.TravelModeFlight, nil
	default:
		return "", invalid("travelMode", "travel mode must be SGR, Road or Flight")
	}
}

func parseVehicleType(s string) (domain.VehicleType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "car":
		return domain.VehicleTypeCar, nil
	case "matatu":
		return domain.VehicleTypeMatatu, nil
	case "bus":
		return domain.VehicleTypeBus, nil
	case "":
		return "", invalid("vehicleType", "vehicle type is required for road travel")
	default:
		return "", invalid("vehicleType", "vehicle type must be Car, Matatu or Bus")
	}
}
