package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zuru/internal/domain"
	"zuru/internal/fare"
	"zuru/internal/service"
)

var eat = time.FixedZone("EAT", 3*60*60)

func validPaymentForm() service.PaymentForm {
	return service.PaymentForm{
		UserEmail:   "traveller@example.com",
		Destination: "Mombasa",
		Method:      "M-PESA",
		Amount:      2500,
		TravelDate:  "12/05/2025",
		TripType:    "one-way",
		TravelMode:  "SGR",
	}
}

func TestBuildBookingRecord_RoundTripDoublesFare(t *testing.T) {
	t.Parallel()

	quote := fare.Estimate(nairobi, mombasa, fare.DefaultRatePerKm)
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, eat)

	oneWay, err := service.BuildBookingRecord(service.BookingForm{
		Destination: "Mombasa", UserEmail: "a@b.co", Origin: nairobi, Target: mombasa, TripType: "one-way",
	}, quote, now)
	require.NoError(t, err)

	round, err := service.BuildBookingRecord(service.BookingForm{
		Destination: "Mombasa", UserEmail: "a@b.co", Origin: nairobi, Target: mombasa, TripType: "round-trip",
	}, quote, now)
	require.NoError(t, err)

	assert.Equal(t, quote.Amount, oneWay.FareAmount)
	assert.Equal(t, 2*oneWay.FareAmount, round.FareAmount)
	assert.Equal(t, domain.TripTypeRoundTrip, round.TripType)
	assert.Equal(t, now, round.CreatedAt)
	assert.NotEqual(t, oneWay.ID, round.ID)
}

func TestBuildBookingRecord_Validation(t *testing.T) {
	t.Parallel()

	quote := fare.Quote{DistanceKm: 10, Amount: 45}

	testCases := []struct {
		name  string
		form  service.BookingForm
		field string
	}{
		{"empty destination", service.BookingForm{Destination: "  ", Target: mombasa}, "destination"},
		{"unresolved destination", service.BookingForm{Destination: service.UnknownLocation, Target: mombasa}, "destination"},
		{"destination out of range", service.BookingForm{Destination: "X", Target: domain.Coordinate{Lat: 91}}, "destination"},
		{"origin out of range", service.BookingForm{Destination: "X", Target: mombasa, Origin: domain.Coordinate{Lng: 181}}, "origin"},
		{"unknown trip type", service.BookingForm{Destination: "X", Target: mombasa, TripType: "circular"}, "tripType"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := service.BuildBookingRecord(tc.form, quote, time.Now())
			require.Error(t, err)

			var ve *service.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestBuildPaymentRecord_OneWay(t *testing.T) {
	t.Parallel()

	p, err := service.BuildPaymentRecord(validPaymentForm(), 1971, time.Now(), eat)
	require.NoError(t, err)

	assert.Equal(t, 1971, p.Amount)
	assert.Equal(t, domain.PaymentMethodMpesa, p.Method)
	assert.Equal(t, domain.TravelModeSGR, p.TravelMode)
	assert.Nil(t, p.ReturnDate)
	assert.Nil(t, p.VehicleType)
	assert.Equal(t, time.Date(2025, 5, 12, 0, 0, 0, 0, eat), p.TravelDate)
}

func TestBuildPaymentRecord_RoundTripByRoad(t *testing.T) {
	t.Parallel()

	form := validPaymentForm()
	form.TripType = "round-trip"
	form.ReturnDate = "19/05/2025"
	form.TravelMode = "Road"
	form.VehicleType = "Matatu"

	p, err := service.BuildPaymentRecord(form, 1971, time.Now(), eat)
	require.NoError(t, err)

	assert.Equal(t, 3942, p.Amount)
	require.NotNil(t, p.ReturnDate)
	assert.Equal(t, time.Date(2025, 5, 19, 0, 0, 0, 0, eat), *p.ReturnDate)
	require.NotNil(t, p.VehicleType)
	assert.Equal(t, domain.VehicleTypeMatatu, *p.VehicleType)
}

func TestBuildPaymentRecord_IgnoresReturnDateForOneWay(t *testing.T) {
	t.Parallel()

	form := validPaymentForm()
	form.ReturnDate = "19/05/2025"
	form.VehicleType = "Bus" // not Road

	p, err := service.BuildPaymentRecord(form, 100, time.Now(), eat)
	require.NoError(t, err)
	assert.Nil(t, p.ReturnDate)
	assert.Nil(t, p.VehicleType)
}

func TestBuildPaymentRecord_ZeroBookingFare(t *testing.T) {
	t.Parallel()

	form := validPaymentForm()
	form.BookingID = "b-1"

	p, err := service.BuildPaymentRecord(form, 0, time.Now(), eat)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Amount)
}

func TestBuildPaymentRecord_Validation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		mutate   func(*service.PaymentForm)
		baseFare int
		field    string
	}{
		{"empty destination", func(f *service.PaymentForm) { f.Destination = "" }, 100, "destination"},
		{"zero manual amount", func(f *service.PaymentForm) {}, 0, "amount"},
		{"negative booking fare", func(f *service.PaymentForm) { f.BookingID = "b-1" }, -1, "amount"},
		{"unknown method", func(f *service.PaymentForm) { f.Method = "Cash" }, 100, "method"},
		{"missing travel date", func(f *service.PaymentForm) { f.TravelDate = "" }, 100, "travelDate"},
		{"unparseable travel date", func(f *service.PaymentForm) { f.TravelDate = "2025-05-12" }, 100, "travelDate"},
		{"missing return date", func(f *service.PaymentForm) { f.TripType = "round-trip" }, 100, "returnDate"},
		{"return date equal to travel date", func(f *service.PaymentForm) {
			f.TripType = "round-trip"
			f.ReturnDate = f.TravelDate
		}, 100, "returnDate"},
		{"return date before travel date", func(f *service.PaymentForm) {
			f.TripType = "round-trip"
			f.ReturnDate = "01/05/2025"
		}, 100, "returnDate"},
		{"unknown travel mode", func(f *service.PaymentForm) { f.TravelMode = "Boat" }, 100, "travelMode"},
		{"road without vehicle", func(f *service.PaymentForm) { f.TravelMode = "Road" }, 100, "vehicleType"},
		{"road with unknown vehicle", func(f *service.PaymentForm) {
			f.TravelMode = "Road"
			f.VehicleType = "Tuk-tuk"
		}, 100, "vehicleType"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			form := validPaymentForm()
			tc.mutate(&form)

			_, err := service.BuildPaymentRecord(form, tc.baseFare, time.Now(), eat)
			require.Error(t, err)
			assert.Equal(t, tc.field, service.FieldOf(err))
		})
	}
}

func TestValidateSignUp(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		form  service.SignUpForm
		field string
	}{
		{"valid", service.SignUpForm{Email: "a@example.com", Password: "secret", ConfirmPassword: "secret"}, ""},
		{"no confirmation", service.SignUpForm{Email: "a@example.com", Password: "secret"}, ""},
		{"empty email", service.SignUpForm{Password: "secret"}, "email"},
		{"malformed email", service.SignUpForm{Email: "not-an-email", Password: "secret"}, "email"},
		{"empty password", service.SignUpForm{Email: "a@example.com", Password: " "}, "password"},
		{"mismatched confirmation", service.SignUpForm{Email: "a@example.com", Password: "secret", ConfirmPassword: "secrets"}, "confirmPassword"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := service.ValidateSignUp(tc.form)
			if tc.field == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tc.field, service.FieldOf(err))
		})
	}
}

func TestFieldOf_NonValidationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", service.FieldOf(errors.New("boom")))
	assert.Equal(t, "", service.FieldOf(nil))
}
