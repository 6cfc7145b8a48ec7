package postgres

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zuru/internal/domain"
	"zuru/internal/repository"
)

// capture is a sqlmock argument matcher that records the driver value it sees.
type capture struct {
	value driver.Value
}

func (c *capture) Match(v driver.Value) bool {
	c.value = v
	return true
}

func capturesFor(n int) ([]*capture, []driver.Value) {
	caps := make([]*capture, n)
	args := make([]driver.Value, n)
	for i := range caps {
		caps[i] = &capture{}
		args[i] = caps[i]
	}
	return caps, args
}

func paymentColumnNames() []string {
	return []string{"id", "user_email", "destination", "booking_id", "method", "amount", "travel_date",
		"trip_type", "return_date", "travel_mode", "vehicle_type", "reference", "idempotency_key", "created_at"}
}

func TestPaymentRepository_PersistedRecordRoundTrips(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPaymentRepository(db)
	ctx := context.Background()

	travel := time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC)
	returning := time.Date(2026, 12, 27, 0, 0, 0, 0, time.UTC)
	vehicle := domain.VehicleTypeMatatu

	cases := map[string]*domain.Payment{
		"round trip by road": {
			ID:             "4b7c0f64-2f59-4d4c-9d0e-0a3c7b6c1f01",
			UserEmail:      "wanjiru@example.com",
			Destination:    "Mombasa",
			BookingID:      "b-1",
			Method:         domain.PaymentMethodMpesa,
			Amount:         3966,
			TravelDate:     travel,
			TripType:       domain.TripTypeRoundTrip,
			ReturnDate:     &returning,
			TravelMode:     domain.TravelModeRoad,
			VehicleType:    &vehicle,
			Reference:      "mpesa_123",
			IdempotencyKey: "key-1",
			CreatedAt:      time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC),
		},
		"one way by SGR": {
			ID:          "4b7c0f64-2f59-4d4c-9d0e-0a3c7b6c1f02",
			UserEmail:   "wanjiru@example.com",
			Destination: "Naivasha",
			Method:      domain.PaymentMethodCard,
			Amount:      450,
			TravelDate:  travel,
			TripType:    domain.TripTypeOneWay,
			TravelMode:  domain.TravelModeSGR,
			CreatedAt:   time.Date(2026, 10, 14, 9, 45, 0, 0, time.UTC),
		},
	}

	for name, want := range cases {
		caps, args := capturesFor(14)
		mock.ExpectExec("INSERT INTO payments").
			WithArgs(args...).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, repo.Create(ctx, want), name)

		row := make([]driver.Value, len(caps))
		for i, c := range caps {
			row[i] = c.value
		}
		mock.ExpectQuery(regexp.QuoteMeta("FROM payments WHERE id = $1")).
			WithArgs(want.ID).
			WillReturnRows(sqlmock.NewRows(paymentColumnNames()).AddRow(row...))

		got, err := repo.GetByID(ctx, want.ID)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_OneWayStoresNullOptionals(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := &domain.Payment{
		ID:          "p-1",
		UserEmail:   "otieno@example.com",
		Destination: "Kisumu",
		Method:      domain.PaymentMethodPayPal,
		Amount:      1200,
		TravelDate:  time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		TripType:    domain.TripTypeOneWay,
		TravelMode:  domain.TravelModeFlight,
		CreatedAt:   time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO payments").
		WithArgs(p.ID, p.UserEmail, p.Destination, "", "PayPal", 1200, p.TravelDate,
			"one-way", nil, "Flight", nil, "", nil, p.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, NewPaymentRepository(db).Create(context.Background(), p))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM payments WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(paymentColumnNames()))

	_, err = NewPaymentRepository(db).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPaymentRepository_GetByIdempotencyKey_MissReturnsNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM payments WHERE idempotency_key").
		WithArgs("k").
		WillReturnRows(sqlmock.NewRows(paymentColumnNames()))

	p, err := NewPaymentRepository(db).GetByIdempotencyKey(context.Background(), "k")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPaymentRepository_ListTravellingFrom_OrdersByTravelDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	from := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(paymentColumnNames()).
		AddRow("p-1", "a@b.co", "Lamu", "", "Card", int64(100), from, "one-way", nil, "Flight", nil, "", nil, created).
		AddRow("p-2", "a@b.co", "Kitale", "", "Card", int64(200), from.AddDate(0, 0, 3), "one-way", nil, "Road", "Bus", "", nil, created)

	mock.ExpectQuery(`WHERE user_email = \$1 AND travel_date >= \$2\s+ORDER BY travel_date ASC\s+LIMIT \$3`).
		WithArgs("a@b.co", from, 10).
		WillReturnRows(rows)

	got, err := NewPaymentRepository(db).ListTravellingFrom(context.Background(), "a@b.co", from, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Lamu", got[0].Destination)
	assert.Nil(t, got[0].VehicleType)
	require.NotNil(t, got[1].VehicleType)
	assert.Equal(t, domain.VehicleTypeBus, *got[1].VehicleType)
	require.NoError(t, mock.ExpectationsWereMet())
}
