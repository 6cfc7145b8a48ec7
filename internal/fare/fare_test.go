package fare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zuru/internal/domain"
)

var (
	nairobi = domain.Coordinate{Lat: -1.286389, Lng: 36.817223}
	mombasa = domain.Coordinate{Lat: -4.0435, Lng: 39.6682}
)

func TestDistance_IsSymmetric(t *testing.T) {
	t.Parallel()

	pairs := [][2]domain.Coordinate{
		{nairobi, mombasa},
		{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}},
		{{Lat: 51.5, Lng: -0.12}, {Lat: 40.71, Lng: -74.0}},
		{{Lat: -89.9, Lng: 179.9}, {Lat: 89.9, Lng: -179.9}},
	}

	for _, p := range pairs {
		assert.InDelta(t, Distance(p[0], p[1]), Distance(p[1], p[0]), 1e-9)
	}
}

func TestDistance_SamePointIsZero(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, Distance(nairobi, nairobi))
	assert.Equal(t, 0, ForDistance(0, DefaultRatePerKm))

	q := Estimate(mombasa, mombasa, DefaultRatePerKm)
	assert.Equal(t, 0.0, q.DistanceKm)
	assert.Equal(t, 0, q.Amount)
}

func TestDistance_OneDegreeOfLongitudeAtEquator(t *testing.T) {
	t.Parallel()

	d := Distance(domain.Coordinate{Lat: 0, Lng: 0}, domain.Coordinate{Lat: 0, Lng: 1})
	assert.InDelta(t, 111.195, d, 0.01)
}

func TestForDistance_RoundsToNearestShilling(t *testing.T) {
	t.Parallel()

	cases := []struct {
		km   float64
		want int
	}{
		{0, 0},
		{10, 45},
		{33.33, 150},
		{1, 5},   // 4.5 rounds up
		{0.1, 0}, // 0.45 rounds down
		{100, 450},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ForDistance(tc.km, DefaultRatePerKm), "distance %v", tc.km)
	}
}

func TestEstimate_NairobiToMombasa(t *testing.T) {
	t.Parallel()

	q := Estimate(nairobi, mombasa, DefaultRatePerKm)

	assert.InDelta(t, 438, q.DistanceKm, 5)
	assert.InDelta(t, 1971, q.Amount, 25)
	assert.Equal(t, ForDistance(q.DistanceKm, DefaultRatePerKm), q.Amount)

	roundTrip := ApplyTripType(q.Amount, domain.TripTypeRoundTrip)
	require.Equal(t, 2*q.Amount, roundTrip)
	assert.InDelta(t, 3942, roundTrip, 50)
}

func TestApplyTripType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 150, ApplyTripType(150, domain.TripTypeOneWay))
	assert.Equal(t, 300, ApplyTripType(150, domain.TripTypeRoundTrip))
	assert.Equal(t, 150, ApplyTripType(150, ""))
}
