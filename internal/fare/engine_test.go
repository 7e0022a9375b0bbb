package fare

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cabsure/cabsure-backend/internal/models"
)

func intPtr(v int) *int { return &v }

// Pickup at noon keeps the night surcharge out of discount tests.
var noonPickup = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestEngine_QuoteKnownRoute(t *testing.T) {
	engine := NewEngine()

	q := engine.Quote("raipur", "bilaspur", models.CarTypeSedan)
	// round((120×12+100)×1.20)
	assert.Equal(t, 1848, q.FareInr)
	assert.Equal(t, 120.0, q.DistanceKm)
	assert.Equal(t, 150, q.DurationMin)
	assert.True(t, q.KnownRoute)

	// deterministic across calls
	assert.Equal(t, q, engine.Quote("raipur", "bilaspur", models.CarTypeSedan))
}

func TestEngine_QuoteSymmetricAndNormalized(t *testing.T) {
	engine := NewEngine()

	forward := engine.Quote("raipur", "bilaspur", models.CarTypeHatchback)
	reverse := engine.Quote("bilaspur", "raipur", models.CarTypeHatchback)
	assert.Equal(t, forward, reverse)

	mixedCase := engine.Quote("  Raipur ", "BILASPUR", models.CarTypeHatchback)
	assert.Equal(t, forward, mixedCase)
}

func TestEngine_QuoteCarMultipliers(t *testing.T) {
	engine := NewEngine()

	// base: 120×12+100 = 1540
	assert.Equal(t, 1540, engine.Quote("raipur", "bilaspur", models.CarTypeHatchback).FareInr)
	assert.Equal(t, 1848, engine.Quote("raipur", "bilaspur", models.CarTypeSedan).FareInr)
	assert.Equal(t, 2464, engine.Quote("raipur", "bilaspur", models.CarTypeSUV).FareInr)
}

func TestEngine_QuoteUnknownRouteFallback(t *testing.T) {
	engine := NewEngine()

	q := engine.Quote("nowhere", "elsewhereville", models.CarTypeHatchback)
	assert.False(t, q.KnownRoute)
	assert.Greater(t, q.FareInr, 0, "quote must be total for unknown routes")
	assert.Greater(t, q.DistanceKm, 0.0)
	// duration heuristic is distance × 1.25
	assert.InDelta(t, q.DistanceKm*1.25, float64(q.DurationMin), 0.5)
}

func TestEngine_ApplyDiscountFlat(t *testing.T) {
	engine := NewEngine()
	offer := &models.DiscountOffer{Code: "FLAT100", DiscountType: models.DiscountTypeFlat, Value: 100, Active: true}

	res := engine.ApplyDiscount(1000, offer, noonPickup)
	assert.True(t, res.DiscountValid)
	assert.Equal(t, 900, res.FinalFareInr)
	assert.Equal(t, 100, res.AppliedInr)
	assert.False(t, res.NightSurcharge)
}

func TestEngine_ApplyDiscountFlatFloorsAtZero(t *testing.T) {
	engine := NewEngine()
	offer := &models.DiscountOffer{Code: "BIG", DiscountType: models.DiscountTypeFlat, Value: 5000, Active: true}

	res := engine.ApplyDiscount(1000, offer, noonPickup)
	assert.Equal(t, 0, res.FinalFareInr)
	assert.Equal(t, 1000, res.AppliedInr)
}

func TestEngine_ApplyDiscountPctCapClampsAppliedAmount(t *testing.T) {
	engine := NewEngine()
	offer := &models.DiscountOffer{
		Code:         "HALF",
		DiscountType: models.DiscountTypePct,
		Value:        50,
		CapInr:       intPtr(100),
		Active:       true,
	}

	// 50% of 1000 is 500, but the applied amount is capped at 100
	res := engine.ApplyDiscount(1000, offer, noonPickup)
	assert.True(t, res.DiscountValid)
	assert.Equal(t, 900, res.FinalFareInr)
	assert.Equal(t, 100, res.AppliedInr)
}

func TestEngine_ApplyDiscountPctWithoutCap(t *testing.T) {
	engine := NewEngine()
	offer := &models.DiscountOffer{Code: "TEN", DiscountType: models.DiscountTypePct, Value: 10, Active: true}

	res := engine.ApplyDiscount(1000, offer, noonPickup)
	assert.Equal(t, 900, res.FinalFareInr)
	assert.Equal(t, 100, res.AppliedInr)
}

func TestEngine_ApplyDiscountPctFloorsAtZero(t *testing.T) {
	engine := NewEngine()
	offer := &models.DiscountOffer{Code: "OVER", DiscountType: models.DiscountTypePct, Value: 150, Active: true}

	// a mis-seeded >100% offer must not drive the fare negative
	res := engine.ApplyDiscount(1000, offer, noonPickup)
	assert.True(t, res.DiscountValid)
	assert.Equal(t, 0, res.FinalFareInr)
	assert.Equal(t, 1000, res.AppliedInr)

	// the surcharge then multiplies zero, not a negative fare
	nightPickup := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	res = engine.ApplyDiscount(1000, offer, nightPickup)
	assert.True(t, res.NightSurcharge)
	assert.Equal(t, 0, res.FinalFareInr)
}

func TestEngine_NightSurchargeOnPostDiscountFare(t *testing.T) {
	engine := NewEngine()
	offer := &models.DiscountOffer{Code: "FLAT100", DiscountType: models.DiscountTypeFlat, Value: 100, Active: true}
	nightPickup := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)

	// round((1000−100)×1.2) = 1080: surcharge applies to the discounted fare
	res := engine.ApplyDiscount(1000, offer, nightPickup)
	assert.True(t, res.NightSurcharge)
	assert.Equal(t, 1080, res.FinalFareInr)
	assert.Equal(t, 100, res.AppliedInr)
}

func TestEngine_NightSurchargeWindowBoundaries(t *testing.T) {
	engine := NewEngine()
	day := func(hour, min int) time.Time {
		return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
	}

	cases := []struct {
		name   string
		pickup time.Time
		want   int
	}{
		{"21:59 is daytime", day(21, 59), 1000},
		{"22:00 starts the window", day(22, 0), 1200},
		{"04:59 is still night", day(4, 59), 1200},
		{"05:00 ends the window", day(5, 0), 1000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := engine.ApplyDiscount(1000, nil, tc.pickup)
			assert.Equal(t, tc.want, res.FinalFareInr)
		})
	}
}

func TestEngine_InvalidOffersLeaveFareUnmodified(t *testing.T) {
	engine := NewEngine()
	past := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		offer *models.DiscountOffer
	}{
		{"no offer", nil},
		{"inactive", &models.DiscountOffer{Code: "OFF", DiscountType: models.DiscountTypeFlat, Value: 100, Active: false}},
		{"expired", &models.DiscountOffer{
			Code:         "OLD",
			DiscountType: models.DiscountTypeFlat,
			Value:        100,
			Active:       true,
			ValidTo:      &past,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := engine.ApplyDiscount(1000, tc.offer, noonPickup)
			assert.False(t, res.DiscountValid)
			assert.Equal(t, 1000, res.FinalFareInr)
			assert.Equal(t, 0, res.AppliedInr)
		})
	}
}

func TestEngine_InvalidOfferStillGetsNightSurcharge(t *testing.T) {
	engine := NewEngine()
	nightPickup := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)

	res := engine.ApplyDiscount(1000, nil, nightPickup)
	assert.False(t, res.DiscountValid)
	assert.True(t, res.NightSurcharge)
	assert.Equal(t, 1200, res.FinalFareInr)
}
