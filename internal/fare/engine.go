package fare

import (
	"math"
	"time"

	"github.com/cabsure/cabsure-backend/internal/models"
)

// Base-fare formula constants: fare = round(km×12 + 100), then car multiplier.
const (
	perKmRateInr = 12
	baseFloorInr = 100

	nightSurchargeFactor = 1.20
	nightStartHour       = 22 // surcharge window [22:00, 05:00)
	nightEndHour         = 5
)

// Quote is a priced route lookup — a pure value, recomputed on every request.
type Quote struct {
	FareInr     int     `json:"fare_inr"`
	DistanceKm  float64 `json:"distance_km"`
	DurationMin int     `json:"duration_min"`
	KnownRoute  bool    `json:"known_route"`
}

// DiscountResult is the outcome of composing discount and night surcharge.
type DiscountResult struct {
	FinalFareInr   int  `json:"final_fare_inr"`
	AppliedInr     int  `json:"applied_inr"`
	DiscountValid  bool `json:"discount_valid"`
	NightSurcharge bool `json:"night_surcharge"`
}

// Engine computes fares from the static route table. It holds no state and is
// safe for concurrent use.
type Engine struct{}

// NewEngine creates a fare engine.
func NewEngine() *Engine {
	return &Engine{}
}

// CarMultiplier returns the fare multiplier for the car type; unknown types
// fall back to the hatchback rate.
func CarMultiplier(carType string) float64 {
	switch carType {
	case models.CarTypeSedan:
		return 1.20
	case models.CarTypeSUV:
		return 1.60
	default:
		return 1.0
	}
}

// Quote prices origin→destination for the car type. Unknown pairs fall back to
// a name-length heuristic so the function is total: it never errors, at the
// cost of unprincipled numbers for routes outside the table. Callers can see
// which branch was taken via KnownRoute.
func (e *Engine) Quote(origin, destination, carType string) Quote {
	info, known := routeTable[routeKey(origin, destination)]
	if !known {
		info = fallbackRoute(origin, destination)
	}

	base := math.Round(info.DistanceKm*perKmRateInr + baseFloorInr)
	fare := int(math.Round(base * CarMultiplier(carType)))

	return Quote{
		FareInr:     fare,
		DistanceKm:  info.DistanceKm,
		DurationMin: info.DurationMin,
		KnownRoute:  known,
	}
}

// fallbackRoute derives a distance from the length difference of the two place
// names and a duration of distance×1.25 minutes.
func fallbackRoute(origin, destination string) routeInfo {
	diff := len(normalizePlace(origin)) - len(normalizePlace(destination))
	if diff < 0 {
		diff = -diff
	}
	distance := float64(50 + diff*10)
	return routeInfo{
		DistanceKm:  distance,
		DurationMin: int(math.Round(distance * 1.25)),
	}
}

// ApplyDiscount composes the offer and the night surcharge onto fareInr.
// Order is fixed: the discount first (FLAT floor at zero; PCT with the applied
// amount clamped to the cap), then the ×1.2 night surcharge on the
// post-discount fare when the pickup hour falls in [22:00, 05:00). An offer
// that is nil, inactive or outside its validity window leaves the fare
// unmodified but the surcharge still applies.
func (e *Engine) ApplyDiscount(fareInr int, offer *models.DiscountOffer, pickupTime time.Time) DiscountResult {
	res := DiscountResult{FinalFareInr: fareInr}

	if offer.UsableAt(pickupTime) {
		res.DiscountValid = true
		switch offer.DiscountType {
		case models.DiscountTypeFlat:
			discounted := fareInr - offer.Value
			if discounted < 0 {
				discounted = 0
			}
			res.AppliedInr = fareInr - discounted
			res.FinalFareInr = discounted
		case models.DiscountTypePct:
			cut := int(math.Round(float64(fareInr) * float64(offer.Value) / 100))
			discounted := fareInr - cut
			if offer.CapInr != nil && fareInr-discounted > *offer.CapInr {
				discounted = fareInr - *offer.CapInr
			}
			if discounted < 0 {
				discounted = 0
			}
			res.AppliedInr = fareInr - discounted
			res.FinalFareInr = discounted
		default:
			res.DiscountValid = false
		}
	}

	if isNightPickup(pickupTime) {
		res.NightSurcharge = true
		res.FinalFareInr = int(math.Round(float64(res.FinalFareInr) * nightSurchargeFactor))
	}

	return res
}

func isNightPickup(t time.Time) bool {
	h := t.Hour()
	return h >= nightStartHour || h < nightEndHour
}
