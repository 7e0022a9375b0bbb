package models

import "time"

// CarType constants — the fare multiplier depends on these
const (
	CarTypeHatchback = "HATCHBACK"
	CarTypeSedan     = "SEDAN"
	CarTypeSUV       = "SUV"
)

// BookingStatus constants
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
	BookingStatusCompleted = "completed"
)

// ValidCarType reports whether s is one of the supported car types.
func ValidCarType(s string) bool {
	switch s {
	case CarTypeHatchback, CarTypeSedan, CarTypeSUV:
		return true
	}
	return false
}

// Booking represents a confirmed, priced reservation
type Booking struct {
	ID      string `json:"id" gorm:"primaryKey;size:32"`
	EventID string `json:"event_id" gorm:"size:36;uniqueIndex"`

	Phone           string    `json:"phone" gorm:"size:10;index;not null"`
	OriginText      string    `json:"origin_text" gorm:"size:128;not null"`
	DestinationText string    `json:"destination_text" gorm:"size:128;not null"`
	PickupAt        time.Time `json:"pickup_at" gorm:"not null"`
	CarType         string    `json:"car_type" gorm:"size:16;not null"`

	// Pricing — always re-derived server-side, never client-submitted
	FareQuoteInr   int     `json:"fare_quote_inr" gorm:"not null"`
	DistanceKm     float64 `json:"distance_km"`
	DurationMin    int     `json:"duration_min"`
	DiscountCode   string  `json:"discount_code,omitempty" gorm:"size:32"`
	DiscountInr    int     `json:"discount_inr"`
	NightSurcharge bool    `json:"night_surcharge"`

	IdempotencyKey string `json:"-" gorm:"size:128;uniqueIndex"`

	Status string `json:"status" gorm:"size:16;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
