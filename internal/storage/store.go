package storage

import (
	"context"
	"errors"

	"github.com/cabsure/cabsure-backend/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for durable storage operations
type Store interface {
	// Booking operations
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetBookingByEventID(ctx context.Context, eventID string) (*models.Booking, error)
	GetBookingsByPhone(ctx context.Context, phone string) ([]*models.Booking, error)

	// Discount offer operations (read-only to the booking pipeline)
	GetOfferByCode(ctx context.Context, code string) (*models.DiscountOffer, error)
	SeedOffers(ctx context.Context, offers []models.DiscountOffer) error
}
