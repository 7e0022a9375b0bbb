package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cabsure/cabsure-backend/internal/models"
)

// MemoryStore holds all data in memory for single-instance and dev deployments
type MemoryStore struct {
	bookings map[string]*models.Booking
	offers   map[string]*models.DiscountOffer

	// Mutexes for thread safety
	bookingMu sync.RWMutex
	offerMu   sync.RWMutex
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookings: make(map[string]*models.Booking),
		offers:   make(map[string]*models.DiscountOffer),
	}
}

// Booking operations
func (m *MemoryStore) CreateBooking(_ context.Context, booking *models.Booking) error {
	m.bookingMu.Lock()
	defer m.bookingMu.Unlock()

	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	m.bookings[booking.ID] = booking
	return nil
}

func (m *MemoryStore) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	booking, exists := m.bookings[id]
	if !exists {
		return nil, ErrNotFound
	}
	return booking, nil
}

func (m *MemoryStore) GetBookingByEventID(_ context.Context, eventID string) (*models.Booking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	for _, booking := range m.bookings {
		if booking.EventID == eventID {
			return booking, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetBookingsByPhone(_ context.Context, phone string) ([]*models.Booking, error) {
	m.bookingMu.RLock()
	defer m.bookingMu.RUnlock()

	var bookings []*models.Booking
	for _, booking := range m.bookings {
		if booking.Phone == phone {
			bookings = append(bookings, booking)
		}
	}
	return bookings, nil
}

// Discount offer operations
func (m *MemoryStore) GetOfferByCode(_ context.Context, code string) (*models.DiscountOffer, error) {
	m.offerMu.RLock()
	defer m.offerMu.RUnlock()

	offer, exists := m.offers[strings.ToUpper(strings.TrimSpace(code))]
	if !exists {
		return nil, ErrNotFound
	}
	return offer, nil
}

func (m *MemoryStore) SeedOffers(_ context.Context, offers []models.DiscountOffer) error {
	m.offerMu.Lock()
	defer m.offerMu.Unlock()

	for i := range offers {
		offer := offers[i]
		m.offers[strings.ToUpper(strings.TrimSpace(offer.Code))] = &offer
	}
	return nil
}
