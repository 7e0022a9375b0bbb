package storage

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cabsure/cabsure-backend/internal/models"
)

// DatabaseStore persists records in PostgreSQL via GORM
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed storage
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Booking operations
func (d *DatabaseStore) CreateBooking(ctx context.Context, booking *models.Booking) error {
	return d.db.WithContext(ctx).Create(booking).Error
}

func (d *DatabaseStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := d.db.WithContext(ctx).First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (d *DatabaseStore) GetBookingByEventID(ctx context.Context, eventID string) (*models.Booking, error) {
	var booking models.Booking
	err := d.db.WithContext(ctx).First(&booking, "event_id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (d *DatabaseStore) GetBookingsByPhone(ctx context.Context, phone string) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := d.db.WithContext(ctx).
		Where("phone = ?", phone).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// Discount offer operations
func (d *DatabaseStore) GetOfferByCode(ctx context.Context, code string) (*models.DiscountOffer, error) {
	var offer models.DiscountOffer
	err := d.db.WithContext(ctx).
		First(&offer, "code = ?", strings.ToUpper(strings.TrimSpace(code))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (d *DatabaseStore) SeedOffers(ctx context.Context, offers []models.DiscountOffer) error {
	if len(offers) == 0 {
		return nil
	}
	// Seeding is idempotent: existing codes are left untouched.
	return d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).
		Create(&offers).Error
}
