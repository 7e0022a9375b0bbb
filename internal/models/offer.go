package models

import (
	"time"

	"gorm.io/gorm"
)

// DiscountType constants
const (
	DiscountTypeFlat = "FLAT"
	DiscountTypePct  = "PCT"
)

// DiscountOffer is a promotional code consulted (never mutated) by the fare engine.
type DiscountOffer struct {
	gorm.Model
	Code         string `gorm:"size:32;uniqueIndex;not null" json:"code"`
	DiscountType string `gorm:"size:8;not null" json:"discount_type"` // FLAT or PCT
	Value        int    `gorm:"not null" json:"value"`                // rupees for FLAT, percent for PCT
	CapInr       *int   `json:"cap_inr,omitempty"`                    // PCT only: max applied discount
	ValidFrom    *time.Time `json:"valid_from,omitempty"`
	ValidTo      *time.Time `json:"valid_to,omitempty"`
	Active       bool       `gorm:"default:true" json:"active"`
}

// UsableAt reports whether the offer may be applied at the given time.
func (o *DiscountOffer) UsableAt(t time.Time) bool {
	if o == nil || !o.Active {
		return false
	}
	if o.ValidFrom != nil && t.Before(*o.ValidFrom) {
		return false
	}
	if o.ValidTo != nil && t.After(*o.ValidTo) {
		return false
	}
	return true
}
