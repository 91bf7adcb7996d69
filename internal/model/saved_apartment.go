package model

import "time"

// SavedApartment is a user bookmark on an apartment.
type SavedApartment struct {
	ID                  int64     `gorm:"primaryKey" json:"-"`
	ApartmentID         int64     `gorm:"uniqueIndex;not null" json:"apartment_id"`
	UserNotes           *string   `json:"user_notes,omitempty"`
	NotifyOnPriceChange bool      `gorm:"not null" json:"notify_on_price_change"`
	PriceWhenSaved      float64   `gorm:"not null" json:"price_when_saved"`
	SavedAt             time.Time `gorm:"not null;index" json:"saved_at"`

	// Associations
	Apartment Apartment `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
