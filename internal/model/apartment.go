package model

import (
	"time"

	"gorm.io/datatypes"
)

// Apartment is a single rentable unit as last observed on a listing site.
type Apartment struct {
	ID           int64   `gorm:"primaryKey" json:"id"`
	UnitNumber   string  `gorm:"size:64;not null" json:"unit_number"`
	FloorPlanID  *int64  `gorm:"index" json:"floor_plan_id"`
	CompositeKey string  `gorm:"uniqueIndex;size:255;not null" json:"composite_key"`
	Beds         int     `gorm:"index;not null" json:"beds"`
	Baths        float64 `gorm:"not null" json:"baths"`
	SqFt         int     `json:"sq_ft"`
	Floor        *int    `json:"floor,omitempty"`

	CurrentPrice float64  `gorm:"index" json:"current_price"`
	PriceMin     *float64 `json:"price_min,omitempty"`
	PriceMax     *float64 `json:"price_max,omitempty"`

	IsAvailable   bool   `gorm:"index" json:"is_available"`
	AvailableDate string `gorm:"size:64" json:"available_date,omitempty"`
	MoveInSpecial string `json:"move_in_special,omitempty"`
	LeaseTerms    string `json:"lease_terms,omitempty"`

	HasGarage      bool   `json:"has_garage"`
	HasFireplace   bool   `json:"has_fireplace"`
	HasSmartHome   bool   `json:"has_smart_home"`
	IsRenovated    bool   `json:"is_renovated"`
	IsTopFloor     bool   `json:"is_top_floor"`
	IsEndUnit      bool   `json:"is_end_unit"`
	HasSunroom     bool   `json:"has_sunroom"`
	HasBalcony     bool   `json:"has_balcony"`
	HasWasherDryer bool   `json:"has_washer_dryer"`
	ViewType       string `gorm:"size:32" json:"view_type,omitempty"`

	FeatureTags datatypes.JSONSlice[string] `json:"feature_tags"`
	Description string                      `json:"description,omitempty"`
	Source      string                      `gorm:"size:32;not null" json:"source"`
	SourceURL   string                      `json:"source_url,omitempty"`

	FirstSeenAt       time.Time  `gorm:"not null" json:"first_seen_at"`
	LastSeenAt        time.Time  `gorm:"not null;index" json:"last_seen_at"`
	LastPriceChangeAt *time.Time `json:"last_price_change_at,omitempty"`
	CreatedAt         time.Time  `json:"-"`
	UpdatedAt         time.Time  `json:"updated_at"`

	// Associations
	FloorPlan *FloorPlan `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}
