package model

// FloorPlan is a layout shared by many units. Name, beds and baths identify it.
type FloorPlan struct {
	ID                int64   `gorm:"primaryKey" json:"id"`
	Name              string  `gorm:"size:255;not null;uniqueIndex:idx_floor_plan_identity" json:"name"`
	Beds              int     `gorm:"not null;uniqueIndex:idx_floor_plan_identity" json:"beds"`
	Baths             float64 `gorm:"not null;uniqueIndex:idx_floor_plan_identity" json:"baths"`
	SqFtMin           *int    `json:"sq_ft_min,omitempty"`
	SqFtMax           *int    `json:"sq_ft_max,omitempty"`
	Description       string  `json:"description,omitempty"`
	FloorPlanImageURL string  `json:"floor_plan_image_url,omitempty"`
}
