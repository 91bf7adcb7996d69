package model

// Image types.
const (
	ImageTypeUnitPhoto = "unit_photo"
	ImageTypeFloorPlan = "floor_plan"
	ImageTypeProperty  = "property"
	ImageTypeAmenity   = "amenity"
)

// ImageAsset is a picture attached to an apartment or a floor plan.
type ImageAsset struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	ApartmentID *int64 `gorm:"index" json:"apartment_id,omitempty"`
	FloorPlanID *int64 `gorm:"index" json:"floor_plan_id,omitempty"`
	ImageType   string `gorm:"size:32;not null" json:"image_type"`
	SourceURL   string `gorm:"not null" json:"source_url"`
	PublicURL   string `gorm:"not null" json:"public_url"`
	StoragePath string `json:"storage_path,omitempty"`
	SortOrder   int    `gorm:"not null" json:"sort_order"`
	AltText     string `json:"alt_text,omitempty"`
}

// TableName keeps the table name short like the rest of the schema.
func (ImageAsset) TableName() string {
	return "images"
}
