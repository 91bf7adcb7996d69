package store

import "errors"

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("record not found")

// SourceManual marks units that arrived through the import endpoint.
const SourceManual = "manual"

// ScrapedUnit is one unit as read from a listing source or an import file.
type ScrapedUnit struct {
	UnitNumber    string
	FloorPlanName string
	Beds          int
	Baths         float64
	SqFt          *int
	Price         *float64
	AvailableDate string
	MoveInSpecial string
	FeatureTags   []string
	Source        string
	SourceURL     string
	ImageURLs     []string
}

// ImportUnit is the JSON shape accepted by the manual import endpoint.
type ImportUnit struct {
	UnitNumber    string   `json:"unit_number"`
	FloorPlanName string   `json:"floor_plan_name"`
	Beds          int      `json:"beds"`
	Baths         float64  `json:"baths"`
	SqFt          *int     `json:"sq_ft"`
	Price         *float64 `json:"price"`
	AvailableDate *string  `json:"available_date"`
	MoveInSpecial *string  `json:"move_in_special"`
	FeatureTags   []string `json:"feature_tags"`
	Source        *string  `json:"source"`
	SourceURL     *string  `json:"source_url"`
}

// ScrapedUnit converts an import row, defaulting the source to "manual".
func (u ImportUnit) ScrapedUnit() ScrapedUnit {
	source := SourceManual
	if u.Source != nil && *u.Source != "" {
		source = *u.Source
	}
	return ScrapedUnit{
		UnitNumber:    u.UnitNumber,
		FloorPlanName: u.FloorPlanName,
		Beds:          u.Beds,
		Baths:         u.Baths,
		SqFt:          u.SqFt,
		Price:         u.Price,
		AvailableDate: deref(u.AvailableDate),
		MoveInSpecial: deref(u.MoveInSpecial),
		FeatureTags:   u.FeatureTags,
		Source:        source,
		SourceURL:     deref(u.SourceURL),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ImportResults summarises an import request.
type ImportResults struct {
	Received           int      `json:"received"`
	ApartmentsUpserted int      `json:"apartments_upserted"`
	FloorPlansCreated  int      `json:"floor_plans_created"`
	PricePointsAdded   int      `json:"price_points_added"`
	Errors             []string `json:"errors"`
}

// PersistOutcome reports what PersistUnit changed.
type PersistOutcome struct {
	ApartmentID      int64
	IsNew            bool
	FloorPlanCreated bool
	PricePointAdded  bool
	// PriceChanged is set only when an earlier price existed and differs.
	PriceChanged bool
	OldPrice     float64
	NewPrice     float64
}

// SavedPatch is a partial update of a saved apartment. Nil fields are left alone.
type SavedPatch struct {
	UserNotes           *string `json:"notes"`
	NotifyOnPriceChange *bool   `json:"notify_on_price_change"`
}

// Stats is the dashboard headline summary.
type Stats struct {
	AvailableCount int64 `json:"available_count"`
	TotalCount     int64 `json:"total_count"`
	AvgPrice       int64 `json:"avg_price"`
	SavedCount     int64 `json:"saved_count"`
}

// TrendPoint is one day of the per-bed-count price trend.
type TrendPoint struct {
	Date           string `json:"date"`
	AvgPrice       int64  `json:"avg_price"`
	AvailableCount int64  `json:"available_count"`
}

// DateRange bounds a trend series.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// PriceTrends groups trend points by bed count ("1", "2", "3").
type PriceTrends struct {
	DateRange    DateRange               `json:"date_range"`
	TrendsByBeds map[string][]TrendPoint `json:"trends_by_beds"`
}
