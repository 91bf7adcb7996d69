package model

import "time"

// PriceHistory records an observed asking price. A row is only written when the
// price differs from the previous row for the same apartment.
type PriceHistory struct {
	ID            int64     `gorm:"primaryKey"`
	ApartmentID   int64     `gorm:"not null;index:idx_price_apartment_recorded,priority:1"`
	Price         float64   `gorm:"not null"`
	MoveInSpecial string
	Source        string    `gorm:"size:32"`
	RecordedAt    time.Time `gorm:"not null;index:idx_price_apartment_recorded,priority:2"`
}

// TableName matches the name used by the dashboard.
func (PriceHistory) TableName() string {
	return "price_history"
}

// PriceHistoryPoint is the wire form of a PriceHistory row, one point per chart tick.
type PriceHistoryPoint struct {
	ApartmentID int64   `json:"apartment_id"`
	Date        string  `json:"date"`
	Price       float64 `json:"price"`
	Special     *string `json:"special"`
}

// Point converts the row into its chart representation.
func (p PriceHistory) Point() PriceHistoryPoint {
	var special *string
	if p.MoveInSpecial != "" {
		s := p.MoveInSpecial
		special = &s
	}
	return PriceHistoryPoint{
		ApartmentID: p.ApartmentID,
		Date:        p.RecordedAt.UTC().Format("2006-01-02"),
		Price:       p.Price,
		Special:     special,
	}
}
