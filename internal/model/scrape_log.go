package model

import "time"

// Scrape statuses.
const (
	ScrapeStatusSuccess = "success"
	ScrapeStatusPartial = "partial"
	ScrapeStatusFailed  = "failed"
)

// ScrapeLog describes one scrape run.
type ScrapeLog struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	RunID           string    `gorm:"size:36;uniqueIndex" json:"run_id"`
	StartedAt       time.Time `gorm:"not null;index" json:"started_at"`
	CompletedAt     time.Time `gorm:"not null" json:"completed_at"`
	Source          string    `gorm:"size:32;not null" json:"source"`
	Status          string    `gorm:"size:16;not null" json:"status"`
	UnitsFound      int       `json:"units_found"`
	NewUnits        int       `json:"new_units"`
	PriceChanges    int       `json:"price_changes"`
	DurationSeconds float64   `json:"duration_seconds"`
	ErrorMessage    string    `json:"error_message,omitempty"`
}
