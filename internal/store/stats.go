package store

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"apartment-tracker-backend/internal/model"
)

// trendBeds are the bed counts charted on the analytics page.
var trendBeds = []int{1, 2, 3}

func (s *gormStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	db := s.db.WithContext(ctx)

	if err := db.Model(&model.Apartment{}).Count(&stats.TotalCount).Error; err != nil {
		return Stats{}, fmt.Errorf("count apartments: %w", err)
	}

	var available struct {
		Count    int64
		AvgPrice float64
	}
	err := db.Model(&model.Apartment{}).
		Select("COUNT(*) AS count, COALESCE(AVG(current_price), 0) AS avg_price").
		Where("is_available = ?", true).
		Scan(&available).Error
	if err != nil {
		return Stats{}, fmt.Errorf("aggregate available apartments: %w", err)
	}
	stats.AvailableCount = available.Count
	stats.AvgPrice = int64(math.Round(available.AvgPrice))

	if err := db.Model(&model.SavedApartment{}).Count(&stats.SavedCount).Error; err != nil {
		return Stats{}, fmt.Errorf("count saved apartments: %w", err)
	}
	return stats, nil
}

// PriceTrends reports today's average price and availability per bed count.
func (s *gormStore) PriceTrends(ctx context.Context, now time.Time) (PriceTrends, error) {
	today := now.UTC().Format("2006-01-02")
	db := s.db.WithContext(ctx)

	type aggRow struct {
		Beds           int
		AvgPrice       float64
		AvailableCount int64
	}
	var rows []aggRow
	err := db.Model(&model.Apartment{}).
		Select("beds, AVG(current_price) AS avg_price, SUM(CASE WHEN is_available THEN 1 ELSE 0 END) AS available_count").
		Where("beds IN ?", trendBeds).
		Group("beds").
		Scan(&rows).Error
	if err != nil {
		return PriceTrends{}, fmt.Errorf("aggregate price trends: %w", err)
	}

	trends := PriceTrends{
		DateRange:    DateRange{Start: today, End: today},
		TrendsByBeds: make(map[string][]TrendPoint, len(trendBeds)),
	}
	for _, beds := range trendBeds {
		trends.TrendsByBeds[strconv.Itoa(beds)] = []TrendPoint{}
	}
	for _, r := range rows {
		trends.TrendsByBeds[strconv.Itoa(r.Beds)] = []TrendPoint{{
			Date:           today,
			AvgPrice:       int64(math.Round(r.AvgPrice)),
			AvailableCount: r.AvailableCount,
		}}
	}

	var first model.Apartment
	res := db.Select("id", "first_seen_at").Order("first_seen_at ASC").Limit(1).Find(&first)
	if res.Error != nil {
		return PriceTrends{}, fmt.Errorf("earliest apartment: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		trends.DateRange.Start = first.FirstSeenAt.UTC().Format("2006-01-02")
	}
	return trends, nil
}
