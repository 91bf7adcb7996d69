package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"apartment-tracker-backend/internal/model"
	"apartment-tracker-backend/internal/parse"
)

// PersistUnit reconciles one observed unit with the database in a single transaction:
// floor plan get-or-create, apartment insert-or-update by composite key, a price
// history point when the price moved, and the unit's photos.
func (s *gormStore) PersistUnit(ctx context.Context, now time.Time, unit ScrapedUnit) (PersistOutcome, error) {
	var out PersistOutcome

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		floorPlanID, created, err := getOrCreateFloorPlan(tx, unit)
		if err != nil {
			return err
		}
		out.FloorPlanCreated = created

		key := parse.CompositeKey(unit.FloorPlanName, unit.Beds, unit.Baths, unit.SqFt, unit.UnitNumber)

		var apt model.Apartment
		res := tx.Where("composite_key = ?", key).Limit(1).Find(&apt)
		if res.Error != nil {
			return fmt.Errorf("lookup apartment %q: %w", key, res.Error)
		}
		out.IsNew = res.RowsAffected == 0

		// The latest price has to be read before the row is rewritten.
		var last model.PriceHistory
		hasPrevious := false
		if !out.IsNew {
			res := tx.Where("apartment_id = ?", apt.ID).
				Order("recorded_at DESC").Order("id DESC").
				Limit(1).Find(&last)
			if res.Error != nil {
				return fmt.Errorf("latest price for apartment %d: %w", apt.ID, res.Error)
			}
			hasPrevious = res.RowsAffected > 0
		}

		applyUnit(&apt, unit, key, floorPlanID, now)

		if unit.Price != nil {
			if !hasPrevious || last.Price != *unit.Price {
				out.PricePointAdded = true
			}
			if hasPrevious && last.Price != *unit.Price {
				out.PriceChanged = true
				out.OldPrice = last.Price
				out.NewPrice = *unit.Price
				apt.LastPriceChangeAt = &now
			}
		}

		if out.IsNew {
			apt.FirstSeenAt = now
			if err := tx.Create(&apt).Error; err != nil {
				return fmt.Errorf("insert apartment %q: %w", key, err)
			}
		} else if err := tx.Save(&apt).Error; err != nil {
			return fmt.Errorf("update apartment %d: %w", apt.ID, err)
		}
		out.ApartmentID = apt.ID

		if out.PricePointAdded {
			point := model.PriceHistory{
				ApartmentID:   apt.ID,
				Price:         *unit.Price,
				MoveInSpecial: unit.MoveInSpecial,
				Source:        unit.Source,
				RecordedAt:    now,
			}
			if err := tx.Create(&point).Error; err != nil {
				return fmt.Errorf("insert price point for apartment %d: %w", apt.ID, err)
			}
		}

		return upsertImages(tx, apt.ID, unit.ImageURLs)
	})
	if err != nil {
		return PersistOutcome{}, err
	}
	return out, nil
}

// applyUnit copies the observed fields onto apt. first_seen_at is left to the caller,
// and an absent price keeps the stored one.
func applyUnit(apt *model.Apartment, unit ScrapedUnit, key string, floorPlanID int64, now time.Time) {
	flags := parse.Features(unit.FeatureTags)
	tags := unit.FeatureTags
	if tags == nil {
		tags = []string{}
	}

	apt.UnitNumber = unit.UnitNumber
	apt.FloorPlanID = &floorPlanID
	apt.CompositeKey = key
	apt.Beds = unit.Beds
	apt.Baths = unit.Baths
	apt.SqFt = 0
	if unit.SqFt != nil {
		apt.SqFt = *unit.SqFt
	}
	if unit.Price != nil {
		apt.CurrentPrice = *unit.Price
	}
	apt.IsAvailable = true
	apt.AvailableDate = unit.AvailableDate
	apt.MoveInSpecial = unit.MoveInSpecial
	apt.FeatureTags = tags
	apt.Source = unit.Source
	apt.SourceURL = unit.SourceURL
	apt.LastSeenAt = now

	apt.HasGarage = flags.HasGarage
	apt.HasFireplace = flags.HasFireplace
	apt.IsRenovated = flags.IsRenovated
	apt.HasSmartHome = flags.HasSmartHome
	apt.IsTopFloor = flags.IsTopFloor
	apt.HasSunroom = flags.HasSunroom
	apt.HasBalcony = flags.HasBalcony
	apt.HasWasherDryer = flags.HasWasherDryer
	apt.IsEndUnit = flags.IsEndUnit
	apt.ViewType = flags.ViewType
}

func getOrCreateFloorPlan(tx *gorm.DB, unit ScrapedUnit) (int64, bool, error) {
	var plan model.FloorPlan
	res := tx.Where("name = ? AND beds = ? AND baths = ?", unit.FloorPlanName, unit.Beds, unit.Baths).
		Limit(1).Find(&plan)
	if res.Error != nil {
		return 0, false, fmt.Errorf("lookup floor plan %q: %w", unit.FloorPlanName, res.Error)
	}
	if res.RowsAffected > 0 {
		return plan.ID, false, nil
	}

	plan = model.FloorPlan{
		Name:    unit.FloorPlanName,
		Beds:    unit.Beds,
		Baths:   unit.Baths,
		SqFtMin: unit.SqFt,
		SqFtMax: unit.SqFt,
	}
	if err := tx.Create(&plan).Error; err != nil {
		return 0, false, fmt.Errorf("create floor plan %q: %w", unit.FloorPlanName, err)
	}
	return plan.ID, true, nil
}

// upsertImages records listing photos keyed by (apartment, source URL), in page order.
func upsertImages(tx *gorm.DB, apartmentID int64, urls []string) error {
	for i, url := range urls {
		var img model.ImageAsset
		res := tx.Where("apartment_id = ? AND source_url = ?", apartmentID, url).Limit(1).Find(&img)
		if res.Error != nil {
			return fmt.Errorf("lookup image %q: %w", url, res.Error)
		}
		if res.RowsAffected > 0 {
			if img.SortOrder != i {
				if err := tx.Model(&img).Update("sort_order", i).Error; err != nil {
					return fmt.Errorf("reorder image %d: %w", img.ID, err)
				}
			}
			continue
		}

		id := apartmentID
		img = model.ImageAsset{
			ApartmentID: &id,
			ImageType:   model.ImageTypeUnitPhoto,
			SourceURL:   url,
			PublicURL:   url,
			SortOrder:   i,
		}
		if err := tx.Create(&img).Error; err != nil {
			return fmt.Errorf("insert image %q: %w", url, err)
		}
	}
	return nil
}

// MarkStale flags every available apartment whose key was not seen in the latest scrape.
func (s *gormStore) MarkStale(ctx context.Context, now time.Time, seenKeys []string) (int64, error) {
	if len(seenKeys) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Model(&model.Apartment{}).
		Where("is_available = ?", true).
		Where("composite_key NOT IN ?", seenKeys).
		Updates(map[string]any{"is_available": false, "updated_at": now})
	if res.Error != nil {
		return 0, fmt.Errorf("mark stale apartments: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		s.logger.Info("marked apartments unavailable", zap.Int64("count", res.RowsAffected))
	}
	return res.RowsAffected, nil
}

// ImportUnits persists manually supplied units one by one. A failing unit is reported
// in the results and does not stop the rest.
func (s *gormStore) ImportUnits(ctx context.Context, now time.Time, units []ImportUnit) ImportResults {
	results := ImportResults{Received: len(units), Errors: []string{}}

	for _, u := range units {
		if u.UnitNumber == "" || u.FloorPlanName == "" {
			continue
		}

		out, err := s.PersistUnit(ctx, now, u.ScrapedUnit())
		if err != nil {
			s.logger.Warn("import unit failed", zap.String("unit", u.UnitNumber), zap.Error(err))
			results.Errors = append(results.Errors, fmt.Sprintf("%s: %v", u.UnitNumber, err))
			continue
		}

		results.ApartmentsUpserted++
		if out.FloorPlanCreated {
			results.FloorPlansCreated++
		}
		if out.PricePointAdded {
			results.PricePointsAdded++
		}
	}

	s.logger.Info("import finished",
		zap.Int("received", results.Received),
		zap.Int("upserted", results.ApartmentsUpserted),
		zap.Int("errors", len(results.Errors)))
	return results
}
