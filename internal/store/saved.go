package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"apartment-tracker-backend/internal/model"
)

func (s *gormStore) ListSaved(ctx context.Context) ([]model.SavedApartment, error) {
	saved := []model.SavedApartment{}
	if err := s.db.WithContext(ctx).Order("saved_at DESC").Order("id DESC").Find(&saved).Error; err != nil {
		return nil, fmt.Errorf("list saved apartments: %w", err)
	}
	return saved, nil
}

// SaveApartment bookmarks an apartment at its current price. Saving twice refreshes the entry.
func (s *gormStore) SaveApartment(ctx context.Context, apartmentID int64, notes *string, now time.Time) (*model.SavedApartment, error) {
	var saved model.SavedApartment

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var apt model.Apartment
		if err := tx.First(&apt, apartmentID).Error; err != nil {
			return notFound(err)
		}

		entry := model.SavedApartment{
			ApartmentID:         apartmentID,
			UserNotes:           notes,
			NotifyOnPriceChange: true,
			PriceWhenSaved:      apt.CurrentPrice,
			SavedAt:             now,
		}
		err := tx.Omit("Apartment").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "apartment_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_notes", "notify_on_price_change", "price_when_saved", "saved_at"}),
		}).Create(&entry).Error
		if err != nil {
			return fmt.Errorf("save apartment %d: %w", apartmentID, err)
		}

		return tx.Where("apartment_id = ?", apartmentID).First(&saved).Error
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// DeleteSaved reports whether a bookmark existed.
func (s *gormStore) DeleteSaved(ctx context.Context, apartmentID int64) (bool, error) {
	res := s.db.WithContext(ctx).Where("apartment_id = ?", apartmentID).Delete(&model.SavedApartment{})
	if res.Error != nil {
		return false, fmt.Errorf("delete saved apartment %d: %w", apartmentID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *gormStore) UpdateSaved(ctx context.Context, apartmentID int64, patch SavedPatch) (*model.SavedApartment, error) {
	var saved model.SavedApartment
	if err := s.db.WithContext(ctx).Where("apartment_id = ?", apartmentID).First(&saved).Error; err != nil {
		return nil, notFound(err)
	}

	if patch.UserNotes != nil {
		saved.UserNotes = patch.UserNotes
	}
	if patch.NotifyOnPriceChange != nil {
		saved.NotifyOnPriceChange = *patch.NotifyOnPriceChange
	}

	err := s.db.WithContext(ctx).Model(&saved).
		Select("user_notes", "notify_on_price_change").
		Updates(&saved).Error
	if err != nil {
		return nil, fmt.Errorf("update saved apartment %d: %w", apartmentID, err)
	}
	return &saved, nil
}
