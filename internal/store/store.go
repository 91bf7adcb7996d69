package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"apartment-tracker-backend/internal/filter"
	"apartment-tracker-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	ListApartments(ctx context.Context, f filter.ApartmentFilters) ([]model.Apartment, error)
	GetApartment(ctx context.Context, id int64) (*model.Apartment, error)
	ListApartmentsByFloorPlan(ctx context.Context, floorPlanID int64) ([]model.Apartment, error)
	ApartmentImages(ctx context.Context, apartmentID int64) ([]model.ImageAsset, error)
	CoverImages(ctx context.Context, apartmentIDs []int64) ([]model.ImageAsset, error)
	PriceHistory(ctx context.Context, apartmentID int64) ([]model.PriceHistory, error)
	ListFloorPlans(ctx context.Context) ([]model.FloorPlan, error)
	GetFloorPlan(ctx context.Context, id int64) (*model.FloorPlan, error)

	ListScrapeLogs(ctx context.Context, limit int) ([]model.ScrapeLog, error)
	LatestScrapeLog(ctx context.Context) (*model.ScrapeLog, error)
	CreateScrapeLog(ctx context.Context, log *model.ScrapeLog) error

	PersistUnit(ctx context.Context, now time.Time, unit ScrapedUnit) (PersistOutcome, error)
	MarkStale(ctx context.Context, now time.Time, seenKeys []string) (int64, error)
	ImportUnits(ctx context.Context, now time.Time, units []ImportUnit) ImportResults

	ListSaved(ctx context.Context) ([]model.SavedApartment, error)
	SaveApartment(ctx context.Context, apartmentID int64, notes *string, now time.Time) (*model.SavedApartment, error)
	DeleteSaved(ctx context.Context, apartmentID int64) (bool, error)
	UpdateSaved(ctx context.Context, apartmentID int64, patch SavedPatch) (*model.SavedApartment, error)

	Stats(ctx context.Context) (Stats, error)
	PriceTrends(ctx context.Context, now time.Time) (PriceTrends, error)

	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)

	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB, logger *zap.Logger) Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gormStore{db: db, logger: logger}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *gormStore) ListApartments(ctx context.Context, f filter.ApartmentFilters) ([]model.Apartment, error) {
	var apartments []model.Apartment
	if err := s.db.WithContext(ctx).Scopes(filter.Scope(f)).Find(&apartments).Error; err != nil {
		return nil, fmt.Errorf("list apartments: %w", err)
	}
	return apartments, nil
}

func (s *gormStore) GetApartment(ctx context.Context, id int64) (*model.Apartment, error) {
	var apt model.Apartment
	if err := s.db.WithContext(ctx).First(&apt, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &apt, nil
}

func (s *gormStore) ListApartmentsByFloorPlan(ctx context.Context, floorPlanID int64) ([]model.Apartment, error) {
	var apartments []model.Apartment
	if err := s.db.WithContext(ctx).Where("floor_plan_id = ?", floorPlanID).Find(&apartments).Error; err != nil {
		return nil, fmt.Errorf("list apartments for floor plan %d: %w", floorPlanID, err)
	}
	return apartments, nil
}

func (s *gormStore) ApartmentImages(ctx context.Context, apartmentID int64) ([]model.ImageAsset, error) {
	var images []model.ImageAsset
	err := s.db.WithContext(ctx).
		Where("apartment_id = ?", apartmentID).
		Order("sort_order ASC").Order("id ASC").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("list images for apartment %d: %w", apartmentID, err)
	}
	return images, nil
}

// CoverImages returns the first image of each apartment, in the order of apartmentIDs.
// Apartments without images are skipped.
func (s *gormStore) CoverImages(ctx context.Context, apartmentIDs []int64) ([]model.ImageAsset, error) {
	covers := []model.ImageAsset{}
	if len(apartmentIDs) == 0 {
		return covers, nil
	}

	var images []model.ImageAsset
	err := s.db.WithContext(ctx).
		Where("apartment_id IN ?", apartmentIDs).
		Order("apartment_id ASC").Order("sort_order ASC").Order("id ASC").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("list cover images: %w", err)
	}

	first := make(map[int64]model.ImageAsset, len(images))
	for _, img := range images {
		if img.ApartmentID == nil {
			continue
		}
		if _, seen := first[*img.ApartmentID]; !seen {
			first[*img.ApartmentID] = img
		}
	}
	for _, id := range apartmentIDs {
		if img, ok := first[id]; ok {
			covers = append(covers, img)
		}
	}
	return covers, nil
}

func (s *gormStore) PriceHistory(ctx context.Context, apartmentID int64) ([]model.PriceHistory, error) {
	var rows []model.PriceHistory
	err := s.db.WithContext(ctx).
		Where("apartment_id = ?", apartmentID).
		Order("recorded_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("price history for apartment %d: %w", apartmentID, err)
	}
	return rows, nil
}

func (s *gormStore) ListFloorPlans(ctx context.Context) ([]model.FloorPlan, error) {
	var plans []model.FloorPlan
	if err := s.db.WithContext(ctx).Order("beds ASC").Order("id ASC").Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("list floor plans: %w", err)
	}
	return plans, nil
}

func (s *gormStore) GetFloorPlan(ctx context.Context, id int64) (*model.FloorPlan, error) {
	var plan model.FloorPlan
	if err := s.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &plan, nil
}

func (s *gormStore) ListScrapeLogs(ctx context.Context, limit int) ([]model.ScrapeLog, error) {
	var logs []model.ScrapeLog
	q := s.db.WithContext(ctx).Order("started_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list scrape logs: %w", err)
	}
	return logs, nil
}

// LatestScrapeLog returns nil without error when no scrape has run yet.
func (s *gormStore) LatestScrapeLog(ctx context.Context) (*model.ScrapeLog, error) {
	logs, err := s.ListScrapeLogs(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, nil
	}
	return &logs[0], nil
}

func (s *gormStore) CreateScrapeLog(ctx context.Context, log *model.ScrapeLog) error {
	if err := s.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("create scrape log: %w", err)
	}
	return nil
}

func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
	}).Create(sub).Error
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		return nil, notFound(err)
	}
	return &sub, nil
}
