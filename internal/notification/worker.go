package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"apartment-tracker-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// PriceChange is a price movement on a tracked apartment.
type PriceChange struct {
	ApartmentID int64
	OldPrice    float64
	NewPrice    float64
}

// Message is the JSON payload delivered to the browser's service worker.
type Message struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	ApartmentID int64  `json:"apartment_id"`
}

// WorkerPool manages a pool of workers for sending price alerts.
type WorkerPool struct {
	size    int
	jobs    chan PriceChange
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options, logger *zap.Logger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan PriceChange, size*8),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		logger:  logger,
	}
}

// Start launches the worker goroutines. They exit when ctx is done.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Wait blocks until every worker has returned.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	log := wp.logger.With(zap.Int("worker", id))
	log.Debug("worker started")
	for {
		select {
		case job := <-wp.jobs:
			log.Debug("processing price change", zap.Int64("apartment_id", job.ApartmentID))
			wp.notifyPriceChange(ctx, job)
		case <-ctx.Done():
			log.Debug("worker shutting down")
			return
		}
	}
}

// Dispatch queues a job, giving up when ctx is cancelled first.
func (wp *WorkerPool) Dispatch(ctx context.Context, job PriceChange) error {
	select {
	case wp.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BuildMessage renders the alert text for a price change on unitNumber.
func BuildMessage(unitNumber string, job PriceChange) Message {
	verb := "dropped"
	if job.NewPrice > job.OldPrice {
		verb = "rose"
	}
	return Message{
		Title:       fmt.Sprintf("Unit %s price %s", unitNumber, verb),
		Body:        fmt.Sprintf("Unit %s %s from $%.0f to $%.0f", unitNumber, verb, job.OldPrice, job.NewPrice),
		ApartmentID: job.ApartmentID,
	}
}

// notifyPriceChange alerts every subscriber when the apartment is saved with alerts on.
func (wp *WorkerPool) notifyPriceChange(ctx context.Context, job PriceChange) {
	log := wp.logger.With(zap.Int64("apartment_id", job.ApartmentID))

	var saved model.SavedApartment
	res := wp.db.WithContext(ctx).Where("apartment_id = ?", job.ApartmentID).Limit(1).Find(&saved)
	if res.Error != nil {
		log.Error("fetching saved apartment", zap.Error(res.Error))
		return
	}
	if res.RowsAffected == 0 || !saved.NotifyOnPriceChange {
		return
	}

	unitNumber := fmt.Sprintf("#%d", job.ApartmentID)
	var apt model.Apartment
	if err := wp.db.WithContext(ctx).Select("unit_number").First(&apt, job.ApartmentID).Error; err != nil {
		log.Warn("fetching apartment", zap.Error(err))
	} else if apt.UnitNumber != "" {
		unitNumber = apt.UnitNumber
	}

	var subscriptions []model.PushSubscription
	if err := wp.db.WithContext(ctx).Find(&subscriptions).Error; err != nil {
		log.Error("fetching subscriptions", zap.Error(err))
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(BuildMessage(unitNumber, job))
	if err != nil {
		log.Error("encoding message", zap.Error(err))
		return
	}

	log.Info("sending price alerts", zap.Int("subscriptions", len(subscriptions)))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.logger.Warn("sending notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		wp.logger.Info("subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			wp.logger.Error("deleting expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}
