package scraper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"apartment-tracker-backend/config"
	"apartment-tracker-backend/internal/model"
	"apartment-tracker-backend/internal/notification"
	"apartment-tracker-backend/internal/parse"
	"apartment-tracker-backend/internal/store"
)

// Notifier receives price changes found during a scrape.
type Notifier interface {
	Dispatch(ctx context.Context, change notification.PriceChange) error
}

// Result summarises one scrape cycle.
type Result struct {
	RunID        string
	Status       string
	UnitsFound   int
	NewUnits     int
	PriceChanges int
	MarkedStale  int64
	Summary      map[string]int
	Errors       []string
	StartedAt    time.Time
	CompletedAt  time.Time
}

// Service orchestrates scraping the configured sources and persisting what they list.
type Service struct {
	cfg      *config.Config
	store    store.Store
	sources  []Source
	notifier Notifier
	logger   *zap.Logger
	trigger  chan struct{}
	now      func() time.Time

	mu         sync.Mutex
	afterCycle []func()
}

// NewService creates and initializes a new scraper service. notifier may be nil.
func NewService(cfg *config.Config, st store.Store, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	fetcher := NewFetcher(cfg.Scraper, logger)
	return &Service{
		cfg:      cfg,
		store:    st,
		sources:  NewSources(cfg.Scraper, fetcher, logger),
		notifier: notifier,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Trigger requests an immediate scrape. It returns false when one is already queued.
func (s *Service) Trigger() bool {
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// OnCycle registers fn to run after every scrape cycle, once its writes are done.
func (s *Service) OnCycle(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.afterCycle = append(s.afterCycle, fn)
}

// Run scrapes on the configured interval until ctx is done. Manual triggers are
// served even when the schedule is disabled.
func (s *Service) Run(ctx context.Context) {
	if s.cfg.Scraper.Enabled {
		s.logger.Info("starting scraper service", zap.Duration("interval", s.cfg.Scraper.Interval))
		s.ScrapeOnce(ctx)

		timer := time.NewTimer(s.cfg.Scraper.Interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("scraper service shutting down")
				return
			case <-timer.C:
				s.ScrapeOnce(ctx)
				timer.Reset(s.cfg.Scraper.Interval)
			case <-s.trigger:
				s.ScrapeOnce(ctx)
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(s.cfg.Scraper.Interval)
			}
		}
	}

	s.logger.Info("scheduled scraping is disabled, waiting for manual triggers")
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.trigger:
			s.ScrapeOnce(ctx)
		}
	}
}

type sourceResult struct {
	units []store.ScrapedUnit
	err   error
}

// ScrapeOnce runs every source concurrently, reconciles the combined listing with the
// database and records a scrape log.
func (s *Service) ScrapeOnce(ctx context.Context) Result {
	res := Result{RunID: uuid.NewString(), StartedAt: s.now(), Errors: []string{}}
	log := s.logger.With(zap.String("run_id", res.RunID))
	log.Info("executing scrape cycle", zap.Int("sources", len(s.sources)))

	results := make([]sourceResult, len(s.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range s.sources {
		g.Go(func() error {
			units, err := src.Scrape(gctx)
			results[i] = sourceResult{units: units, err: err}
			// A failing source must not cancel the others.
			return nil
		})
	}
	_ = g.Wait()

	var all []store.ScrapedUnit
	succeeded := 0
	for i, r := range results {
		name := s.sources[i].Name()
		if r.err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", name, r.err))
			log.Error("source scrape failed", zap.String("source", name), zap.Error(r.err))
			continue
		}
		succeeded++
		all = append(all, r.units...)
		log.Info("source scrape complete", zap.String("source", name), zap.Int("units", len(r.units)))
	}

	normalized := Normalize(all)
	res.Summary = SummarizeBySource(normalized)
	res.UnitsFound = len(normalized)
	res.Status = cycleStatus(len(res.Errors), succeeded)

	now := s.now()
	seen := make([]string, 0, len(normalized))
	for _, u := range normalized {
		seen = append(seen, parse.CompositeKey(u.FloorPlanName, u.Beds, u.Baths, u.SqFt, u.UnitNumber))

		out, err := s.store.PersistUnit(ctx, now, u)
		if err != nil {
			log.Error("persist unit failed", zap.String("unit", u.UnitNumber), zap.Error(err))
			continue
		}
		if out.IsNew {
			res.NewUnits++
		}
		if out.PriceChanged {
			res.PriceChanges++
			s.dispatch(ctx, notification.PriceChange{
				ApartmentID: out.ApartmentID,
				OldPrice:    out.OldPrice,
				NewPrice:    out.NewPrice,
			})
		}
	}

	if res.Status != model.ScrapeStatusFailed && len(seen) > 0 {
		n, err := s.store.MarkStale(ctx, now, seen)
		if err != nil {
			log.Error("marking stale units failed", zap.Error(err))
		}
		res.MarkedStale = n
	}

	res.CompletedAt = s.now()
	entry := &model.ScrapeLog{
		RunID:           res.RunID,
		StartedAt:       res.StartedAt,
		CompletedAt:     res.CompletedAt,
		Source:          "all",
		Status:          res.Status,
		UnitsFound:      res.UnitsFound,
		NewUnits:        res.NewUnits,
		PriceChanges:    res.PriceChanges,
		DurationSeconds: res.CompletedAt.Sub(res.StartedAt).Seconds(),
		ErrorMessage:    strings.Join(res.Errors, " | "),
	}
	if err := s.store.CreateScrapeLog(ctx, entry); err != nil {
		log.Error("writing scrape log failed", zap.Error(err))
	}

	log.Info("scrape cycle finished",
		zap.String("status", res.Status),
		zap.Int("units", res.UnitsFound),
		zap.Int("new_units", res.NewUnits),
		zap.Int("price_changes", res.PriceChanges),
		zap.Any("summary", res.Summary))

	s.mu.Lock()
	hooks := s.afterCycle
	s.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
	return res
}

func (s *Service) dispatch(ctx context.Context, change notification.PriceChange) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Dispatch(ctx, change); err != nil {
		s.logger.Warn("dropping price alert", zap.Int64("apartment_id", change.ApartmentID), zap.Error(err))
	}
}

func cycleStatus(failed, succeeded int) string {
	switch {
	case failed == 0:
		return model.ScrapeStatusSuccess
	case succeeded > 0:
		return model.ScrapeStatusPartial
	default:
		return model.ScrapeStatusFailed
	}
}
