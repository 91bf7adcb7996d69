package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"apartment-tracker-backend/internal/store"
)

// Trigger queues an out-of-schedule scrape. It reports false when one is already queued.
// OnCycle registers a callback run after every scrape cycle.
type Trigger interface {
	Trigger() bool
	OnCycle(fn func())
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	webpush  *webpush.Options
	scraper  Trigger
	logger   *zap.Logger
	logLimit int
	now      func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, webpushOptions *webpush.Options, scraper Trigger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:    s,
		webpush:  webpushOptions,
		scraper:  scraper,
		logger:   logger,
		logLimit: 50,
		now:      time.Now,
	}
}

// idParam reads a positive integer path parameter. It writes the 400 itself.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// fail maps store errors onto a response: ErrNotFound becomes a 404 with notFoundMsg,
// anything else is logged and reported as a 500.
func (h *Handler) fail(c *gin.Context, err error, notFoundMsg string) {
	if errors.Is(err, store.ErrNotFound) && notFoundMsg != "" {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
		return
	}
	h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
