package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"apartment-tracker-backend/internal/model"
)

// ListScrapeLogs returns the most recent scrape runs.
func (h *Handler) ListScrapeLogs(c *gin.Context) {
	logs, err := h.store.ListScrapeLogs(c.Request.Context(), h.logLimit)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	if logs == nil {
		logs = []model.ScrapeLog{}
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// TriggerScrape queues a scrape outside the schedule.
func (h *Handler) TriggerScrape(c *gin.Context) {
	if h.scraper == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scraper is not running"})
		return
	}
	if !h.scraper.Trigger() {
		c.JSON(http.StatusConflict, gin.H{"error": "scrape already queued"})
		return
	}
	h.logger.Info("scrape triggered", zap.String("ip", c.ClientIP()))
	c.JSON(http.StatusAccepted, gin.H{"status": "triggered"})
}
