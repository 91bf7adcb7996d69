package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStats returns the dashboard headline numbers.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetPriceTrends returns average prices per bed count.
func (h *Handler) GetPriceTrends(c *gin.Context) {
	trends, err := h.store.PriceTrends(c.Request.Context(), h.now())
	if err != nil {
		h.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, trends)
}
