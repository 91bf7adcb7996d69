package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"apartment-tracker-backend/internal/filter"
	"apartment-tracker-backend/internal/model"
)

// ListApartments returns the apartments matching the query filters with one cover image each.
func (h *Handler) ListApartments(c *gin.Context) {
	ctx := c.Request.Context()
	f := filter.ParseQuery(c.Request.URL.Query())

	apartments, err := h.store.ListApartments(ctx, f)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	if apartments == nil {
		apartments = []model.Apartment{}
	}

	ids := make([]int64, len(apartments))
	for i, apt := range apartments {
		ids[i] = apt.ID
	}
	images, err := h.store.CoverImages(ctx, ids)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	if images == nil {
		images = []model.ImageAsset{}
	}

	latest, err := h.store.LatestScrapeLog(ctx)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	var lastScrape any
	if latest != nil {
		lastScrape = latest.CompletedAt
	}

	c.JSON(http.StatusOK, gin.H{
		"apartments":  apartments,
		"images":      images,
		"total":       len(apartments),
		"last_scrape": lastScrape,
	})
}

// GetApartment returns a single apartment.
func (h *Handler) GetApartment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	apt, err := h.store.GetApartment(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Apartment not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"apartment": apt})
}

// GetApartmentImages returns every image of an apartment in display order.
func (h *Handler) GetApartmentImages(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	images, err := h.store.ApartmentImages(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	if images == nil {
		images = []model.ImageAsset{}
	}
	c.JSON(http.StatusOK, gin.H{"apartment_id": id, "images": images})
}

// GetPriceHistory returns the chart points of an apartment, oldest first.
func (h *Handler) GetPriceHistory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.store.PriceHistory(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	history := make([]model.PriceHistoryPoint, len(rows))
	for i, row := range rows {
		history[i] = row.Point()
	}
	c.JSON(http.StatusOK, gin.H{"apartment_id": id, "history": history})
}
