package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"apartment-tracker-backend/internal/store"
)

// ListSaved returns the bookmarks, newest first.
func (h *Handler) ListSaved(c *gin.Context) {
	saved, err := h.store.ListSaved(c.Request.Context())
	if err != nil {
		h.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

type saveRequest struct {
	// Accepts both 12 and "12".
	ApartmentID json.Number `json:"apartment_id"`
	Notes       *string     `json:"notes"`
}

// SaveApartment bookmarks an apartment.
func (h *Handler) SaveApartment(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	id, err := req.ApartmentID.Int64()
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "apartment_id is required"})
		return
	}

	saved, err := h.store.SaveApartment(c.Request.Context(), id, req.Notes, h.now())
	if err != nil {
		h.fail(c, err, "Apartment not found")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"saved": saved})
}

// DeleteSaved removes a bookmark.
func (h *Handler) DeleteSaved(c *gin.Context) {
	id, ok := idParam(c, "apartment_id")
	if !ok {
		return
	}
	deleted, err := h.store.DeleteSaved(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Saved apartment not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateSaved edits the notes or the alert flag of a bookmark.
func (h *Handler) UpdateSaved(c *gin.Context) {
	id, ok := idParam(c, "apartment_id")
	if !ok {
		return
	}
	var patch store.SavedPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	saved, err := h.store.UpdateSaved(c.Request.Context(), id, patch)
	if err != nil {
		h.fail(c, err, "Saved apartment not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}
