package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"apartment-tracker-backend/internal/store"
)

const importShapeError = "Body must be { units: ImportUnit[] }"

type importRequest struct {
	Units json.RawMessage `json:"units"`
}

// Import reconciles a batch of hand-collected units. The route is guarded by mw.RequireToken.
func (h *Handler) Import(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	var req importRequest
	var elems []json.RawMessage
	if json.Unmarshal(body, &req) != nil || json.Unmarshal(req.Units, &elems) != nil || len(elems) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": importShapeError})
		return
	}

	units, decodeErrors := decodeImportUnits(elems)
	results := h.store.ImportUnits(c.Request.Context(), h.now(), units)
	results.Received = len(elems)
	results.Errors = append(decodeErrors, results.Errors...)
	c.JSON(http.StatusOK, gin.H{"ok": true, "results": results})
}

// decodeImportUnits decodes each element on its own so one malformed unit is
// reported without rejecting the batch.
func decodeImportUnits(elems []json.RawMessage) ([]store.ImportUnit, []string) {
	units := make([]store.ImportUnit, 0, len(elems))
	errs := []string{}
	for i, elem := range elems {
		var u store.ImportUnit
		if err := json.Unmarshal(elem, &u); err != nil {
			errs = append(errs, fmt.Sprintf("units[%d]: %v", i, err))
			continue
		}
		units = append(units, u)
	}
	return units, errs
}
