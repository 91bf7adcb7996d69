package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"apartment-tracker-backend/internal/filter"
	"apartment-tracker-backend/internal/model"
)

// ListFloorPlans returns every floor plan.
func (h *Handler) ListFloorPlans(c *gin.Context) {
	plans, err := h.store.ListFloorPlans(c.Request.Context())
	if err != nil {
		h.fail(c, err, "")
		return
	}
	if plans == nil {
		plans = []model.FloorPlan{}
	}
	c.JSON(http.StatusOK, gin.H{"floor_plans": plans})
}

// GetFloorPlan returns a floor plan with its units, narrowed by the query filters.
func (h *Handler) GetFloorPlan(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	plan, err := h.store.GetFloorPlan(ctx, id)
	if err != nil {
		h.fail(c, err, "Floor plan not found")
		return
	}
	apartments, err := h.store.ListApartmentsByFloorPlan(ctx, id)
	if err != nil {
		h.fail(c, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"floor_plan": plan,
		"apartments": filter.Apply(apartments, filter.ParseQuery(c.Request.URL.Query())),
	})
}
