package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"collection-status-backend/internal/engine"
	"collection-status-backend/internal/model"
)

// CompleteSchedule handles POST /api/schedules/{schedule_id}/complete.
// The upstream store is the source of truth: it is written first, and a
// failure there leaves local state untouched so the schedule stays visible
// as still pending.
func (h *Handler) CompleteSchedule(c *gin.Context) {
	scheduleID, err := strconv.ParseInt(c.Param("schedule_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}

	if err := h.upstream.MarkComplete(c.Request.Context(), scheduleID); err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.CompleteSchedule(c.Request.Context(), scheduleID, h.now()); err != nil {
		// Upstream accepted the change; the next sync cycle will reconcile.
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Completed upstream but failed to update local state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": string(engine.StatusCompleted)})
}

type sendApologyRequest struct {
	Today    bool `json:"today"`
	Tomorrow bool `json:"tomorrow"`
}

// apologyResult is the outcome of one apology dispatch.
type apologyResult struct {
	Target     string `json:"target"`
	DispatchID string `json:"dispatchId"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

// SendApology handles POST /api/hotels/{hotel_id}/apology. Today and tomorrow
// sends are independent dispatches: each gets its own result and its own
// persisted record, so a caller can retry just the failed one.
func (h *Handler) SendApology(c *gin.Context) {
	hotelID, err := strconv.ParseInt(c.Param("hotel_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid hotel ID"})
		return
	}

	var req sendApologyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Today && !req.Tomorrow {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "No apology target requested"})
		return
	}

	now := h.now()
	if !engine.ApologyWindowOpen(now) {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Apology window is closed"})
		return
	}

	var targets []string
	if req.Today {
		targets = append(targets, model.ApologyTargetToday)
	}
	if req.Tomorrow {
		targets = append(targets, model.ApologyTargetTomorrow)
	}

	results := make([]apologyResult, 0, len(targets))
	allOK := true
	for _, target := range targets {
		result := apologyResult{
			Target:     target,
			DispatchID: uuid.NewString(),
			OK:         true,
		}

		if err := h.upstream.SendApology(c.Request.Context(), hotelID, target); err != nil {
			result.OK = false
			result.Error = err.Error()
			allOK = false
		}

		record := model.ApologyDispatch{
			ID:        result.DispatchID,
			HotelID:   hotelID,
			Target:    target,
			SentAt:    now,
			Succeeded: result.OK,
			Error:     result.Error,
		}
		if err := h.store.DB().WithContext(c.Request.Context()).Create(&record).Error; err != nil {
			// The dispatch itself already happened; losing the audit row is
			// not worth failing the request over.
			c.Error(err)
		}

		results = append(results, result)
	}

	status := http.StatusOK
	if !allOK {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"results": results})
}
