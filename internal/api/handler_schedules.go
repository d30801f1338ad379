package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"collection-status-backend/internal/engine"
	"collection-status-backend/internal/model"
	"collection-status-backend/internal/mw"
)

// Schedule view names for the GET /api/schedules endpoint, matching the
// dashboard's three screens.
const (
	ViewPending    = "pending"
	ViewIncomplete = "incomplete"
	ViewCompleted  = "completed"
)

// scheduleStatusResponse is the flattened structure for the API response.
type scheduleStatusResponse struct {
	ID            int64  `json:"id"`
	HotelID       int64  `json:"hotelId"`
	HotelName     string `json:"hotelName"`
	Address       string `json:"address"`
	Day           string `json:"day"`
	Slot          string `json:"slot"`
	Status        string `json:"status"`
	IsVisible     bool   `json:"isVisible"`
	Overdue       bool   `json:"overdue"`
	FromYesterday bool   `json:"fromYesterday"`
}

func (h *Handler) classify(s model.Schedule) scheduleStatusResponse {
	cls := engine.Classify(s.Day, s.Slot, engine.ScheduleStatus(s.Status), h.now(), h.grace)
	return scheduleStatusResponse{
		ID:            s.ID,
		HotelID:       s.HotelID,
		HotelName:     s.Hotel.Name,
		Address:       s.Hotel.Address,
		Day:           s.Day,
		Slot:          s.Slot,
		Status:        s.Status,
		IsVisible:     s.IsVisible,
		Overdue:       cls.Overdue,
		FromYesterday: cls.FromYesterday,
	}
}

// GetHotelSchedules handles the GET /api/hotels/{hotel_id}/schedules request.
func (h *Handler) GetHotelSchedules(c *gin.Context) {
	hotelID, err := strconv.ParseInt(c.Param("hotel_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid hotel ID"})
		return
	}

	query := h.store.DB().Preload("Hotel").Where("hotel_id = ?", hotelID)
	if session, ok := mw.SessionFrom(c); ok && session.Role == mw.RoleClient {
		query = query.Where("is_visible = ?", true)
	}

	var schedules []model.Schedule
	if err := query.Find(&schedules).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve schedules"})
		return
	}

	response := make([]scheduleStatusResponse, 0, len(schedules))
	for _, s := range schedules {
		response = append(response, h.classify(s))
	}
	c.JSON(http.StatusOK, response)
}

// GetSchedules handles the GET /api/schedules?view= request backing the
// pending, incomplete, and completed screens.
func (h *Handler) GetSchedules(c *gin.Context) {
	view := c.DefaultQuery("view", ViewPending)

	query := h.store.DB().Preload("Hotel")
	switch view {
	case ViewPending:
		query = query.Where("status = ?", string(engine.StatusPending))
	case ViewIncomplete:
		query = query.Joins("JOIN overdue_opens ON overdue_opens.schedule_id = schedules.id")
	case ViewCompleted:
		query = query.Where("status = ?", string(engine.StatusCompleted))
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Unknown view"})
		return
	}

	if session, ok := mw.SessionFrom(c); ok && session.Role == mw.RoleClient {
		query = query.Where("is_visible = ?", true)
	}

	var schedules []model.Schedule
	if err := query.Find(&schedules).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve schedules"})
		return
	}

	response := make([]scheduleStatusResponse, 0, len(schedules))
	for _, s := range schedules {
		response = append(response, h.classify(s))
	}
	c.JSON(http.StatusOK, response)
}
