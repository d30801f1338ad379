package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"collection-status-backend/internal/model"
)

// HotelResponse represents the API response for a single hotel.
type HotelResponse struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Address          string `json:"address"`
	TotalSchedules   int64  `json:"totalSchedules"`
	OverdueSchedules int64  `json:"overdueSchedules"`
}

// GetHotels handles the GET /api/hotels request.
func (h *Handler) GetHotels(c *gin.Context) {
	db := h.store.DB()

	var hotels []model.Hotel
	if err := db.Find(&hotels).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve hotels"})
		return
	}

	type aggRow struct {
		HotelID int64
		Total   int64
	}

	var scheduleAggs []aggRow
	if err := db.
		Model(&model.Schedule{}).
		Select("hotel_id as hotel_id, COUNT(*) as total").
		Group("hotel_id").
		Scan(&scheduleAggs).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate schedules"})
		return
	}

	var overdueAggs []aggRow
	if err := db.
		Model(&model.OverdueOpen{}).
		Select("schedules.hotel_id as hotel_id, COUNT(*) as total").
		Joins("JOIN schedules ON schedules.id = overdue_opens.schedule_id").
		Group("schedules.hotel_id").
		Scan(&overdueAggs).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate overdue schedules"})
		return
	}

	totals := make(map[int64]int64, len(scheduleAggs))
	for _, a := range scheduleAggs {
		totals[a.HotelID] = a.Total
	}
	overdues := make(map[int64]int64, len(overdueAggs))
	for _, a := range overdueAggs {
		overdues[a.HotelID] = a.Total
	}

	responses := make([]HotelResponse, 0, len(hotels))
	for _, hotel := range hotels {
		responses = append(responses, HotelResponse{
			ID:               hotel.ID,
			Name:             hotel.Name,
			Address:          hotel.Address,
			TotalSchedules:   totals[hotel.ID],
			OverdueSchedules: overdues[hotel.ID],
		})
	}
	c.JSON(http.StatusOK, responses)
}
