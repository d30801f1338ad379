package upstream

import (
	"collection-status-backend/internal/store"
	"collection-status-backend/internal/thread"
)

// ScheduleResponse models the paginated envelope of the schedule store's list endpoint.
type ScheduleResponse struct {
	Code int `json:"code"`
	Data struct {
		Page     int                 `json:"page"`
		PageSize int                 `json:"pageSize"`
		Total    int                 `json:"total"`
		Items    []store.ApiSchedule `json:"items"`
	} `json:"data"`
}

// MessageResponse models the flat message list from the notification dispatcher.
type MessageResponse struct {
	Code int              `json:"code"`
	Data []thread.Message `json:"data"`
}
