package store

import "collection-status-backend/internal/engine"

// ApiSchedule represents a single schedule record from the upstream schedule store.
type ApiSchedule struct {
	ID        int64  `json:"id"`
	HotelID   int64  `json:"hotelId"`
	HotelName string `json:"hotelName"`
	Address   string `json:"address"`
	Day       string `json:"day"`
	Slot      string `json:"slot"`
	Status    string `json:"status"`
	IsVisible bool   `json:"isVisible"`

	// CanonicalStatus is resolved by the syncer from the raw Status string.
	CanonicalStatus engine.ScheduleStatus `json:"-"`
}
