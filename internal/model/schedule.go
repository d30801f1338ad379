package model

import "time"

// Schedule represents a recurring weekly collection slot for a hotel.
// Day is a weekday name, not a calendar date; Slot is either a symbolic
// label ("Morning", "Afternoon") or a literal "HH:MM – HH:MM" range.
type Schedule struct {
	ID        int64  `gorm:"primaryKey"` // Upstream ID
	HotelID   int64  `gorm:"index;not null"`
	Day       string `gorm:"size:16;not null"`
	Slot      string `gorm:"size:64;not null"`
	Status    string `gorm:"size:32;not null"`
	IsVisible bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Associations
	Hotel Hotel `gorm:"constraint:OnDelete:CASCADE"`
}
