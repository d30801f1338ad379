package model

import "time"

// Hotel represents a client hotel served by the collection service.
type Hotel struct {
	ID        int64     `gorm:"primaryKey"` // Upstream ID
	Name      string    `gorm:"uniqueIndex;size:256;not null"`
	Address   string    `gorm:"size:512"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	// Associations
	Schedules []Schedule `gorm:"foreignKey:HotelID"`
}
