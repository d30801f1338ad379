package model

import "time"

// Apology dispatch targets.
const (
	ApologyTargetToday    = "today"
	ApologyTargetTomorrow = "tomorrow"
)

// ApologyDispatch records a single apology send attempt to the upstream
// notification dispatcher. Today and tomorrow sends are separate rows so
// callers can retry just the failed one.
type ApologyDispatch struct {
	ID        string    `gorm:"primaryKey;size:36"` // UUID
	HotelID   int64     `gorm:"index;not null"`
	Target    string    `gorm:"size:16;not null"`
	SentAt    time.Time `gorm:"not null"`
	Succeeded bool      `gorm:"not null"`
	Error     string    `gorm:"size:512"`
}
