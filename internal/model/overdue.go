package model

import "time"

// OverdueOpen represents a schedule that is currently overdue (hot table).
type OverdueOpen struct {
	ScheduleID    int64     `gorm:"primaryKey"`
	FirstSeenAt   time.Time `gorm:"not null"`
	Day           string    `gorm:"size:16;not null"`
	Slot          string    `gorm:"size:64;not null"`
	FromYesterday bool      `gorm:"not null"`
}

// Overdue episode resolutions recorded in OverdueHistory.
const (
	ResolutionCompleted   = "completed"   // marked Completed while overdue
	ResolutionRecovered   = "recovered"   // no longer classified overdue (week rolled over)
	ResolutionDisappeared = "disappeared" // schedule vanished from the upstream feed
)

// OverdueHistory is the archived log of resolved overdue episodes (cold table).
type OverdueHistory struct {
	ID          int64     `gorm:"autoIncrement"`
	ScheduleID  int64     `gorm:"not null;index;primaryKey"`
	ResolvedAt  time.Time `gorm:"not null;index;primaryKey"` // Time the episode's END was observed
	FirstSeenAt time.Time `gorm:"not null"`
	Day         string    `gorm:"size:16;not null"`
	Slot        string    `gorm:"size:64;not null"`
	Resolution  string    `gorm:"size:16;not null"`
}
