// Package engine classifies collection schedules as overdue relative to
// wall-clock time. Schedules carry only a weekday name and a time slot, no
// calendar date, so a weekday earlier in the week than today is assumed to be
// its most recent occurrence. That assumption cannot tell "last Monday" from
// "next Monday" once a slot goes more than six days unattended; the day-name
// model is an upstream contract this service does not own.
package engine

import (
	"time"

	"collection-status-backend/internal/slot"
)

// ScheduleStatus is the canonical status of a schedule.
type ScheduleStatus string

const (
	StatusPending    ScheduleStatus = "Pending"
	StatusInProgress ScheduleStatus = "In Progress"
	StatusCompleted  ScheduleStatus = "Completed"
	StatusDelayed    ScheduleStatus = "Delayed"
	StatusUnknown    ScheduleStatus = "Unknown"
)

// DefaultGrace is the slack added to a slot's end time before a same-day
// schedule counts as overdue. All call sites share this one value.
const DefaultGrace = 15 * time.Minute

// Apology sends are only allowed between these wall-clock hours.
const (
	apologyOpenHour  = 18
	apologyCloseHour = 21
)

var dayIndexes = map[string]int{
	"Sunday":    0,
	"Monday":    1,
	"Tuesday":   2,
	"Wednesday": 3,
	"Thursday":  4,
	"Friday":    5,
	"Saturday":  6,
}

// DayIndex returns the weekday index (Sunday=0 … Saturday=6) for an English
// weekday name.
func DayIndex(name string) (int, bool) {
	idx, ok := dayIndexes[name]
	return idx, ok
}

// Classification is the derived, non-persisted overdue state of a schedule.
type Classification struct {
	Overdue       bool
	FromYesterday bool
}

// Classify determines whether a schedule is overdue at the given instant.
// Only pending schedules can be overdue. Malformed slots and unknown day
// names fail closed: bad data never raises a false alarm.
func Classify(day, slotStr string, status ScheduleStatus, now time.Time, grace time.Duration) Classification {
	c := Classification{
		FromYesterday: day == now.Add(-24*time.Hour).Weekday().String(),
	}

	if status != StatusPending {
		return c
	}

	dayIdx, ok := DayIndex(day)
	if !ok {
		return c
	}

	endMinutes, err := slot.EndMinutes(slotStr)
	if err != nil {
		return c
	}

	todayIdx := int(now.Weekday())
	nowMinutes := now.Hour()*60 + now.Minute()

	switch {
	case dayIdx == todayIdx:
		c.Overdue = nowMinutes > endMinutes+int(grace.Minutes())
	case dayIdx < todayIdx:
		// A past weekday within the week is overdue regardless of slot time.
		c.Overdue = true
	}
	return c
}

// ApologyWindowOpen reports whether an apology send may be offered at the
// given instant (wall-clock hours 18:00–21:00, end exclusive).
func ApologyWindowOpen(now time.Time) bool {
	h := now.Hour()
	return h >= apologyOpenHour && h < apologyCloseHour
}
