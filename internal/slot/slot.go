package slot

import (
	"fmt"
	"strconv"
	"strings"
)

// Symbolic slot labels and the end-of-day references they resolve to.
const (
	LabelMorning   = "Morning"
	LabelAfternoon = "Afternoon"

	morningEndMinutes   = 12 * 60 // 12:00
	afternoonEndMinutes = 18 * 60 // 18:00
)

// rangeSeparator is the en-dash used in literal "HH:MM – HH:MM" slots.
const rangeSeparator = "–"

// ParseClock converts an "HH:MM" string to minutes since midnight.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value: %q", s)
	}

	hh, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}

	if hh < 0 || hh > 23 {
		return 0, fmt.Errorf("hour out of range in %q", s)
	}
	if mm < 0 || mm > 59 {
		return 0, fmt.Errorf("minute out of range in %q", s)
	}

	return hh*60 + mm, nil
}

// EndMinutes resolves a slot string to the minutes-since-midnight of its end
// time. Symbolic labels map to fixed end-of-day references; anything else must
// be a literal "HH:MM – HH:MM" range, whose end component is returned. Both
// sides of a literal range must parse, so a half-broken slot is rejected whole.
func EndMinutes(raw string) (int, error) {
	s := strings.TrimSpace(raw)

	switch s {
	case LabelMorning:
		return morningEndMinutes, nil
	case LabelAfternoon:
		return afternoonEndMinutes, nil
	}

	parts := strings.Split(s, rangeSeparator)
	if len(parts) != 2 {
		return 0, fmt.Errorf("slot %q is not a symbolic label or a time range", raw)
	}

	if _, err := ParseClock(parts[0]); err != nil {
		return 0, fmt.Errorf("bad range start in slot %q: %w", raw, err)
	}

	end, err := ParseClock(parts[1])
	if err != nil {
		return 0, fmt.Errorf("bad range end in slot %q: %w", raw, err)
	}
	return end, nil
}
