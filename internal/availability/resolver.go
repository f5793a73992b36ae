package availability

import (
	"fmt"
	"time"
)

// DayDefaults returns the schedule applied to a weekday with no saved
// config: Sundays are blocked, Saturdays open a single morning slot,
// weekdays open the standard three.
func DayDefaults(weekday time.Weekday) (blocked bool, slots []string) {
	switch weekday {
	case time.Sunday:
		return true, nil
	case time.Saturday:
		return false, []string{"08:00"}
	default:
		return false, []string{"08:00", "11:00", "16:00"}
	}
}

// ResolveSlots computes the bookable slots for a date. cfg may be nil, in
// which case weekday defaults apply. taken holds "HH:MM" times already
// occupied by a live appointment on that date. When date is today, times
// at or before now are dropped.
func ResolveSlots(date time.Time, cfg *DayConfig, taken map[string]bool, now time.Time) []Slot {
	var times []string
	if cfg != nil {
		if cfg.IsBlocked {
			return []Slot{}
		}
		times = cfg.Slots
	} else {
		blocked, defaults := DayDefaults(date.Weekday())
		if blocked {
			return []Slot{}
		}
		times = defaults
	}

	sameDay := date.Year() == now.Year() && date.YearDay() == now.YearDay()
	cutoff := fmt.Sprintf("%02d:%02d", now.Hour(), now.Minute())

	out := []Slot{}
	for _, t := range times {
		if sameDay && t <= cutoff {
			continue
		}
		out = append(out, Slot{Time: t, Available: !taken[t]})
	}
	return out
}
