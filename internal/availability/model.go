package availability

import "time"

// DayConfig is the admin-saved schedule for a single date. When no row
// exists for a date, weekday defaults apply instead.
type DayConfig struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	IsBlocked bool      `json:"isBlocked"`
	Slots     []string  `json:"slots"`
}

// Slot is one bookable time on a given date. Available is false when a
// live appointment already occupies it.
type Slot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}
