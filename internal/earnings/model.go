package earnings

import "time"

// Adjustment is a manual earnings correction the admin records: cash
// jobs, refunds, product sales. Amount may be negative.
type Adjustment struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Summary aggregates a month of revenue: deposits actually collected
// through the gateway plus manual adjustments.
type Summary struct {
	Month       string  `json:"month"`
	Deposits    float64 `json:"deposits"`
	Adjustments float64 `json:"adjustments"`
	Total       float64 `json:"total"`
}
