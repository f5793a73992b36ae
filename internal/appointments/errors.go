package appointments

import "errors"

var (
	// ErrNotFound indicates the appointment does not exist.
	ErrNotFound = errors.New("appointment not found")
	// ErrForbidden indicates the actor does not own the appointment.
	ErrForbidden = errors.New("appointment access denied")
	// ErrAlreadyCancelled indicates a repeated cancellation attempt.
	ErrAlreadyCancelled = errors.New("appointment already cancelled")
	// ErrSlotTaken indicates a live appointment already holds the slot.
	ErrSlotTaken = errors.New("slot already taken")
	// ErrDebtOutstanding blocks booking while the user owes money.
	ErrDebtOutstanding = errors.New("user has outstanding debt")
)
