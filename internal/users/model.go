package users

import (
	"strings"
	"time"
)

// Roles assignable to a user account.
const (
	RoleClient = "CLIENT"
	RoleAdmin  = "ADMIN"
)

// User represents a registered account. Debt and credit are mutated by the
// cancellation engine; a user carrying debt cannot book.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Role         string     `json:"role"`
	IsBlocked    bool       `json:"isBlocked"`
	Debt         float64    `json:"debt"`
	CreditAmount float64    `json:"creditAmount"`
	CreditExpiry *time.Time `json:"creditExpiry,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	DeletedAt    *time.Time `json:"-"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// NormalizeEmail lowercases and trims an address. Emails are unique
// case-insensitively, so every lookup and insert goes through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
