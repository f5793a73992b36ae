package users

import "errors"

var (
	// ErrNotFound is returned when no user matches the lookup
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when registering an already used email
	ErrEmailTaken = errors.New("email already registered")
)
