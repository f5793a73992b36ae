package services

import "errors"

var (
	// ErrNotFound indicates the requested service does not exist.
	ErrNotFound = errors.New("service not found")
)
