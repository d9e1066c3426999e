package domain

import "errors"

var (
	// ErrNotFound is returned when a stored analysis does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidSnapshot is returned when a snapshot fails validation
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)
