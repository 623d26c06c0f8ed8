package repositories

import "errors"

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicate      = errors.New("duplicate record")
	ErrBookingOverlap = errors.New("booking overlaps an existing booking")
)
