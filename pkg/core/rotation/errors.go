package rotation

import "errors"

var (
	// ErrEmptyRoster is returned when no available people exist to build weights from
	ErrEmptyRoster = errors.New("no available people in roster")

	// ErrInsufficientStaff is returned when fewer than two people are available
	ErrInsufficientStaff = errors.New("at least two available people are required")

	// ErrDegenerateWeights is returned when weights can no longer be normalized.
	// The engine recovers from it by resetting to uniform weights.
	ErrDegenerateWeights = errors.New("total weight is zero")
)
