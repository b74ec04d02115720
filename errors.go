package qgate

import "errors"

var (
	// ErrOutOfRange is returned for cell coordinates outside the grid.
	ErrOutOfRange = errors.New("cell out of range")
	// ErrInvalidDimensions is returned when a grid is configured with
	// non-positive rows, columns, pitch or match threshold.
	ErrInvalidDimensions = errors.New("invalid grid dimensions")
	ErrUnknownGate       = errors.New("unknown gate")
	ErrUnknownState      = errors.New("unknown quantum state")
	ErrUnknownEntity     = errors.New("unknown entity")
)
