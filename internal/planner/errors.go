package planner

import "errors"

// Error kinds surfaced by the planning pipeline. All are recoverable by the
// caller; a run that fails produces no partial output.
var (
	// ErrInvalidGeometry marks NaN or infinite coordinates, or a zero or
	// negative radius reaching the grid builder.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrConfiguration marks tunables that cannot produce a usable plan:
	// a non-positive burn rate, a resolution yielding zero cells, or a
	// resolution that would exceed the cell-count bound.
	ErrConfiguration = errors.New("configuration error")
)
