package gridmap

import "errors"

var (
	// ErrOutOfBounds is returned when a coordinate lies outside the grid.
	ErrOutOfBounds = errors.New("coordinate out of bounds")
	// ErrInvalidCell is returned when a cell value breaks a cell invariant
	// (non-positive cost, dangling or self-referential one-way target).
	ErrInvalidCell = errors.New("invalid cell")
	// ErrInvalidDimensions is returned for row or column counts outside
	// 1..MaxDimension.
	ErrInvalidDimensions = errors.New("invalid grid dimensions")
	// ErrUnsupportedVersion is returned when a saved map was written by a newer format.
	ErrUnsupportedVersion = errors.New("unsupported map format version")
	// ErrCorrupt is returned when a saved map does not describe a consistent grid.
	ErrCorrupt = errors.New("corrupt map data")
	// ErrNoBackground is returned by AutoFill when there is no image to sample.
	ErrNoBackground = errors.New("no background image")
)
