package editor

import "errors"

var (
	// ErrInvalidState is returned for an action the current mode does not allow.
	ErrInvalidState = errors.New("invalid state")
	// ErrPrecondition is returned when Step or Finish is requested before both
	// endpoints are set.
	ErrPrecondition = errors.New("precondition failed")
)
