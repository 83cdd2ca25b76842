package sim

import "errors"

// Domain errors for the simulation manager.
var (
	// ErrInvalidSettings indicates settings that cannot drive a simulation.
	ErrInvalidSettings = errors.New("sim: invalid settings")

	// ErrNoProgress indicates a frame that advances no simulated time.
	ErrNoProgress = errors.New("sim: frame does not advance simulated time")
)
