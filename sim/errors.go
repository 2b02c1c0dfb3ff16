package sim

import "errors"

// Error taxonomy for the simulation core (spec §7).
//
// ErrInvalidInput and ErrResourceExhausted are returned (never panicked)
// by counters and entity constructors so callers can recover from bad
// input. ErrInvalidState marks programmer-error conditions — a dequeue
// from an empty structure, a release that doesn't match a prior
// allocation — and is expected to propagate up and stop the simulation.
// A Simulator with no datacenter attached terminates without error.
var (
	// ErrInvalidInput means a constructor or allocate() constraint was
	// violated: non-positive capacity, negative size, utilization outside
	// (0,1].
	ErrInvalidInput = errors.New("cloudsim: invalid input")

	// ErrResourceExhausted means an allocation was attempted beyond what
	// is available. Placement policies must treat this as a signal to
	// roll back the current batch; it must never escape try-to-place.
	ErrResourceExhausted = errors.New("cloudsim: resource exhausted")

	// ErrInvalidState marks programmer-error conditions that are not
	// expected to occur given correct calling discipline.
	ErrInvalidState = errors.New("cloudsim: invalid state")
)
