// Package buoyancy centralizes surface-height sampling for floating bodies.
//
// Querying a wave surface is an iterative solve, too expensive to issue once
// per body. Instead, every registered body contributes its sample points to a
// shared fixed-capacity pool each tick; one batched, data-parallel solve
// resolves all of them; and the results are scattered back by owner index to
// snap each body's vertical position to the mean height under its pontoons.
package buoyancy

import "errors"

// Vec3 is a world-space position. Y is vertical.
type Vec3 struct {
	X, Y, Z float32
}

// Handle is the position-bearing dynamics handle of a floating body.
// Handles must be comparable; the registry identifies bodies by handle
// identity.
type Handle interface {
	Position() Vec3
	SetPosition(Vec3)
}

// Point is a sample location on a body. WorldPosition is queried live each
// tick; implementations must not cache across ticks.
type Point interface {
	WorldPosition() Vec3
}

// Oracle answers batched surface-height queries.
//
// RefreshSnapshot is called exactly once per tick, before SolveBatch, and
// must capture whatever surface state the solve needs. A refresh error skips
// the whole tick.
//
// SolveBatch resolves every position in positions[0:n] and writes the
// estimated height, residual error, and iteration count into the parallel
// output slices at the same index. The call is a synchronous barrier and
// strictly data-parallel: no sample's result may depend on another's.
// SolveBatch is never called with an empty batch.
type Oracle interface {
	RefreshSnapshot() error
	SolveBatch(positions []Vec3, heights, residuals []float32, iterations []uint8, maxIterations int, errorThreshold float32)
}

// DropPolicy selects how the dispatcher reacts when a tick's samples exceed
// pool capacity.
type DropPolicy int

const (
	// DropLog truncates collection, logs a warning, and carries on. Bodies
	// past the cutoff get an understated average that tick.
	DropLog DropPolicy = iota
	// DropFail makes Tick return ErrPoolOverflow instead. Intended for tests
	// and pool-sizing runs.
	DropFail
)

var (
	// ErrNilHandle is returned by Register for a nil dynamics handle.
	ErrNilHandle = errors.New("buoyancy: nil handle")
	// ErrAlreadyRegistered is returned by Register when the handle is
	// already present.
	ErrAlreadyRegistered = errors.New("buoyancy: handle already registered")
	// ErrPoolOverflow is returned by Tick under DropFail when a tick's
	// samples exceed pool capacity.
	ErrPoolOverflow = errors.New("buoyancy: sample pool overflow")
)

// TickReport summarizes one pipeline pass.
type TickReport struct {
	Bodies  int  // registered bodies at collection time
	Samples int  // samples collected and solved
	Dropped int  // samples dropped due to capacity overflow
	Skipped bool // true when the snapshot refresh failed and nothing ran
}

// Timer receives phase boundaries inside a tick, for perf instrumentation.
// Satisfied by telemetry.PerfCollector.
type Timer interface {
	StartPhase(name string)
}
