package convergence

import "time"

// Config carries every tunable the controller consults. Nothing here is
// a package-level global; a caller running several dimensions with
// different budgets constructs one Config per dimension.
type Config struct {
	// SEThreshold stops the dimension once the standard error falls
	// below this value.
	SEThreshold float64

	// MaxTests stops the dimension once this many responses have been
	// recorded, regardless of precision reached.
	MaxTests int

	// Timeout stops the dimension once this much wall-clock time has
	// elapsed since the session started.
	Timeout time.Duration

	// StableWindow is the number of trailing ability deltas that must
	// all be below StableDelta for the stability criterion to fire.
	StableWindow int

	// StableDelta is the per-step ability-change threshold used by the
	// stability criterion.
	StableDelta float64
}

// DefaultConfig returns the engine's default convergence budget: SE
// threshold 0.3, at most 100 items, a 30-minute wall-clock ceiling, and a
// 5-response stability window at delta 0.1.
func DefaultConfig() Config {
	return Config{
		SEThreshold:  0.3,
		MaxTests:     100,
		Timeout:      30 * time.Minute,
		StableWindow: 5,
		StableDelta:  0.1,
	}
}
