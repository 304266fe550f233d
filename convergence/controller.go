package convergence

import (
	"fmt"
	"math"
	"time"
)

// State is the minimal slice of a CAT session's state the controller
// needs. Callers (the session/executor packages) build it from their own
// richer state rather than the controller depending on their types.
type State struct {
	// SE is the current standard error of the ability estimate.
	SE float64

	// ResponseCount is the number of responses recorded so far.
	ResponseCount int

	// Elapsed is the wall-clock time since the session started.
	Elapsed time.Duration

	// ThetaHistory is the ability estimate recorded after each response,
	// in administration order. Its length equals ResponseCount.
	ThetaHistory []float64
}

// Controller checks the four stopping criteria in priority order. It
// holds no state; a single value can be shared across every dimension.
type Controller struct{}

// NewController returns a ready-to-use Controller.
func NewController() *Controller {
	return &Controller{}
}

// IsConverged reports whether state satisfies config's stopping
// criteria, and if so, a human-readable reason naming which criterion
// fired. An empty history (no responses yet) is never converged.
func (c *Controller) IsConverged(state State, config Config) (converged bool, reason string) {
	if state.ResponseCount == 0 {
		return false, ""
	}

	if state.SE < config.SEThreshold {
		return true, fmt.Sprintf("SE %.4f below threshold %.4f", state.SE, config.SEThreshold)
	}

	if state.ResponseCount >= config.MaxTests {
		return true, fmt.Sprintf("reached max tests (%d)", config.MaxTests)
	}

	if state.Elapsed >= config.Timeout {
		return true, fmt.Sprintf("Timeout after %s", state.Elapsed)
	}

	if stable, ok := c.stabilityReason(state, config); ok {
		return true, stable
	}

	return false, ""
}

// stabilityReason checks whether the last config.StableWindow consecutive
// theta deltas are each strictly below config.StableDelta. It requires
// StableWindow+1 theta samples to form StableWindow deltas.
func (c *Controller) stabilityReason(state State, config Config) (string, bool) {
	need := config.StableWindow + 1
	if config.StableWindow <= 0 || len(state.ThetaHistory) < need {
		return "", false
	}

	window := state.ThetaHistory[len(state.ThetaHistory)-need:]
	for i := 1; i < len(window); i++ {
		delta := math.Abs(window[i] - window[i-1])
		if delta >= config.StableDelta {
			return "", false
		}
	}

	return fmt.Sprintf("stable within %.4f over last %d responses", config.StableDelta, config.StableWindow), true
}
