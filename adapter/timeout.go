package adapter

import "time"

// Timeout carries the per-request timeout budgets an Adapter
// implementation is responsible for enforcing. The engine itself never
// imposes a per-request timeout; it only classifies a request that
// exceeded one as a failed response and continues (see the engine's
// error taxonomy, KindTimeout).
type Timeout struct {
	// Connect bounds how long Connect may take to establish a session
	// with the target.
	Connect time.Duration

	// Request bounds how long a single Send call may take.
	Request time.Duration
}

// DefaultTimeout returns a conservative timeout budget: 10s to connect,
// 30s per request.
func DefaultTimeout() Timeout {
	return Timeout{
		Connect: 10 * time.Second,
		Request: 30 * time.Second,
	}
}
