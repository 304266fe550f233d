package adapter

import (
	"context"

	"github.com/One-Up-Dev/ai-process-tester-apt/types"
)

// ResponseFormat names the shape of a target's reply.
type ResponseFormat string

const (
	FormatText     ResponseFormat = "text"
	FormatJSON     ResponseFormat = "json"
	FormatMarkdown ResponseFormat = "markdown"
)

// Response is what a target returned for a single Send call.
type Response struct {
	Content   string         `json:"content"`
	Format    ResponseFormat `json:"format"`
	LatencyMs int64          `json:"latency_ms"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// InspectResult summarizes what is currently known about the target
// without sending it a test input.
type InspectResult struct {
	Reachable        bool
	ResponseFormat   ResponseFormat
	DetectedProvider string
	Headers          map[string]string
}

// TargetConfig carries whatever the underlying connection layer needs to
// reach a target. The engine treats it as an opaque value handed through
// to Connect.
type TargetConfig struct {
	Endpoint string
	Headers  map[string]string
	Timeout  Timeout
}

// Adapter is the contract the engine consumes to reach a target. A real
// implementation (an HTTP client with retries, backoff, and env-var
// expansion) lives outside this engine; this interface is the boundary
// it must satisfy.
type Adapter interface {
	// Connect establishes the connection described by config. Failure
	// categories (ConnectionError, AuthError, ...) are communicated
	// through the returned error; the engine does not inspect transport
	// specifics, only whether Connect succeeded.
	Connect(ctx context.Context, config TargetConfig) error

	// Send delivers input to the target and returns its reply. A
	// TimeoutError, TransportError, ParseError, or AuthError here is
	// recorded by the caller as a failed response rather than aborting
	// the run; see the engine's error taxonomy.
	Send(ctx context.Context, input types.ItemInput) (Response, error)

	// Inspect reports what is currently known about the target without
	// sending it a test input.
	Inspect(ctx context.Context) (InspectResult, error)

	// Disconnect releases any resources Connect acquired.
	Disconnect() error
}
