package apt

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Sentinel errors for common engine conditions. Use errors.Is to check
// for these against a wrapped *EngineError.
var (
	// ErrNoBackendsAvailable indicates every configured backend failed
	// its healthcheck. The run is fatal.
	ErrNoBackendsAvailable = errors.New("no backends available")

	// ErrSelectorExhausted indicates the item selector returned no
	// further candidates for a dimension. This is not itself an error
	// condition for the executor (the dimension simply stops), but is
	// exposed so callers of the lower-level packages can distinguish
	// it from other nil returns.
	ErrSelectorExhausted = errors.New("item selector exhausted")

	// ErrInvalidConfig indicates the provided configuration is invalid
	// or incomplete (e.g. empty backend list, nil adapter).
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrAdapterRequired indicates an executor was built without an
	// adapter to reach the target.
	ErrAdapterRequired = errors.New("adapter is required")
)

// Error kinds categorize EngineError by cause, not by stack layer, per
// the engine's error taxonomy.
const (
	// KindTransport covers recoverable adapter failures: connection
	// refused, DNS failure, transient 5xx, 429.
	KindTransport = "transport"

	// KindTimeout covers a single request exceeding its budget.
	KindTimeout = "timeout"

	// KindProtocol covers malformed responses from the target: bad
	// JSON, or a 4xx other than 429. Fatal at the item level, non-fatal
	// at the run level.
	KindProtocol = "protocol"

	// KindBackendUnavailable covers a missing preferred backend
	// (non-fatal, the executor falls back) or no backend at all for
	// any item (run-fatal).
	KindBackendUnavailable = "backend_unavailable"

	// KindConfiguration covers missing required inputs to the
	// executor. Always run-fatal, surfaced before work begins.
	KindConfiguration = "configuration"

	// KindNumerical covers estimator pathologies: divide-by-zero or NaN.
	// Should never be visible to a caller since the estimator always
	// falls back to a safe prior, but the kind exists so a bug that
	// reaches the surface is identifiable.
	KindNumerical = "numerical"
)

// EngineError is a structured error wrapping an underlying cause with the
// operation that failed and its taxonomy Kind.
//
// EngineError implements error and supports Unwrap/Is, so errors.Is and
// errors.As work against both the EngineError itself and its wrapped
// cause.
type EngineError struct {
	// Op is the operation that failed (e.g. "executor.runDimension").
	Op string

	// Kind categorizes the error; one of the Kind* constants.
	Kind string

	// Err is the underlying error that caused this error.
	Err error

	// Context carries extra debugging information (item ID, backend ID,
	// dimension, ...).
	Context map[string]any
}

func (e *EngineError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("apt: %s: %s", e.Op, e.Kind)
	}
	if len(e.Context) > 0 {
		return fmt.Sprintf("apt: %s (%s): %v [context: %+v]", e.Op, e.Kind, e.Err, e.Context)
	}
	return fmt.Sprintf("apt: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// Is allows matching by Kind: a target *EngineError with only Kind (and
// optionally Op) set matches any EngineError sharing those fields, in
// addition to delegating to the wrapped error.
func (e *EngineError) Is(target error) bool {
	if target == nil {
		return false
	}
	if t, ok := target.(*EngineError); ok {
		if t.Kind != "" && e.Kind == t.Kind {
			if t.Op == "" || e.Op == t.Op {
				return true
			}
		}
	}
	return errors.Is(e.Err, target)
}

// WithContext returns a copy of e with ctx merged into Context.
func (e *EngineError) WithContext(ctx map[string]any) *EngineError {
	newErr := *e
	if newErr.Context == nil {
		newErr.Context = make(map[string]any, len(ctx))
	}
	for k, v := range ctx {
		newErr.Context[k] = v
	}
	return &newErr
}

// NewTransportError creates an EngineError with KindTransport.
func NewTransportError(op string, err error) *EngineError {
	return &EngineError{Op: op, Kind: KindTransport, Err: err}
}

// NewTimeoutError creates an EngineError with KindTimeout.
func NewTimeoutError(op string, err error) *EngineError {
	return &EngineError{Op: op, Kind: KindTimeout, Err: err}
}

// NewProtocolError creates an EngineError with KindProtocol.
func NewProtocolError(op string, err error) *EngineError {
	return &EngineError{Op: op, Kind: KindProtocol, Err: err}
}

// NewBackendUnavailableError creates an EngineError with KindBackendUnavailable.
func NewBackendUnavailableError(op string, err error) *EngineError {
	return &EngineError{Op: op, Kind: KindBackendUnavailable, Err: err}
}

// NewConfigurationError creates an EngineError with KindConfiguration.
func NewConfigurationError(op string, err error) *EngineError {
	return &EngineError{Op: op, Kind: KindConfiguration, Err: err}
}

// NewNumericalError creates an EngineError with KindNumerical.
func NewNumericalError(op string, err error) *EngineError {
	return &EngineError{Op: op, Kind: KindNumerical, Err: err}
}

// CloseWithLog closes closer and logs any error at warning level instead
// of returning it, for use in defer statements where cleanup failures
// should not be silently dropped nor allowed to mask the primary error.
func CloseWithLog(closer io.Closer, logger *slog.Logger, name string) {
	if closer == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := closer.Close(); err != nil {
		logger.Warn("failed to close resource", "resource", name, "error", err)
	}
}
