package backend

import (
	"context"

	"github.com/One-Up-Dev/ai-process-tester-apt/adapter"
	"github.com/One-Up-Dev/ai-process-tester-apt/types"
)

// BuiltinID is the identifier the executor falls back to when no
// preferred or otherwise available backend can be found.
const BuiltinID = "built-in"

// Backend is the pluggable contract the executor drives. An
// implementation declares what it supports and runs a single item
// against the target through the given adapter.
type Backend interface {
	// ID uniquely identifies this backend among those configured on an
	// executor.
	ID() string

	// Name is a human-readable label.
	Name() string

	// SupportedCategories lists the dimensions this backend can execute
	// items for; an empty slice means "all".
	SupportedCategories() []types.Dimension

	// Capabilities reports optional feature support.
	Capabilities() types.BackendCapabilities

	// Healthcheck reports whether this backend is currently usable.
	Healthcheck(ctx context.Context) (available bool, version string, errMessage string)

	// Execute runs item against the target reached through adapter and
	// returns the resulting TestResult. An error here is a backend- or
	// transport-level failure; callers convert it into a failed
	// (passed=false, score=0) result rather than aborting the run.
	Execute(ctx context.Context, item types.Item, adapter adapter.Adapter) (types.TestResult, error)
}
