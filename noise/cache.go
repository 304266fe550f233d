package noise

import "context"

// Cache memoizes warm-up reference-input responses across Isolator
// instances sharing a process, so repeated warm-ups against the same
// reference input can skip the round trip to the target. It is an
// optional performance enrichment: an Isolator with no Cache configured
// always reaches the adapter directly, preserving spec.md §4.5's exact
// warm-up behavior.
type Cache interface {
	// Get returns the cached response for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key.
	Set(ctx context.Context, key string, value string) error
}
