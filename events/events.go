package events

import "time"

// Type identifies one of the engine's event kinds, emitted in the
// ordering guarantees spec.md §5 describes.
type Type string

const (
	// Started fires once, at the beginning of a run, carrying the plan's
	// size; the plan's items themselves are not included.
	Started Type = "executor.started"

	// WarmupProgress fires once per warm-up request the noise isolator
	// sends, carrying the current/total counts.
	WarmupProgress Type = "executor.warmup.progress"

	// TestStarted fires immediately before an item is executed.
	TestStarted Type = "executor.test.started"

	// TestCompleted fires strictly after the corresponding session
	// RecordResponse call, carrying the item's outcome and the session's
	// post-update ability/SE.
	TestCompleted Type = "executor.test.completed"

	// IRTUpdated follows TestCompleted for the same item, carrying the
	// dimension's updated ability/SE/response count.
	IRTUpdated Type = "executor.irt.updated"

	// DimensionConverged fires at most once per session, before the
	// executor moves to the next dimension.
	DimensionConverged Type = "executor.dimension.converged"

	// Completed is the last event of a run, carrying the run's evaluation
	// ID; the ExecutionResults are returned by Run, not carried here.
	Completed Type = "executor.completed"
)

// Event is a single typed occurrence dispatched through a Bus. Payload
// carries the fields spec.md §6 lists for Type; callers type-assert it
// to the concrete payload struct for Type (StartedPayload,
// WarmupProgressPayload, and so on).
type Event struct {
	Type      Type
	Payload   any
	Timestamp time.Time
}

// StartedPayload is Event.Payload for Started.
type StartedPayload struct {
	PlanSize int
}

// WarmupProgressPayload is Event.Payload for WarmupProgress.
type WarmupProgressPayload struct {
	Current int
	Total   int
}

// TestStartedPayload is Event.Payload for TestStarted.
type TestStartedPayload struct {
	ItemID    string
	Dimension string
}

// TestCompletedPayload is Event.Payload for TestCompleted.
type TestCompletedPayload struct {
	ItemID    string
	Passed    bool
	Theta     float64
	SE        float64
	Dimension string
}

// IRTUpdatedPayload is Event.Payload for IRTUpdated.
type IRTUpdatedPayload struct {
	Dimension string
	Theta     float64
	SE        float64
	NTests    int
}

// DimensionConvergedPayload is Event.Payload for DimensionConverged.
type DimensionConvergedPayload struct {
	Dimension string
	Theta     float64
	SE        float64
	Reason    string
}

// CompletedPayload is Event.Payload for Completed.
type CompletedPayload struct {
	EvaluationID string
}
