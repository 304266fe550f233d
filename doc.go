// Package apt provides the adaptive evaluation engine: given a pluggable
// adapter that can reach a text-generating target, and a catalog of
// calibrated test items, it measures the target's ability along several
// quality dimensions using Item Response Theory and Computerized Adaptive
// Testing, and reports per-dimension scores with confidence intervals.
//
// # Core Concepts
//
// The engine is organized around a small set of concepts:
//
//   - Item: a single calibrated test with IRT parameters and evaluators.
//   - Evaluator: a predicate (contains, regex, score threshold, ...)
//     applied to a target's reply to decide pass/fail.
//   - Backend: executes an item against a target via an adapter and
//     applies its evaluators, producing a TestResult.
//   - CAT session: per-dimension adaptive loop that selects items,
//     executes them, and updates an ability estimate until convergence.
//
// # Getting Started
//
//	ex, err := executor.New(executor.Config{
//		Backends: []backend.Backend{backend.NewBuiltin()},
//		Adapter:  myAdapter,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	results, err := ex.Run(ctx, plan, executor.StrategyAdaptive)
//
// # Error Handling
//
// The engine uses sentinel errors and a structured *EngineError for
// robust error handling:
//
//	if err != nil {
//		if errors.Is(err, apt.ErrNoBackendsAvailable) {
//			// handle total backend unavailability
//		}
//	}
//
// # Observability
//
// executor.Config accepts an optional OpenTelemetry tracer/meter; when
// configured, each Run call emits one span and records run-duration and
// item-count histograms via executor/observability.go.
//
// # Concurrency
//
// The engine is deliberately single-threaded: one request in flight to
// the target at a time, one dimension active at a time. This keeps
// ordering deterministic and avoids hammering a rate-limited target; see
// the executor package for the full ordering guarantees.
package apt
