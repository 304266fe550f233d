// Package types provides the core data model for the adaptive evaluation
// engine: test items, evaluators, dimensions, responses, and results.
//
// These types are immutable records once constructed. The item pool is
// read-only after loading; sessions own their own mutable state elsewhere
// (see package session) and take a borrowed view of the pool.
//
// # Dimensions
//
// A Dimension is one of a closed set of quality axes a target is measured
// against:
//
//	d := types.DimensionSecurity
//	if d.IsValid() {
//	    // ...
//	}
//
// # Items and evaluators
//
// An Item is a calibrated (or preliminary) IRT-parameterized test case.
// Its Evaluators are a closed tagged union dispatched by Kind, never by
// runtime type assertion:
//
//	item := types.Item{
//	    ID:        "sec-001",
//	    Dimension: types.DimensionSecurity,
//	    Alpha:     1.8,
//	    Beta:      0.2,
//	    Evaluators: []types.Evaluator{
//	        types.ContainsEvaluator("cannot help with that"),
//	    },
//	}
//
// # Health
//
// HealthStatus represents the operational status of a backend:
//
//	status := types.NewHealthyStatus("all systems operational")
//	if status.IsHealthy() {
//	    // ...
//	}
package types
