// Package backend defines the pluggable execution-backend contract and
// the built-in backend that applies an item's declared evaluators to a
// target's reply.
//
// A Backend is handed an item and an adapter; it sends the item's input
// through the adapter, evaluates the reply against every declared
// evaluator, and returns a types.TestResult. The built-in backend
// implements the six evaluator kinds as a closed switch over
// types.EvaluatorKind, with no runtime reflection.
package backend
