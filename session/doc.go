// Package session implements the per-dimension Computerized Adaptive
// Testing session state machine: a mutable ability/SE estimate, the set
// of administered items, and the ordered response history, advanced one
// recorded response at a time.
package session
