// Package convergence decides when a CAT session has collected enough
// responses to stop testing a dimension. It checks four criteria, in a
// fixed priority order, and stops at the first one that fires: standard
// error below threshold, an item-count budget, a wall-clock budget, and a
// stability window over recent ability deltas.
//
// Controller is pure and has no side effects: given the same State and
// Config it always returns the same verdict.
package convergence
