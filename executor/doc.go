// Package executor drives a full evaluation run: it optionally
// discovers registry-advertised backends, health-checks the combined
// backend set, warms up the target, administers items per dimension
// (adaptively via session.Session or exhaustively), and emits the
// events.Bus lifecycle described by spec.md §4.7 and §6.
package executor
