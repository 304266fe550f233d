// Package events implements the engine's single-threaded, typed
// publish/subscribe mechanism. Subscribers are invoked synchronously,
// in registration order, inside Emit; a wildcard subscriber receives
// every event after the typed subscribers for that event have run.
package events
