// Package adapter defines the contract the engine uses to reach a
// text-generating target. The target connection layer itself (an HTTP
// client with retries, env-var expansion, and authentication) is an
// external collaborator out of this engine's scope; this package
// specifies only the boundary the engine consumes, plus a small
// in-memory Adapter implementation used by the engine's own tests.
package adapter
