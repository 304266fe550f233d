// Package catalog holds a read-only pool of calibrated items and the
// deterministic item selector that picks the next item for a CAT session.
//
// A Pool is built once and never mutated afterward; sessions read it
// through Pool.ForDimension and track their own administered-item set
// separately. The selector is stateless: it takes the pool, the current
// ability estimate, and the administered set as plain arguments, and
// always returns the same item for the same inputs.
package catalog
