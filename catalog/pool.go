package catalog

import "github.com/One-Up-Dev/ai-process-tester-apt/types"

// Pool is a read-only view over a fixed set of calibrated items. Once
// constructed it is never mutated; callers that need a filtered or
// narrowed view build a new Pool from ForDimension's result.
type Pool struct {
	items []types.Item
}

// NewPool builds a Pool from items, copying the slice so the caller's
// backing array can be reused or mutated without affecting the pool.
func NewPool(items []types.Item) *Pool {
	owned := make([]types.Item, len(items))
	copy(owned, items)
	return &Pool{items: owned}
}

// All returns every item in the pool, in insertion order.
func (p *Pool) All() []types.Item {
	return p.items
}

// ForDimension returns the items in the pool matching dimension, in
// insertion order.
func (p *Pool) ForDimension(dimension types.Dimension) []types.Item {
	var out []types.Item
	for _, item := range p.items {
		if item.Dimension == dimension {
			out = append(out, item)
		}
	}
	return out
}

// Len reports the total number of items in the pool.
func (p *Pool) Len() int {
	return len(p.items)
}
