package catalog

import (
	"github.com/One-Up-Dev/ai-process-tester-apt/irt"
	"github.com/One-Up-Dev/ai-process-tester-apt/types"
)

// preliminaryDiscount is applied to an uncalibrated item's Fisher
// information before it is compared against calibrated candidates. It
// depresses noisy items so they are only preferred when their true
// information is meaningfully higher than calibrated alternatives.
const preliminaryDiscount = 0.5

// Selector picks the next item to administer. It is stateless: all
// context is passed in as arguments, so a single Selector value can be
// shared across sessions and goroutines without synchronization.
type Selector struct{}

// NewSelector returns a ready-to-use Selector.
func NewSelector() *Selector {
	return &Selector{}
}

// SelectNext returns the candidate item of the given dimension, not
// already in administered, with the highest Fisher information at theta
// (preliminary items discounted by preliminaryDiscount). Ties are broken
// by insertion order in candidates: the first-seen maximum wins. It
// returns nil when no eligible candidate exists.
func (s *Selector) SelectNext(theta float64, candidates []types.Item, administered map[string]bool, dimension types.Dimension) *types.Item {
	var best *types.Item
	var bestScore float64

	for i := range candidates {
		item := candidates[i]
		if item.Dimension != dimension {
			continue
		}
		if administered[item.ID] {
			continue
		}

		score := irt.FisherInformation(theta, item.Alpha, item.Beta, item.Gamma)
		if item.IsPreliminary {
			score *= preliminaryDiscount
		}

		if best == nil || score > bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}

	return best
}
