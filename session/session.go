package session

import (
	"fmt"
	"math"
	"time"

	"github.com/One-Up-Dev/ai-process-tester-apt/ability"
	"github.com/One-Up-Dev/ai-process-tester-apt/convergence"
	"github.com/One-Up-Dev/ai-process-tester-apt/irt"
	"github.com/One-Up-Dev/ai-process-tester-apt/types"
)

// Snapshot is a read-only view of a Session's state at a point in time.
type Snapshot struct {
	Dimension        types.Dimension
	Theta            float64
	SE               float64
	ResponseCount    int
	Administered     map[string]bool
	ConvergedAtIndex *int
	StartTime        time.Time
}

// Session is the per-dimension Computerized Adaptive Testing state
// machine described by spec.md §3: a mutable ability/SE estimate
// advanced one recorded response at a time, over a fixed, dimension-
// filtered item pool. A Session is not safe for concurrent use; the
// engine administers exactly one dimension at a time.
type Session struct {
	dimension  types.Dimension
	pool       []types.Item
	itemsByID  map[string]types.Item
	convConfig convergence.Config
	controller *convergence.Controller

	theta float64
	se    float64

	administeredItems []types.Item
	correct           []int
	responses         []types.Response
	administered      map[string]bool

	startTime         time.Time
	convergedAtIndex  *int
	convergenceReason string
}

// New creates a Session for dimension over pool (already filtered to
// dimension by the caller) using cfg to decide when the dimension has
// converged.
func New(dimension types.Dimension, pool []types.Item, cfg convergence.Config) *Session {
	itemsByID := make(map[string]types.Item, len(pool))
	for _, item := range pool {
		itemsByID[item.ID] = item
	}

	return &Session{
		dimension:    dimension,
		pool:         append([]types.Item(nil), pool...),
		itemsByID:    itemsByID,
		convConfig:   cfg,
		controller:   convergence.NewController(),
		se:           math.Inf(1),
		administered: make(map[string]bool),
		startTime:    time.Now(),
	}
}

// Dimension returns the session's immutable dimension.
func (s *Session) Dimension() types.Dimension {
	return s.dimension
}

// AvailableItems returns the pool items not yet administered, the
// candidate set the selector chooses from.
func (s *Session) AvailableItems() []types.Item {
	out := make([]types.Item, 0, len(s.pool)-len(s.administered))
	for _, item := range s.pool {
		if !s.administered[item.ID] {
			out = append(out, item)
		}
	}
	return out
}

// RecordResponse folds a binary outcome for itemID into the session: it
// re-estimates ability/SE over the full administered set and appends a
// Response carrying the post-update snapshot. It is an error to
// administer the same item twice.
func (s *Session) RecordResponse(itemID string, passed bool) error {
	if s.administered[itemID] {
		return fmt.Errorf("session: item %q already administered in dimension %s", itemID, s.dimension)
	}
	item, ok := s.itemsByID[itemID]
	if !ok {
		return fmt.Errorf("session: item %q is not in the pool for dimension %s", itemID, s.dimension)
	}

	correct := 0
	if passed {
		correct = 1
	}

	s.administeredItems = append(s.administeredItems, item)
	s.correct = append(s.correct, correct)
	s.administered[itemID] = true

	theta, se, _, _ := ability.Estimate(s.administeredItems, s.correct)
	s.theta = theta
	s.se = se

	now := time.Now()
	s.responses = append(s.responses, types.Response{
		ItemID:     itemID,
		Correct:    correct,
		Timestamp:  now,
		ThetaAfter: theta,
		SEAfter:    se,
	})

	if s.convergedAtIndex == nil {
		if converged, reason := s.CheckConvergence(); converged {
			idx := len(s.responses)
			s.convergedAtIndex = &idx
			s.convergenceReason = reason
		}
	}

	return nil
}

// CheckConvergence asks the convergence controller whether this session
// should stop, based on its current SE, response count, elapsed time, and
// ability history. It does not mutate the session; RecordResponse is the
// only place convergedAtIndex is set.
func (s *Session) CheckConvergence() (bool, string) {
	state := convergence.State{
		SE:            s.se,
		ResponseCount: len(s.responses),
		Elapsed:       time.Since(s.startTime),
		ThetaHistory:  s.thetaHistory(),
	}
	return s.controller.IsConverged(state, s.convConfig)
}

func (s *Session) thetaHistory() []float64 {
	history := make([]float64, len(s.responses))
	for i, r := range s.responses {
		history[i] = r.ThetaAfter
	}
	return history
}

// Snapshot returns a read-only copy of the session's current state.
func (s *Session) Snapshot() Snapshot {
	administered := make(map[string]bool, len(s.administered))
	for k, v := range s.administered {
		administered[k] = v
	}

	return Snapshot{
		Dimension:        s.dimension,
		Theta:            s.theta,
		SE:               s.se,
		ResponseCount:    len(s.responses),
		Administered:     administered,
		ConvergedAtIndex: s.convergedAtIndex,
		StartTime:        s.startTime,
	}
}

// Result produces the final DimensionResult for this session, per
// spec.md §4.7 step 5: ability, SE, 95% confidence interval, normalized
// score, item count, and the convergence index/reason if the session
// converged.
func (s *Session) Result() types.DimensionResult {
	return types.DimensionResult{
		Dimension:         s.dimension,
		Theta:             s.theta,
		SE:                s.se,
		CILower:           s.theta - 1.96*s.se,
		CIUpper:           s.theta + 1.96*s.se,
		NTests:            len(s.responses),
		NormalizedScore:   irt.NormalizedScore(s.theta),
		ConvergedAtIndex:  s.convergedAtIndex,
		ConvergenceReason: s.convergenceReason,
	}
}
