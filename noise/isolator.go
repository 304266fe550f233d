package noise

import (
	"context"
	"math"
	"sort"

	"github.com/One-Up-Dev/ai-process-tester-apt/adapter"
	"github.com/One-Up-Dev/ai-process-tester-apt/backend"
	"github.com/One-Up-Dev/ai-process-tester-apt/types"
)

const (
	defaultWarmupCount  = 3
	defaultReplications = 1
	defaultCVThreshold  = 0.15
)

// Config configures an Isolator's warm-up and replication behavior.
type Config struct {
	// WarmupCount is how many times the reference input is sent during
	// WarmUp. Zero means the default of 3.
	WarmupCount int

	// Replications is how many times Execute runs the backend against
	// the same item. Zero or one means execute once with cv=0, flag=false.
	Replications int

	// CVThreshold is the coefficient-of-variation value above which
	// Execute's result is flagged noisy. Zero means the default of 0.15.
	CVThreshold float64

	// Cache, if set, is consulted and populated during WarmUp so that
	// repeated warm-ups against the same reference input across Isolator
	// instances can skip the round trip to the target. Nil means every
	// WarmUp call reaches the adapter directly.
	Cache Cache
}

// DefaultConfig returns the isolator defaults from spec.md §4.5.
func DefaultConfig() Config {
	return Config{
		WarmupCount:  defaultWarmupCount,
		Replications: defaultReplications,
		CVThreshold:  defaultCVThreshold,
	}
}

// Stats summarizes a batch of replicated scores.
type Stats struct {
	Mean              float64
	StdDev            float64
	CV                float64
	Flag              bool
	Replications      []types.TestResult
	RepresentativeIdx int
}

// Isolator performs the warm-up and replicated-execution operations spec.md
// §4.5 assigns to the noise isolator. It holds no per-item state and is safe
// to reuse across items and dimensions, but its operations are meant to run
// single-threaded per test.
type Isolator struct {
	cfg Config
}

// New returns an Isolator configured by cfg. Zero-valued fields fall back
// to DefaultConfig's values.
func New(cfg Config) *Isolator {
	if cfg.WarmupCount <= 0 {
		cfg.WarmupCount = defaultWarmupCount
	}
	if cfg.Replications <= 0 {
		cfg.Replications = defaultReplications
	}
	if cfg.CVThreshold <= 0 {
		cfg.CVThreshold = defaultCVThreshold
	}
	return &Isolator{cfg: cfg}
}

// WarmUp sends referenceInput through target WarmupCount times, discarding
// every response, to prime caches/JITs/connection pools before measurement
// begins. If a Cache is configured and already holds a response for
// referenceInput, another Isolator in this process has already completed a
// full warm-up round against this reference input, so WarmUp sends a
// single confirmatory request instead of the full WarmupCount; otherwise
// it sends WarmupCount requests and stores the first response observed.
// If onProgress is non-nil, it is called once per request with the
// 1-based request number and the total request count for this call.
func (i *Isolator) WarmUp(ctx context.Context, target adapter.Adapter, referenceInput types.ItemInput, onProgress func(current, total int)) error {
	count := i.cfg.WarmupCount

	if i.cfg.Cache != nil {
		if _, hit, err := i.cfg.Cache.Get(ctx, referenceInput.Text); err == nil && hit {
			count = 1
		}
	}

	for n := 0; n < count; n++ {
		resp, err := target.Send(ctx, referenceInput)
		if err != nil {
			return err
		}
		if i.cfg.Cache != nil && n == 0 {
			_ = i.cfg.Cache.Set(ctx, referenceInput.Text, resp.Content)
		}
		if onProgress != nil {
			onProgress(n+1, count)
		}
	}
	return nil
}

// Execute runs b against item through target Replications times (at least
// once) and reduces the replications to a single representative TestResult
// plus the noise statistics observed across them, per spec.md §4.5.
func (i *Isolator) Execute(ctx context.Context, b backend.Backend, item types.Item, target adapter.Adapter) (types.TestResult, Stats, error) {
	n := i.cfg.Replications
	if n <= 1 {
		result, err := b.Execute(ctx, item, target)
		if err != nil {
			return types.TestResult{}, Stats{}, err
		}
		return result, Stats{Mean: result.Score, Replications: []types.TestResult{result}}, nil
	}

	results := make([]types.TestResult, 0, n)
	for k := 0; k < n; k++ {
		result, err := b.Execute(ctx, item, target)
		if err != nil {
			return types.TestResult{}, Stats{}, err
		}
		results = append(results, result)
	}

	mean, stdev := meanAndPopulationStdDev(results)
	cv := 0.0
	if mean > 0 {
		cv = stdev / mean
	}
	flag := cv > i.cfg.CVThreshold

	sorted := make([]types.TestResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].Score < sorted[b].Score })
	representative := sorted[n/2]

	stats := Stats{
		Mean:              mean,
		StdDev:            stdev,
		CV:                cv,
		Flag:              flag,
		Replications:      results,
		RepresentativeIdx: n / 2,
	}

	return representative, stats, nil
}

func meanAndPopulationStdDev(results []types.TestResult) (mean, stdev float64) {
	n := float64(len(results))
	sum := 0.0
	for _, r := range results {
		sum += r.Score
	}
	mean = sum / n

	variance := 0.0
	for _, r := range results {
		d := r.Score - mean
		variance += d * d
	}
	variance /= n

	return mean, math.Sqrt(variance)
}
