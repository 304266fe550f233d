package executor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	apt "github.com/One-Up-Dev/ai-process-tester-apt"
	"github.com/One-Up-Dev/ai-process-tester-apt/adapter"
	"github.com/One-Up-Dev/ai-process-tester-apt/backend"
	"github.com/One-Up-Dev/ai-process-tester-apt/catalog"
	"github.com/One-Up-Dev/ai-process-tester-apt/convergence"
	"github.com/One-Up-Dev/ai-process-tester-apt/events"
	"github.com/One-Up-Dev/ai-process-tester-apt/noise"
	"github.com/One-Up-Dev/ai-process-tester-apt/registry"
	"github.com/One-Up-Dev/ai-process-tester-apt/session"
	"github.com/One-Up-Dev/ai-process-tester-apt/types"
)

// Strategy selects how an Executor administers a plan.
type Strategy string

const (
	// StrategyAdaptive runs a CAT loop per dimension, stopping each
	// dimension as soon as its convergence criteria are met.
	StrategyAdaptive Strategy = "adaptive"

	// StrategyExhaustive runs every item in the plan exactly once, then
	// fits one session per dimension by replaying the recorded responses
	// with no convergence gating.
	StrategyExhaustive Strategy = "exhaustive"
)

// Config bundles everything an Executor needs to run a plan.
type Config struct {
	// Backends lists every execution backend available to this executor.
	// Combined with whatever Registry discovers, the result must be
	// non-empty.
	Backends []backend.Backend

	// Registry, if set, is used to discover additional backends (gRPC
	// judge plugins registered under Kind "backend"; see
	// backend.DiscoverPlugins) to supplement Backends. An instance that
	// fails to dial is skipped and logged rather than failing New; a
	// registry that cannot be queried at all is a configuration error
	// surfaced from New. Nil disables discovery and Backends is used
	// as-is.
	Registry registry.Registry

	// Adapter reaches the target under test. Must be non-nil.
	Adapter adapter.Adapter

	// Convergence configures when each dimension's CAT session stops in
	// adaptive mode.
	Convergence convergence.Config

	// Noise configures warm-up and replicated-execution behavior. The
	// zero value is replaced with noise.DefaultConfig().
	Noise noise.Config

	// Bus receives the lifecycle events described by spec.md §6. A nil
	// Bus is replaced with a fresh events.NewBus().
	Bus *events.Bus

	// Logger receives structured diagnostics. A nil Logger is replaced
	// with a stderr text logger at info level.
	Logger *slog.Logger

	// Tracer, if set, wraps each Run call in a span. Nil uses a no-op
	// tracer.
	Tracer trace.Tracer

	// Meter, if set, records run duration and item count histograms.
	// Nil disables metrics entirely.
	Meter metric.Meter
}

// Executor drives a single evaluation run against Config's backends and
// adapter, per spec.md §4.7.
type Executor struct {
	backends map[string]backend.Backend
	adapter  adapter.Adapter
	convCfg  convergence.Config
	isolator *noise.Isolator
	bus      *events.Bus
	logger   *slog.Logger
	selector *catalog.Selector
	tracer   trace.Tracer
	metrics  *executorMetrics
}

// New validates cfg, discovers any registry-advertised backends, and
// returns a ready-to-use Executor. An empty combined backend list or a
// nil adapter is a configuration error, surfaced immediately rather
// than discovered mid-run.
func New(cfg Config) (*Executor, error) {
	if len(cfg.Backends) == 0 && cfg.Registry == nil {
		return nil, apt.NewConfigurationError("executor.New", apt.ErrInvalidConfig).WithContext(map[string]any{"reason": "no backends configured"})
	}
	if cfg.Adapter == nil {
		return nil, apt.NewConfigurationError("executor.New", apt.ErrAdapterRequired)
	}

	bus := cfg.Bus
	if bus == nil {
		bus = events.NewBus()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	byID := make(map[string]backend.Backend, len(cfg.Backends))
	if cfg.Registry != nil {
		discovered, err := backend.DiscoverPlugins(context.Background(), cfg.Registry, func(info registry.ServiceInfo, err error) {
			logger.Warn("backend discovery: skipping unreachable instance", "instance", info.InstanceID, "endpoint", info.Endpoint, "error", err)
		})
		if err != nil {
			return nil, apt.NewConfigurationError("executor.New", err)
		}
		for _, b := range discovered {
			byID[b.ID()] = b
		}
	}
	for _, b := range cfg.Backends {
		byID[b.ID()] = b
	}
	if len(byID) == 0 {
		return nil, apt.NewConfigurationError("executor.New", apt.ErrInvalidConfig).WithContext(map[string]any{"reason": "no backends configured or discovered"})
	}

	noiseCfg := cfg.Noise
	if noiseCfg.WarmupCount <= 0 && noiseCfg.Replications <= 0 && noiseCfg.CVThreshold <= 0 {
		noiseCfg = noise.DefaultConfig()
		noiseCfg.Cache = cfg.Noise.Cache
	}

	metrics, err := initExecutorMetrics(cfg.Meter)
	if err != nil {
		return nil, fmt.Errorf("executor: %w", err)
	}

	return &Executor{
		backends: byID,
		adapter:  cfg.Adapter,
		convCfg:  cfg.Convergence,
		isolator: noise.New(noiseCfg),
		bus:      bus,
		logger:   logger,
		selector: catalog.NewSelector(),
		tracer:   cfg.Tracer,
		metrics:  metrics,
	}, nil
}

// Run executes plan under strategy and returns the combined results for
// every dimension touched by plan.
func (e *Executor) Run(ctx context.Context, plan []types.Item, strategy Strategy) (types.ExecutionResults, error) {
	start := time.Now()
	ctx, span := startRunSpan(ctx, e.tracer, strategy, len(plan))

	evaluationID := uuid.NewString()
	e.bus.Emit(events.Started, events.StartedPayload{PlanSize: len(plan)})

	available, err := e.healthyBackends(ctx)
	if err != nil {
		finishRunSpan(span, e.metrics, float64(time.Since(start).Milliseconds()), 0, err)
		return types.ExecutionResults{}, err
	}

	if len(plan) > 0 {
		e.warmUp(ctx, plan[0].Input)
	}

	var results types.ExecutionResults
	switch strategy {
	case StrategyExhaustive:
		results = e.runExhaustive(ctx, plan, available)
	default:
		results = e.runAdaptive(ctx, plan, available)
	}

	results.EvaluationID = evaluationID
	results.ExecutionMetadata.Strategy = string(strategy)
	results.ExecutionMetadata.BackendsUsed = distinctBackendIDs(results.TestResults)

	e.bus.Emit(events.Completed, events.CompletedPayload{EvaluationID: evaluationID})
	finishRunSpan(span, e.metrics, float64(time.Since(start).Milliseconds()), len(results.TestResults), nil)
	return results, nil
}

// healthyBackends runs Healthcheck against every configured backend and
// returns the subset that reported itself available. It is a fatal,
// run-aborting error for no backend to be available at all.
func (e *Executor) healthyBackends(ctx context.Context) (map[string]backend.Backend, error) {
	available := make(map[string]backend.Backend)
	for id, b := range e.backends {
		ok, _, errMessage := b.Healthcheck(ctx)
		if ok {
			available[id] = b
			continue
		}
		e.logger.Warn("backend unavailable", "backend", id, "reason", errMessage)
	}
	if len(available) == 0 {
		return nil, apt.NewBackendUnavailableError("executor.healthyBackends", apt.ErrNoBackendsAvailable)
	}
	return available, nil
}

// warmUp sends input through the isolator's warm-up round. A warm-up
// failure is non-fatal: it is logged and the run continues.
func (e *Executor) warmUp(ctx context.Context, input types.ItemInput) {
	err := e.isolator.WarmUp(ctx, e.adapter, input, func(current, total int) {
		e.bus.Emit(events.WarmupProgress, events.WarmupProgressPayload{Current: current, Total: total})
	})
	if err != nil {
		e.logger.Warn("warm-up failed, continuing", "error", err)
	}
}

// runAdaptive administers one CAT session per dimension, stopping each
// as soon as its convergence criteria fire or the selector runs dry.
func (e *Executor) runAdaptive(ctx context.Context, plan []types.Item, available map[string]backend.Backend) types.ExecutionResults {
	order, grouped := partitionByDimension(plan)

	var testResults []types.TestResult
	var dimensionResults []types.DimensionResult

	for _, dim := range order {
		sess := session.New(dim, grouped[dim], e.convCfg)

		for {
			if converged, reason := sess.CheckConvergence(); converged {
				snap := sess.Snapshot()
				e.bus.Emit(events.DimensionConverged, events.DimensionConvergedPayload{
					Dimension: string(dim),
					Theta:     snap.Theta,
					SE:        snap.SE,
					Reason:    reason,
				})
				break
			}

			snap := sess.Snapshot()
			candidate := e.selector.SelectNext(snap.Theta, sess.AvailableItems(), snap.Administered, dim)
			if candidate == nil {
				break
			}

			result := e.executeItem(ctx, *candidate, available)
			testResults = append(testResults, result)

			if err := sess.RecordResponse(candidate.ID, result.Passed); err != nil {
				e.logger.Error("record response failed", "item", candidate.ID, "error", err)
				break
			}

			after := sess.Snapshot()
			e.bus.Emit(events.TestCompleted, events.TestCompletedPayload{
				ItemID:    candidate.ID,
				Passed:    result.Passed,
				Theta:     after.Theta,
				SE:        after.SE,
				Dimension: string(dim),
			})
			e.bus.Emit(events.IRTUpdated, events.IRTUpdatedPayload{
				Dimension: string(dim),
				Theta:     after.Theta,
				SE:        after.SE,
				NTests:    after.ResponseCount,
			})
		}

		dimensionResults = append(dimensionResults, sess.Result())
	}

	return types.ExecutionResults{TestResults: testResults, IRTEstimates: dimensionResults}
}

// runExhaustive administers every item in plan exactly once, then fits
// one session per dimension by replaying the recorded responses with no
// convergence gating.
func (e *Executor) runExhaustive(ctx context.Context, plan []types.Item, available map[string]backend.Backend) types.ExecutionResults {
	order, grouped := partitionByDimension(plan)

	testResults := make([]types.TestResult, 0, len(plan))
	passedByItem := make(map[string]bool, len(plan))

	for _, item := range plan {
		result := e.executeItem(ctx, item, available)
		testResults = append(testResults, result)
		passedByItem[item.ID] = result.Passed
		e.bus.Emit(events.TestCompleted, events.TestCompletedPayload{
			ItemID:    item.ID,
			Passed:    result.Passed,
			Dimension: string(item.Dimension),
		})
	}

	var dimensionResults []types.DimensionResult
	for _, dim := range order {
		sess := session.New(dim, grouped[dim], e.convCfg)
		for _, item := range grouped[dim] {
			if err := sess.RecordResponse(item.ID, passedByItem[item.ID]); err != nil {
				e.logger.Error("replay record response failed", "item", item.ID, "error", err)
				continue
			}
			snap := sess.Snapshot()
			e.bus.Emit(events.IRTUpdated, events.IRTUpdatedPayload{
				Dimension: string(dim),
				Theta:     snap.Theta,
				SE:        snap.SE,
				NTests:    snap.ResponseCount,
			})
		}
		dimensionResults = append(dimensionResults, sess.Result())
	}

	return types.ExecutionResults{TestResults: testResults, IRTEstimates: dimensionResults}
}

// executeItem emits test.started, selects a backend, and runs item
// through the noise isolator. A backend-selection or execution failure
// is converted into a failed (passed=false, score=0) result tagged
// error=true in its metadata rather than aborting the dimension.
func (e *Executor) executeItem(ctx context.Context, item types.Item, available map[string]backend.Backend) types.TestResult {
	e.bus.Emit(events.TestStarted, events.TestStartedPayload{ItemID: item.ID, Dimension: string(item.Dimension)})

	b, err := e.selectBackend(item, available)
	if err != nil {
		return failedResult(item, err)
	}

	result, stats, err := e.isolator.Execute(ctx, b, item, e.adapter)
	if err != nil {
		return failedResult(item, err)
	}

	result = result.WithMetadata("cv", stats.CV).WithMetadata("noise_flag", stats.Flag)
	if len(stats.Replications) > 1 {
		result = result.WithMetadata("replications", len(stats.Replications))
	}
	return result
}

// selectBackend picks item's preferred backend if it is available and
// supports item's dimension; failing that, the built-in backend;
// failing that, any available backend that supports the dimension, in
// a deterministic (sorted-by-id) order. It returns an error only when
// no eligible backend exists.
func (e *Executor) selectBackend(item types.Item, available map[string]backend.Backend) (backend.Backend, error) {
	for _, id := range item.PreferredBackends {
		if b, ok := available[id]; ok && backendSupports(b, item.Dimension) {
			return b, nil
		}
	}
	if b, ok := available[backend.BuiltinID]; ok && backendSupports(b, item.Dimension) {
		return b, nil
	}

	ids := make([]string, 0, len(available))
	for id := range available {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if backendSupports(available[id], item.Dimension) {
			return available[id], nil
		}
	}

	return nil, apt.NewBackendUnavailableError("executor.selectBackend", fmt.Errorf("no backend available for item %q dimension %s", item.ID, item.Dimension))
}

func backendSupports(b backend.Backend, dim types.Dimension) bool {
	cats := b.SupportedCategories()
	if len(cats) == 0 {
		return true
	}
	for _, c := range cats {
		if c == dim {
			return true
		}
	}
	return false
}

func failedResult(item types.Item, cause error) types.TestResult {
	return types.TestResult{
		ItemID:    item.ID,
		Passed:    false,
		Score:     0,
		Timestamp: time.Now(),
	}.WithMetadata("error", true).WithMetadata("error_message", cause.Error())
}

// partitionByDimension groups plan by dimension, preserving the order in
// which each dimension first appears.
func partitionByDimension(plan []types.Item) ([]types.Dimension, map[types.Dimension][]types.Item) {
	order := make([]types.Dimension, 0)
	grouped := make(map[types.Dimension][]types.Item)
	for _, item := range plan {
		if _, ok := grouped[item.Dimension]; !ok {
			order = append(order, item.Dimension)
		}
		grouped[item.Dimension] = append(grouped[item.Dimension], item)
	}
	return order, grouped
}

func distinctBackendIDs(results []types.TestResult) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, r := range results {
		if r.BackendID == "" || seen[r.BackendID] {
			continue
		}
		seen[r.BackendID] = true
		ids = append(ids, r.BackendID)
	}
	sort.Strings(ids)
	return ids
}
