package executor

import (
	"context"
	"testing"
	"time"

	"github.com/One-Up-Dev/ai-process-tester-apt/adapter"
	"github.com/One-Up-Dev/ai-process-tester-apt/backend"
	"github.com/One-Up-Dev/ai-process-tester-apt/convergence"
	"github.com/One-Up-Dev/ai-process-tester-apt/events"
	"github.com/One-Up-Dev/ai-process-tester-apt/registry"
	"github.com/One-Up-Dev/ai-process-tester-apt/types"
)

// fakeRegistry is an in-memory registry.Registry used to exercise
// Config.Registry discovery without a live etcd cluster.
type fakeRegistry struct {
	byKind  map[string][]registry.ServiceInfo
	failErr error
}

func (r *fakeRegistry) Register(ctx context.Context, info registry.ServiceInfo) error   { return nil }
func (r *fakeRegistry) Deregister(ctx context.Context, info registry.ServiceInfo) error { return nil }

func (r *fakeRegistry) Discover(ctx context.Context, kind, name string) ([]registry.ServiceInfo, error) {
	return nil, nil
}

func (r *fakeRegistry) DiscoverAll(ctx context.Context, kind string) ([]registry.ServiceInfo, error) {
	if r.failErr != nil {
		return nil, r.failErr
	}
	return r.byKind[kind], nil
}

func (r *fakeRegistry) Watch(ctx context.Context, kind, name string) (<-chan []registry.ServiceInfo, error) {
	ch := make(chan []registry.ServiceInfo)
	close(ch)
	return ch, nil
}

func (r *fakeRegistry) Close() error { return nil }

// fakeBackend answers every item with a scripted pass/fail outcome,
// falling back to true. It sends the item's input through target so
// adapter call counts remain observable, and reports its own health
// via the healthy field.
type fakeBackend struct {
	id         string
	categories []types.Dimension
	scripted   map[string]bool
	healthy    bool
}

func (b *fakeBackend) ID() string                              { return b.id }
func (b *fakeBackend) Name() string                             { return b.id }
func (b *fakeBackend) SupportedCategories() []types.Dimension   { return b.categories }
func (b *fakeBackend) Capabilities() types.BackendCapabilities  { return types.BackendCapabilities{} }
func (b *fakeBackend) Healthcheck(ctx context.Context) (bool, string, string) {
	if b.healthy {
		return true, "1.0", ""
	}
	return false, "", "offline"
}

func (b *fakeBackend) Execute(ctx context.Context, item types.Item, target adapter.Adapter) (types.TestResult, error) {
	if _, err := target.Send(ctx, item.Input); err != nil {
		return types.TestResult{}, err
	}
	passed := true
	if b.scripted != nil {
		if v, ok := b.scripted[item.ID]; ok {
			passed = v
		}
	}
	score := 0.0
	if passed {
		score = 1.0
	}
	return types.TestResult{ItemID: item.ID, BackendID: b.id, Passed: passed, Score: score}, nil
}

func testPool(n int, dim types.Dimension) []types.Item {
	items := make([]types.Item, n)
	for i := 0; i < n; i++ {
		items[i] = types.Item{
			ID:        string(rune('a' + i)),
			Dimension: dim,
			Alpha:     2.0,
			Beta:      -1.0 + float64(i),
			Gamma:     0,
			Input:     types.ItemInput{Text: "probe"},
		}
	}
	return items
}

func forcingConvergence() convergence.Config {
	return convergence.Config{SEThreshold: 10, MaxTests: 2, Timeout: time.Hour, StableWindow: 5, StableDelta: 0.1}
}

func indicesOf(evs []events.Event, t events.Type) []int {
	var out []int
	for i, e := range evs {
		if e.Type == t {
			out = append(out, i)
		}
	}
	return out
}

func TestExecutor_ConfigurationErrorsSurfaceImmediately(t *testing.T) {
	if _, err := New(Config{Adapter: adapter.NewTestAdapter()}); err == nil {
		t.Error("New() with no backends = nil error, want configuration error")
	}
	if _, err := New(Config{Backends: []backend.Backend{&fakeBackend{id: "b", healthy: true}}}); err == nil {
		t.Error("New() with nil adapter = nil error, want configuration error")
	}
}

func TestExecutor_RegistryDiscoveryErrorIsConfigurationError(t *testing.T) {
	reg := &fakeRegistry{failErr: context.DeadlineExceeded}
	if _, err := New(Config{Registry: reg, Adapter: adapter.NewTestAdapter()}); err == nil {
		t.Error("New() error = nil, want a configuration error when the registry cannot be queried")
	}
}

func TestExecutor_RegistryWithNoReachableInstancesAndNoStaticBackendsIsConfigurationError(t *testing.T) {
	reg := &fakeRegistry{byKind: map[string][]registry.ServiceInfo{
		"backend": {{Kind: "backend", Name: "judge", InstanceID: "j-1", Endpoint: "127.0.0.1:1"}},
	}}
	if _, err := New(Config{Registry: reg, Adapter: adapter.NewTestAdapter()}); err == nil {
		t.Error("New() error = nil, want a configuration error when discovery yields no usable backend and none is configured statically")
	}
}

func TestExecutor_RegistrySupplementsStaticBackends(t *testing.T) {
	reg := &fakeRegistry{byKind: map[string][]registry.ServiceInfo{
		"backend": {{Kind: "backend", Name: "judge", InstanceID: "j-1", Endpoint: "127.0.0.1:1"}},
	}}
	b := &fakeBackend{id: backend.BuiltinID, healthy: true}

	exec, err := New(Config{Backends: []backend.Backend{b}, Registry: reg, Adapter: adapter.NewTestAdapter()})
	if err != nil {
		t.Fatalf("New() error = %v, want the unreachable discovered instance skipped rather than failing New", err)
	}

	results, err := exec.Run(context.Background(), testPool(1, types.DimensionSecurity), StrategyExhaustive)
	if err != nil {
		t.Fatalf("Run() error = %v, want the statically configured backend still usable", err)
	}
	if len(results.TestResults) != 1 || results.TestResults[0].BackendID != backend.BuiltinID {
		t.Errorf("TestResults = %+v, want one result from the builtin backend", results.TestResults)
	}
}

func TestExecutor_NoBackendAvailableIsFatal(t *testing.T) {
	exec, err := New(Config{
		Backends: []backend.Backend{&fakeBackend{id: "b", healthy: false}},
		Adapter:  adapter.NewTestAdapter(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = exec.Run(context.Background(), testPool(2, types.DimensionSecurity), StrategyAdaptive)
	if err == nil {
		t.Fatal("Run() error = nil, want fatal error when no backend is available")
	}
}

func TestExecutor_AdaptiveConvergesAndOrdersEvents(t *testing.T) {
	bus := events.NewBus()
	var captured []events.Event
	bus.OnAny(func(e events.Event) { captured = append(captured, e) })

	b := &fakeBackend{id: backend.BuiltinID, healthy: true}
	exec, err := New(Config{
		Backends:    []backend.Backend{b},
		Adapter:     adapter.NewTestAdapter(),
		Convergence: forcingConvergence(),
		Bus:         bus,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	results, err := exec.Run(context.Background(), testPool(3, types.DimensionSecurity), StrategyAdaptive)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(results.TestResults) != 2 {
		t.Fatalf("len(TestResults) = %d, want 2 (convergence should stop after MaxTests)", len(results.TestResults))
	}
	if len(results.IRTEstimates) != 1 {
		t.Fatalf("len(IRTEstimates) = %d, want 1", len(results.IRTEstimates))
	}
	if results.IRTEstimates[0].ConvergedAtIndex == nil {
		t.Error("dimension result has no ConvergedAtIndex, want convergence recorded")
	}
	if results.ExecutionMetadata.Strategy != string(StrategyAdaptive) {
		t.Errorf("Strategy = %q, want %q", results.ExecutionMetadata.Strategy, StrategyAdaptive)
	}

	startedIdx := indicesOf(captured, events.Started)
	testStartedIdx := indicesOf(captured, events.TestStarted)
	testCompletedIdx := indicesOf(captured, events.TestCompleted)
	irtIdx := indicesOf(captured, events.IRTUpdated)
	convergedIdx := indicesOf(captured, events.DimensionConverged)
	completedIdx := indicesOf(captured, events.Completed)

	if len(startedIdx) != 1 || startedIdx[0] != 0 {
		t.Errorf("executor.started indices = %v, want [0]", startedIdx)
	}
	if len(testStartedIdx) != 2 || len(testCompletedIdx) != 2 || len(irtIdx) != 2 {
		t.Fatalf("test.started/test.completed/irt.updated counts = %d/%d/%d, want 2/2/2",
			len(testStartedIdx), len(testCompletedIdx), len(irtIdx))
	}
	for i := range testStartedIdx {
		if testStartedIdx[i] >= testCompletedIdx[i] {
			t.Errorf("test.started[%d] at %d did not precede test.completed at %d", i, testStartedIdx[i], testCompletedIdx[i])
		}
		if testCompletedIdx[i] >= irtIdx[i] {
			t.Errorf("test.completed[%d] at %d did not precede irt.updated at %d", i, testCompletedIdx[i], irtIdx[i])
		}
	}
	if len(convergedIdx) != 1 {
		t.Fatalf("len(dimension.converged) = %d, want 1", len(convergedIdx))
	}
	if convergedIdx[0] <= irtIdx[len(irtIdx)-1] {
		t.Error("dimension.converged did not fire after the last irt.updated")
	}
	if len(completedIdx) != 1 || completedIdx[0] != len(captured)-1 {
		t.Errorf("executor.completed index = %v, want last event", completedIdx)
	}
}

func TestExecutor_BackendFailureIsToleratedAndRunContinues(t *testing.T) {
	a := adapter.NewTestAdapter()
	a.SetSendError(context.DeadlineExceeded)

	b := &fakeBackend{id: backend.BuiltinID, healthy: true}
	exec, err := New(Config{
		Backends:    []backend.Backend{b},
		Adapter:     a,
		Convergence: forcingConvergence(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	results, err := exec.Run(context.Background(), testPool(2, types.DimensionSecurity), StrategyAdaptive)
	if err != nil {
		t.Fatalf("Run() error = %v, want run to tolerate per-item backend failures", err)
	}
	for _, r := range results.TestResults {
		if r.Passed {
			t.Errorf("result for %s passed=true, want false on adapter error", r.ItemID)
		}
		if errFlag, _ := r.Metadata["error"].(bool); !errFlag {
			t.Errorf("result for %s missing error=true metadata", r.ItemID)
		}
	}
}

func TestExecutor_SelectBackendPrefersPreferredThenBuiltinThenAny(t *testing.T) {
	preferred := &fakeBackend{id: "remote", healthy: true}
	builtin := &fakeBackend{id: backend.BuiltinID, healthy: true}
	other := &fakeBackend{id: "other", healthy: true}

	exec, err := New(Config{
		Backends: []backend.Backend{preferred, builtin, other},
		Adapter:  adapter.NewTestAdapter(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	available := map[string]backend.Backend{"remote": preferred, backend.BuiltinID: builtin, "other": other}

	item := types.Item{ID: "x", Dimension: types.DimensionSecurity, PreferredBackends: []string{"remote"}}
	got, err := exec.selectBackend(item, available)
	if err != nil || got.ID() != "remote" {
		t.Errorf("selectBackend() = %v, %v, want remote backend", got, err)
	}

	item.PreferredBackends = []string{"missing"}
	got, err = exec.selectBackend(item, available)
	if err != nil || got.ID() != backend.BuiltinID {
		t.Errorf("selectBackend() = %v, %v, want built-in fallback", got, err)
	}

	delete(available, backend.BuiltinID)
	got, err = exec.selectBackend(item, available)
	if err != nil || got.ID() != "other" {
		t.Errorf("selectBackend() = %v, %v, want the only remaining backend", got, err)
	}

	delete(available, "other")
	if _, err := exec.selectBackend(item, available); err == nil {
		t.Error("selectBackend() error = nil, want error when no backend is eligible")
	}
}

func TestExecutor_SelectBackendRespectsSupportedCategories(t *testing.T) {
	securityOnly := &fakeBackend{id: backend.BuiltinID, healthy: true, categories: []types.Dimension{types.DimensionSecurity}}
	exec, err := New(Config{Backends: []backend.Backend{securityOnly}, Adapter: adapter.NewTestAdapter()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	available := map[string]backend.Backend{backend.BuiltinID: securityOnly}
	fairnessItem := types.Item{ID: "x", Dimension: types.DimensionFairness}
	if _, err := exec.selectBackend(fairnessItem, available); err == nil {
		t.Error("selectBackend() error = nil, want error for an unsupported dimension")
	}
}

func TestExecutor_ExhaustiveRunsEveryItemOnceWithoutConvergenceGating(t *testing.T) {
	b := &fakeBackend{id: backend.BuiltinID, healthy: true}
	exec, err := New(Config{
		Backends:    []backend.Backend{b},
		Adapter:     adapter.NewTestAdapter(),
		Convergence: forcingConvergence(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	results, err := exec.Run(context.Background(), testPool(3, types.DimensionSecurity), StrategyExhaustive)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(results.TestResults) != 3 {
		t.Errorf("len(TestResults) = %d, want 3 (every item runs once regardless of MaxTests)", len(results.TestResults))
	}
	if len(results.IRTEstimates) != 1 || results.IRTEstimates[0].NTests != 3 {
		t.Errorf("IRTEstimates = %+v, want one dimension with NTests=3", results.IRTEstimates)
	}
	if results.ExecutionMetadata.Strategy != string(StrategyExhaustive) {
		t.Errorf("Strategy = %q, want %q", results.ExecutionMetadata.Strategy, StrategyExhaustive)
	}
}

func TestExecutor_WarmUpEmitsProgressBeforeFirstTest(t *testing.T) {
	bus := events.NewBus()
	var captured []events.Event
	bus.OnAny(func(e events.Event) { captured = append(captured, e) })

	b := &fakeBackend{id: backend.BuiltinID, healthy: true}
	exec, err := New(Config{
		Backends:    []backend.Backend{b},
		Adapter:     adapter.NewTestAdapter(),
		Convergence: forcingConvergence(),
		Bus:         bus,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := exec.Run(context.Background(), testPool(1, types.DimensionSecurity), StrategyAdaptive); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	warmupIdx := indicesOf(captured, events.WarmupProgress)
	testStartedIdx := indicesOf(captured, events.TestStarted)
	if len(warmupIdx) == 0 {
		t.Fatal("no executor.warmup.progress events observed")
	}
	if len(testStartedIdx) == 0 || warmupIdx[len(warmupIdx)-1] >= testStartedIdx[0] {
		t.Error("warm-up progress events did not all precede the first test.started event")
	}
}
