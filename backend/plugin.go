package backend

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/One-Up-Dev/ai-process-tester-apt/adapter"
	"github.com/One-Up-Dev/ai-process-tester-apt/types"
)

// judgeServiceMethod is the fully qualified gRPC method a Plugin backend
// invokes to ask an external judge whether a reply satisfies an
// llm_judge evaluator's prompt. The service is intentionally tiny (one
// unary RPC, Struct in, Struct out) so a judge plugin can be implemented
// in any language without depending on this module's Go types.
const judgeServiceMethod = "/apt.plugin.JudgeService/Judge"

// PluginConfig configures a gRPC-backed judge plugin.
type PluginConfig struct {
	// ID and DisplayName identify this backend to the executor.
	ID          string
	DisplayName string

	// Target is the gRPC dial target, e.g. "localhost:50061".
	Target string

	// DialTimeout bounds how long Dial may take.
	DialTimeout time.Duration

	// CallTimeout bounds a single Judge RPC.
	CallTimeout time.Duration
}

// Plugin is a Backend that defers llm_judge evaluation to an external
// gRPC service, realizing the extension point spec.md §9 reserves for a
// backend-driven judge (the built-in backend instead applies a length
// heuristic for llm_judge). Every other evaluator kind still runs
// locally; Plugin only overrides llm_judge handling.
type Plugin struct {
	cfg  PluginConfig
	conn *grpc.ClientConn
}

// NewPlugin dials cfg.Target and returns a ready-to-use Plugin backend.
func NewPlugin(cfg PluginConfig) (*Plugin, error) {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	conn, err := grpc.DialContext(ctx, cfg.Target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		return nil, fmt.Errorf("backend: dialing judge plugin %q: %w", cfg.Target, err)
	}

	return &Plugin{cfg: cfg, conn: conn}, nil
}

// Close releases the underlying gRPC connection.
func (p *Plugin) Close() error {
	return p.conn.Close()
}

func (p *Plugin) ID() string   { return p.cfg.ID }
func (p *Plugin) Name() string { return p.cfg.DisplayName }

func (p *Plugin) SupportedCategories() []types.Dimension {
	return nil
}

func (p *Plugin) Capabilities() types.BackendCapabilities {
	return types.BackendCapabilities{}
}

func (p *Plugin) Healthcheck(ctx context.Context) (available bool, version string, errMessage string) {
	resp, err := grpc_health_v1.NewHealthClient(p.conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		return false, "", err.Error()
	}
	return resp.Status == grpc_health_v1.HealthCheckResponse_SERVING, "", ""
}

// Execute evaluates item against target's reply. Every evaluator kind
// other than llm_judge runs through the same local dispatch as the
// built-in backend; llm_judge evaluators are delegated to the remote
// judge service, whose boolean "passed" field decides that evaluator's
// pass/fail. Score is the fraction of evaluators that passed.
func (p *Plugin) Execute(ctx context.Context, item types.Item, target adapter.Adapter) (types.TestResult, error) {
	start := time.Now()

	resp, err := target.Send(ctx, item.Input)
	if err != nil {
		return types.TestResult{}, err
	}

	if len(item.Evaluators) == 0 {
		return types.TestResult{
			ItemID: item.ID, BackendID: p.ID(), Passed: false, Score: 0,
			RawOutput: resp.Content, DurationMs: time.Since(start).Milliseconds(), Timestamp: time.Now(),
		}, nil
	}

	passedCount := 0
	for _, ev := range item.Evaluators {
		var ok bool
		if ev.Kind == types.EvaluatorLLMJudge {
			ok, err = p.judge(ctx, ev.Prompt, resp.Content)
			if err != nil {
				return types.TestResult{}, err
			}
		} else {
			ok = evaluate(ev, resp.Content)
		}
		if ok {
			passedCount++
		}
	}

	return types.TestResult{
		ItemID:     item.ID,
		BackendID:  p.ID(),
		Passed:     passedCount == len(item.Evaluators),
		Score:      float64(passedCount) / float64(len(item.Evaluators)),
		RawOutput:  resp.Content,
		DurationMs: time.Since(start).Milliseconds(),
		Timestamp:  time.Now(),
	}, nil
}

// judge invokes the remote Judge RPC and reports whether it returned a
// passing verdict.
func (p *Plugin) judge(ctx context.Context, prompt, reply string) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
	defer cancel()

	req, err := structpb.NewStruct(map[string]any{
		"prompt": prompt,
		"reply":  reply,
	})
	if err != nil {
		return false, fmt.Errorf("backend: building judge request: %w", err)
	}

	var resp structpb.Struct
	if err := p.conn.Invoke(callCtx, judgeServiceMethod, req, &resp); err != nil {
		return false, fmt.Errorf("backend: judge RPC failed: %w", err)
	}

	passed, ok := resp.Fields["passed"]
	return ok && passed.GetBoolValue(), nil
}
