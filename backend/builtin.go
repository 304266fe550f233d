package backend

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/One-Up-Dev/ai-process-tester-apt/adapter"
	"github.com/One-Up-Dev/ai-process-tester-apt/types"
)

// Builtin is the default, always-available execution backend. It
// applies each of an item's evaluators to the target's reply and
// aggregates the verdicts.
type Builtin struct{}

// NewBuiltin returns a ready-to-use Builtin backend.
func NewBuiltin() *Builtin {
	return &Builtin{}
}

func (b *Builtin) ID() string   { return BuiltinID }
func (b *Builtin) Name() string { return "built-in evaluator backend" }

func (b *Builtin) SupportedCategories() []types.Dimension {
	return nil
}

func (b *Builtin) Capabilities() types.BackendCapabilities {
	return types.BackendCapabilities{
		SupportsReplications: true,
		SupportsMultiTurn:    true,
	}
}

func (b *Builtin) Healthcheck(ctx context.Context) (available bool, version string, errMessage string) {
	return true, "1.0.0", ""
}

// Execute sends item.Input through adapter and evaluates the reply
// against every declared evaluator, in order. With no evaluators
// declared, the result is passed=false, score=0. passed is the
// conjunction of every evaluator's verdict; score is the fraction that
// passed.
func (b *Builtin) Execute(ctx context.Context, item types.Item, target adapter.Adapter) (types.TestResult, error) {
	start := time.Now()

	resp, err := target.Send(ctx, item.Input)
	if err != nil {
		return types.TestResult{}, err
	}

	duration := time.Since(start).Milliseconds()

	if len(item.Evaluators) == 0 {
		return types.TestResult{
			ItemID:     item.ID,
			BackendID:  b.ID(),
			Passed:     false,
			Score:      0,
			RawOutput:  resp.Content,
			DurationMs: duration,
			Timestamp:  time.Now(),
		}, nil
	}

	passedCount := 0
	metrics := make(map[string]float64, len(item.Evaluators))
	for idx, ev := range item.Evaluators {
		ok := evaluate(ev, resp.Content)
		if ok {
			passedCount++
			metrics[evaluatorMetricKey(idx, ev)] = 1
		} else {
			metrics[evaluatorMetricKey(idx, ev)] = 0
		}
	}

	allPassed := passedCount == len(item.Evaluators)
	score := float64(passedCount) / float64(len(item.Evaluators))

	return types.TestResult{
		ItemID:     item.ID,
		BackendID:  b.ID(),
		Passed:     allPassed,
		Score:      score,
		Metrics:    metrics,
		RawOutput:  resp.Content,
		DurationMs: duration,
		Timestamp:  time.Now(),
	}, nil
}

func evaluatorMetricKey(idx int, ev types.Evaluator) string {
	return string(ev.Kind) + "_" + strconv.Itoa(idx)
}

// evaluate applies a single evaluator to text and reports its verdict.
func evaluate(ev types.Evaluator, text string) bool {
	switch ev.Kind {
	case types.EvaluatorContains:
		return containsFold(text, ev.Value)
	case types.EvaluatorNotContains:
		return !containsFold(text, ev.Value)
	case types.EvaluatorRegex:
		return matchRegex(stripCodeFences(text), ev.Pattern)
	case types.EvaluatorNotRegex:
		return !matchRegex(stripCodeFences(text), ev.Pattern)
	case types.EvaluatorScoreThreshold:
		return strings.TrimSpace(text) != ""
	case types.EvaluatorLLMJudge:
		return len(strings.TrimSpace(text)) > types.LLMJudgeMinLength()
	default:
		return false
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func matchRegex(text, pattern string) bool {
	re, err := regexp.Compile("(?is)" + pattern)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// stripCodeFences removes a single layer of surrounding triple-backtick
// code fence markers (with an optional language tag on the opening
// fence), if present, trimming surrounding whitespace first.
func stripCodeFences(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	if idx := strings.IndexByte(t, '\n'); idx != -1 {
		t = t[idx+1:]
	} else {
		t = strings.TrimPrefix(t, "```")
	}
	t = strings.TrimSpace(t)
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}
