package catalog

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/One-Up-Dev/ai-process-tester-apt/types"
)

// Filter narrows an item pool with a compiled CEL expression, evaluated
// once per item against its dimension, category, IRT parameters, and
// preliminary flag. It is optional: callers that don't need expression-
// based filtering never construct one.
type Filter struct {
	program cel.Program
}

// NewFilter compiles expr once. expr must evaluate to a bool and may
// reference the variables dimension, category, alpha, beta, gamma, and
// is_preliminary (all strings/doubles/bool as named), e.g.
//
//	dimension == "security" && alpha >= 1.0 && !is_preliminary
func NewFilter(expr string) (*Filter, error) {
	env, err := cel.NewEnv(
		cel.Variable("dimension", cel.StringType),
		cel.Variable("category", cel.StringType),
		cel.Variable("alpha", cel.DoubleType),
		cel.Variable("beta", cel.DoubleType),
		cel.Variable("gamma", cel.DoubleType),
		cel.Variable("is_preliminary", cel.BoolType),
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: building CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("catalog: compiling filter expression: %w", issues.Err())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("catalog: building CEL program: %w", err)
	}

	return &Filter{program: program}, nil
}

// Apply returns the subset of items for which the compiled expression
// evaluates to true. A non-bool result or an evaluation error excludes
// the item rather than aborting the whole pass.
func (f *Filter) Apply(items []types.Item) []types.Item {
	var out []types.Item
	for _, item := range items {
		vars := map[string]any{
			"dimension":      string(item.Dimension),
			"category":       string(item.Category),
			"alpha":          item.Alpha,
			"beta":           item.Beta,
			"gamma":          item.Gamma,
			"is_preliminary": item.IsPreliminary,
		}

		result, _, err := f.program.Eval(vars)
		if err != nil {
			continue
		}
		keep, ok := result.Value().(bool)
		if ok && keep {
			out = append(out, item)
		}
	}
	return out
}
