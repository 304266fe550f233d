package catalogio

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/One-Up-Dev/ai-process-tester-apt/types"
)

// fixtureFile is the on-disk shape of a test-item fixture file.
type fixtureFile struct {
	Items []itemFixture `yaml:"items"`
}

type itemFixture struct {
	ID                string             `yaml:"id"`
	Dimension         string             `yaml:"dimension"`
	Category          string             `yaml:"category,omitempty"`
	Alpha             float64            `yaml:"alpha"`
	Beta              float64            `yaml:"beta"`
	Gamma             float64            `yaml:"gamma"`
	IsPreliminary     bool               `yaml:"is_preliminary,omitempty"`
	Input             itemInputFixture   `yaml:"input"`
	ExpectedBehavior  string             `yaml:"expected_behavior,omitempty"`
	Evaluators        []evaluatorFixture `yaml:"evaluators"`
	PreferredBackends []string           `yaml:"preferred_backends,omitempty"`
}

type itemInputFixture struct {
	Text         string         `yaml:"text"`
	SystemPrompt string         `yaml:"system_prompt,omitempty"`
	PriorTurns   []turnFixture  `yaml:"prior_turns,omitempty"`
}

type turnFixture struct {
	Role    string `yaml:"role"`
	Content string `yaml:"content"`
}

type evaluatorFixture struct {
	Kind      string  `yaml:"kind"`
	Value     string  `yaml:"value,omitempty"`
	Pattern   string  `yaml:"pattern,omitempty"`
	Threshold float64 `yaml:"threshold,omitempty"`
	Prompt    string  `yaml:"prompt,omitempty"`
}

// LoadFile reads a YAML fixture file and converts it into validated
// types.Item values. Every item is validated before being returned;
// the first invalid item aborts the load with a wrapped error
// identifying its index and ID.
func LoadFile(path string) ([]types.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalogio: reading fixture file: %w", err)
	}

	var fixture fixtureFile
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("catalogio: parsing fixture file: %w", err)
	}

	items := make([]types.Item, 0, len(fixture.Items))
	for idx, f := range fixture.Items {
		item, err := f.toItem()
		if err != nil {
			return nil, fmt.Errorf("catalogio: item %d (%q): %w", idx, f.ID, err)
		}
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("catalogio: item %d (%q): %w", idx, f.ID, err)
		}
		items = append(items, item)
	}

	return items, nil
}

func (f itemFixture) toItem() (types.Item, error) {
	evaluators := make([]types.Evaluator, 0, len(f.Evaluators))
	for _, ef := range f.Evaluators {
		evaluators = append(evaluators, ef.toEvaluator())
	}

	turns := make([]types.Turn, 0, len(f.Input.PriorTurns))
	for _, t := range f.Input.PriorTurns {
		turns = append(turns, types.Turn{Role: t.Role, Content: t.Content})
	}

	return types.Item{
		ID:            f.ID,
		Dimension:     types.Dimension(f.Dimension),
		Category:      types.Dimension(f.Category),
		Alpha:         f.Alpha,
		Beta:          f.Beta,
		Gamma:         f.Gamma,
		IsPreliminary: f.IsPreliminary,
		Input: types.ItemInput{
			Text:         f.Input.Text,
			SystemPrompt: f.Input.SystemPrompt,
			PriorTurns:   turns,
		},
		ExpectedBehavior:  f.ExpectedBehavior,
		Evaluators:        evaluators,
		PreferredBackends: f.PreferredBackends,
	}, nil
}

func (ef evaluatorFixture) toEvaluator() types.Evaluator {
	return types.Evaluator{
		Kind:      types.EvaluatorKind(ef.Kind),
		Value:     ef.Value,
		Pattern:   ef.Pattern,
		Threshold: ef.Threshold,
		Prompt:    ef.Prompt,
	}
}
