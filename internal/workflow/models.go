package workflow

import (
	"github.com/deploymenttheory/go-flowforge/internal/rule"
)

// ActionStep is one unit of work: an action type and its parameter text
type ActionStep struct {
	Type   string
	Params string
}

// Workflow is a named, ordered list of steps gated by an optional rule. It
// is immutable once built.
type Workflow struct {
	name  string
	steps []ActionStep
	rule  rule.Node
}

// New builds a workflow. A nil gate always holds.
func New(name string, steps []ActionStep, gate rule.Node) *Workflow {
	return &Workflow{
		name:  name,
		steps: append([]ActionStep(nil), steps...),
		rule:  gate,
	}
}

// Name returns the workflow's name
func (w *Workflow) Name() string { return w.name }

// Rule returns the parsed gate, nil when the workflow always runs
func (w *Workflow) Rule() rule.Node { return w.rule }

// Steps returns a copy of the declared steps
func (w *Workflow) Steps() []ActionStep {
	return append([]ActionStep(nil), w.steps...)
}

// Len returns the number of steps
func (w *Workflow) Len() int { return len(w.steps) }

// EffectiveParams returns the parameters step i runs with: a non-empty
// override at the same index wins over the declared value.
func (w *Workflow) EffectiveParams(i int, overrides []string) string {
	if i < len(overrides) && overrides[i] != "" {
		return overrides[i]
	}
	return w.steps[i].Params
}
