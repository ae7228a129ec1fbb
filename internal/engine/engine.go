// Package engine holds the loaded workflows and runs them, one at a time by
// name or all together on a bounded worker pool.
package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/deploymenttheory/go-flowforge/internal/rule"
	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
	"github.com/deploymenttheory/go-flowforge/internal/utils/jsonutil"
	"github.com/deploymenttheory/go-flowforge/internal/workflow"
)

// DefaultPoolSize bounds how many workflows RunAll executes at once
const DefaultPoolSize = 4

// Runner executes a single workflow
type Runner interface {
	Run(wf *workflow.Workflow, overrides []string)
}

// Engine is the ordered set of loaded workflows. Load it before running
// anything; after that it is only read.
type Engine struct {
	runner    Runner
	log       *zap.SugaredLogger
	poolSize  int
	workflows []*workflow.Workflow
	index     map[string]*workflow.Workflow
}

// Option configures an Engine
type Option func(*Engine)

// WithPoolSize sets the RunAll concurrency. Values below 1 keep the default.
func WithPoolSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.poolSize = n
		}
	}
}

// New creates an empty engine. A nil logger discards output.
func New(runner Runner, log *zap.SugaredLogger, opts ...Option) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	e := &Engine{
		runner:   runner,
		log:      log,
		poolSize: DefaultPoolSize,
		index:    map[string]*workflow.Workflow{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PoolSize returns the RunAll concurrency
func (e *Engine) PoolSize() int { return e.poolSize }

// Load registers the workflows in a decoded document and returns how many
// were added. Malformed entries and actions are skipped with a warning;
// Load itself never fails.
func (e *Engine) Load(doc map[string]interface{}) int {
	raw, ok := doc["workflows"].([]interface{})
	if !ok {
		e.log.Warnw("Document has no workflows array", "error", errors.ErrNoWorkflowsDocument.Error())
		return 0
	}

	added := 0
	for i, entry := range raw {
		wf, err := e.buildWorkflow(entry)
		if err != nil {
			e.log.Warnw("Skipping workflow entry", "index", i, "error", err.Error())
			continue
		}
		if _, exists := e.index[wf.Name()]; exists {
			e.log.Warnw("Skipping workflow entry", "index", i,
				"error", fmt.Errorf("%w: %s", errors.ErrDuplicateWorkflow, wf.Name()).Error())
			continue
		}
		e.workflows = append(e.workflows, wf)
		e.index[wf.Name()] = wf
		added++
	}

	e.log.Infow("Loaded workflows", "count", added, "entries", len(raw))
	return added
}

func (e *Engine) buildWorkflow(entry interface{}) (*workflow.Workflow, error) {
	m, ok := entry.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: entry is %T, not an object", errors.ErrInvalidWorkflow, entry)
	}
	name, ok := m["name"].(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("%w: missing or non-string name", errors.ErrInvalidWorkflow)
	}
	rawActions, ok := m["actions"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s: actions must be a list", errors.ErrInvalidWorkflow, name)
	}

	steps := make([]workflow.ActionStep, 0, len(rawActions))
	for j, rawAction := range rawActions {
		step, err := buildStep(rawAction)
		if err != nil {
			e.log.Warnw("Skipping action", "workflow", name, "action", j+1, "error", err.Error())
			continue
		}
		steps = append(steps, step)
	}

	gate, problems := rule.Parse(m["rule"])
	for _, problem := range problems {
		e.log.Warnw("Rule predicate cannot be parsed and will never hold", "workflow", name, "predicate", problem)
	}
	return workflow.New(name, steps, gate), nil
}

func buildStep(raw interface{}) (workflow.ActionStep, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return workflow.ActionStep{}, fmt.Errorf("%w: action is %T, not an object", errors.ErrInvalidAction, raw)
	}
	typeName, ok := m["type"].(string)
	if !ok || typeName == "" {
		return workflow.ActionStep{}, fmt.Errorf("%w: missing or non-string type", errors.ErrInvalidAction)
	}
	params, err := jsonutil.Canonical(m["params"])
	if err != nil {
		return workflow.ActionStep{}, fmt.Errorf("%w: %s params: %v", errors.ErrInvalidAction, typeName, err)
	}
	return workflow.ActionStep{Type: typeName, Params: params}, nil
}

// Names returns the workflow names in load order
func (e *Engine) Names() []string {
	names := make([]string, 0, len(e.workflows))
	for _, wf := range e.workflows {
		names = append(names, wf.Name())
	}
	return names
}

// Lookup returns the workflow called name
func (e *Engine) Lookup(name string) (*workflow.Workflow, bool) {
	wf, ok := e.index[name]
	return wf, ok
}

// ActionSummaries describes each step of a workflow as "type: params".
// An unknown name yields nil.
func (e *Engine) ActionSummaries(name string) []string {
	wf, ok := e.index[name]
	if !ok {
		return nil
	}
	steps := wf.Steps()
	sums := make([]string, 0, len(steps))
	for _, step := range steps {
		sums = append(sums, step.Type+": "+step.Params)
	}
	return sums
}

// RunByName runs one workflow synchronously
func (e *Engine) RunByName(name string) error {
	return e.RunByNameWithOverrides(name, nil)
}

// RunByNameWithOverrides runs one workflow synchronously with per-step
// parameter overrides. An unknown name runs nothing and returns
// ErrWorkflowNotFound.
func (e *Engine) RunByNameWithOverrides(name string, overrides []string) error {
	wf, ok := e.index[name]
	if !ok {
		e.log.Warnw("Workflow not found", "workflow", name)
		return fmt.Errorf("%w: %s", errors.ErrWorkflowNotFound, name)
	}
	e.runner.Run(wf, overrides)
	return nil
}
