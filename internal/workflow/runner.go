// Package workflow runs a single workflow: it checks the workflow's gate and
// dispatches each step to a freshly resolved action.
package workflow

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deploymenttheory/go-flowforge/internal/plugin"
	"github.com/deploymenttheory/go-flowforge/internal/rule"
	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
)

// Gate decides whether a workflow may run
type Gate interface {
	Evaluate(n rule.Node) bool
}

// Resolver turns an action type into a handler
type Resolver interface {
	Resolve(typeName string) (plugin.Action, error)
}

// Runner executes workflows. It is safe for concurrent use as long as its
// Gate and Resolver are.
type Runner struct {
	gate     Gate
	resolver Resolver
	log      *zap.SugaredLogger
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(gate Gate, resolver Resolver, log *zap.SugaredLogger) *Runner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Runner{gate: gate, resolver: resolver, log: log}
}

// Run executes wf. overrides[i], when non-empty, replaces the parameters of
// step i. Run never fails: a step that cannot be resolved or that errors is
// logged and the next step runs.
func (r *Runner) Run(wf *Workflow, overrides []string) {
	log := r.log.With("workflow", wf.Name(), "run_id", uuid.NewString())

	if !r.gate.Evaluate(wf.Rule()) {
		log.Infow("Rule not satisfied, skipping workflow")
		return
	}

	log.Infow("Starting workflow execution", "steps", wf.Len())
	failed := 0
	for i, step := range wf.steps {
		stepLog := log.With("step", i+1, "type", step.Type)
		params := wf.EffectiveParams(i, overrides)

		action, err := r.resolver.Resolve(step.Type)
		if err != nil {
			stepLog.Errorw("Failed to resolve action", "error", err.Error())
			failed++
			continue
		}

		stepLog.Debugw(fmt.Sprintf("Executing step %d/%d", i+1, wf.Len()), "params", params)
		if err := execute(action, params); err != nil {
			stepLog.Errorw("Action failed", "error", err.Error())
			failed++
			continue
		}
		stepLog.Infow(fmt.Sprintf("Completed step %d/%d", i+1, wf.Len()))
	}

	log.Infow("Workflow execution completed", "failed_steps", failed)
}

// execute runs one action, converting a panic into an error
func execute(action plugin.Action, params string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", errors.ErrActionPanicked, rec)
		}
	}()
	return action.Execute(params)
}
