package engine

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/deploymenttheory/go-flowforge/internal/workflow"
)

// RunAll runs every loaded workflow concurrently, at most PoolSize at a
// time, and returns once all of them have finished. Steps of one workflow
// stay on one goroutine; workflows have no order relative to each other.
func (e *Engine) RunAll() {
	if len(e.workflows) == 0 {
		e.log.Infow("No workflows to run")
		return
	}

	var g errgroup.Group
	g.SetLimit(e.poolSize)
	for _, wf := range e.workflows {
		wf := wf
		g.Go(func() error {
			e.runIsolated(wf)
			return nil
		})
	}
	_ = g.Wait()
	e.log.Infow("All workflows finished", "count", len(e.workflows))
}

// runIsolated keeps a panic in one workflow from reaching the pool
func (e *Engine) runIsolated(wf *workflow.Workflow) {
	defer func() {
		if rec := recover(); rec != nil {
			e.log.Errorw("Workflow task panicked", "workflow", wf.Name(), "error", fmt.Sprint(rec))
		}
	}()
	e.runner.Run(wf, nil)
}
