package pipeline

import (
	"context"
	"fmt"
)

// step is one fallible stage of the pipeline.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// runPlan executes steps in order, short-circuiting on the first failure.
// The context is checked before every step so an interrupt aborts the
// remaining steps; already-published artifacts are never cleaned up.
func (e *Engine) runPlan(ctx context.Context, plan []step) error {
	for _, s := range plan {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("release interrupted before %s: %w", s.name, err)
		}

		e.logger.Debug("step starting", "step", s.name)
		if err := s.run(ctx); err != nil {
			e.logger.Error("step failed", "step", s.name, "err", err)
			return err
		}
		e.logger.Debug("step finished", "step", s.name)
	}
	return nil
}
