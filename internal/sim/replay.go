package sim

import (
	"context"
	"time"

	"github.com/aretw0/statesim/pkg/domain"
)

// Replay resets the machine to its initial state and re-applies a recorded
// event sequence, pausing for delay before each step. Steps go through the
// same Send path as live interaction, so every invariant of an ordinary
// transition holds: unknown events fail silently and failing actions roll
// back atomically, exactly as they did when the run was recorded. Failed
// steps are logged and skipped, not fatal.
//
// The context is the cancellation token: replay stops between steps when
// it is done and returns ctx.Err(). Replay must not run concurrently with
// manual Send or Undo on the same engine; callers serialize access.
func (e *Engine) Replay(ctx context.Context, steps []domain.ReplayStep, delay time.Duration) error {
	if e.def == nil {
		return domain.ErrNoDefinition
	}

	e.Reset()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	for i, step := range steps {
		if i > 0 {
			timer.Reset(delay)
		}
		select {
		case <-ctx.Done():
			e.logger.Info("replay cancelled", "machine", e.def.ID, "step", i)
			return ctx.Err()
		case <-timer.C:
		}

		err := e.Send(step.Event, step.Input)
		if err != nil {
			e.logger.Warn("replay step failed, continuing",
				"machine", e.def.ID,
				"step", i,
				"event", step.Event,
				"err", err,
			)
		}
		if e.hooks.OnReplayStep != nil {
			e.hooks.OnReplayStep(&domain.ReplayStepEvent{
				Timestamp: e.clock(),
				MachineID: e.def.ID,
				Index:     i,
				Event:     step.Event,
				Err:       err,
			})
		}
	}

	return nil
}
