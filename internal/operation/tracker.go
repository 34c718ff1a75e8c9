package operation

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Tracker is the handle a running operation uses to report progress and to
// honor pause/cancel. All methods are safe for concurrent use.
type Tracker struct {
	c *Coordinator
}

// Checkpoint blocks while the operation is paused and returns the context
// error once the run is cancelled. Loops call it between units of work.
func (t *Tracker) Checkpoint(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		t.c.mu.Lock()
		if t.c.current == nil {
			t.c.mu.Unlock()
			return nil
		}
		resume := t.c.current.resume
		t.c.mu.Unlock()

		select {
		case <-resume:
			return ctx.Err()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (t *Tracker) Log(format string, args ...any) {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	t.c.appendLog(fmt.Sprintf(format, args...))
}

// Step advances the multi-step progress display.
func (t *Tracker) Step(n int, name string) {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.c.current == nil {
		return
	}
	t.c.current.snapshot.CurrentStep = n
	t.c.current.snapshot.StepName = name
}

func (t *Tracker) UpdateScraping(fn func(*ScrapingStats)) {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.c.current == nil {
		return
	}
	fn(&t.c.current.snapshot.Scraping)
}

func (t *Tracker) UpdateProcessing(fn func(*ProcessingStats)) {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.c.current == nil {
		return
	}
	fn(&t.c.current.snapshot.Processing)
}

func (t *Tracker) UpdateGeneration(fn func(*GenerationStats)) {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.c.current == nil {
		return
	}
	fn(&t.c.current.snapshot.Generation)
}

// Finish releases the coordinator and records the terminal state. A context
// cancellation error marks the run cancelled rather than failed.
func (t *Tracker) Finish(err error) {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()

	if t.c.current == nil {
		return
	}

	now := time.Now()
	snap := t.c.current.snapshot
	snap.CompletedAt = &now

	switch {
	case err == nil:
		snap.State = StateCompleted
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		snap.State = StateCancelled
	default:
		snap.State = StateFailed
		snap.Error = err.Error()
	}

	t.c.current.cancel()
	t.c.current = nil
	t.c.last = &snap
}
