package operation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newscurator/internal/apperr"
)

func TestCoordinator_RejectsConcurrentBegin(t *testing.T) {
	c := NewCoordinator()

	tracker, _, err := c.Begin(context.Background(), TypeScrape)
	require.NoError(t, err)

	_, _, err = c.Begin(context.Background(), TypeProcess)
	require.Error(t, err)
	var conflict *apperr.ConflictError
	assert.ErrorAs(t, err, &conflict)

	tracker.Finish(nil)

	_, _, err = c.Begin(context.Background(), TypeProcess)
	assert.NoError(t, err)
}

func TestCoordinator_CancelPropagatesThroughContext(t *testing.T) {
	c := NewCoordinator()

	tracker, runCtx, err := c.Begin(context.Background(), TypeScrape)
	require.NoError(t, err)

	c.Cancel()

	select {
	case <-runCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("run context not cancelled")
	}

	assert.ErrorIs(t, tracker.Checkpoint(runCtx), context.Canceled)

	tracker.Finish(runCtx.Err())
	snap, ok := c.Snapshot()
	require.True(t, ok)
	assert.Equal(t, StateCancelled, snap.State)
}

func TestCoordinator_PauseBlocksCheckpointUntilResume(t *testing.T) {
	c := NewCoordinator()

	tracker, runCtx, err := c.Begin(context.Background(), TypeProcess)
	require.NoError(t, err)
	defer tracker.Finish(nil)

	c.Pause()
	snap, _ := c.Snapshot()
	assert.Equal(t, StatePaused, snap.State)

	released := make(chan error, 1)
	go func() {
		released <- tracker.Checkpoint(runCtx)
	}()

	select {
	case <-released:
		t.Fatal("checkpoint returned while paused")
	case <-time.After(50 * time.Millisecond):
	}

	c.Resume()

	select {
	case err := <-released:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("checkpoint did not release after resume")
	}
}

func TestCoordinator_CancelReleasesPausedRun(t *testing.T) {
	c := NewCoordinator()

	tracker, runCtx, err := c.Begin(context.Background(), TypeSupplement)
	require.NoError(t, err)

	c.Pause()

	released := make(chan error, 1)
	go func() {
		released <- tracker.Checkpoint(runCtx)
	}()

	c.Cancel()

	select {
	case err := <-released:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("checkpoint did not release after cancel")
	}

	tracker.Finish(runCtx.Err())
}

func TestCoordinator_SnapshotKeepsLastFinishedRun(t *testing.T) {
	c := NewCoordinator()

	_, ok := c.Snapshot()
	assert.False(t, ok)

	tracker, _, err := c.Begin(context.Background(), TypeScrape)
	require.NoError(t, err)

	tracker.UpdateScraping(func(s *ScrapingStats) {
		s.ArticlesAdded = 7
	})
	tracker.Finish(nil)

	snap, ok := c.Snapshot()
	require.True(t, ok)
	assert.Equal(t, StateCompleted, snap.State)
	assert.Equal(t, 7, snap.Scraping.ArticlesAdded)
	assert.NotNil(t, snap.CompletedAt)
	assert.False(t, c.Running())
}

func TestCoordinator_LogIsCappedAtFifty(t *testing.T) {
	c := NewCoordinator()

	tracker, _, err := c.Begin(context.Background(), TypeProcess)
	require.NoError(t, err)
	defer tracker.Finish(nil)

	for i := 0; i < 60; i++ {
		tracker.Log("message %d", i)
	}

	snap, _ := c.Snapshot()
	require.Len(t, snap.Messages, 50)
	assert.Equal(t, "message 59", snap.Messages[49].Text)
	assert.Equal(t, "message 10", snap.Messages[0].Text)
}
