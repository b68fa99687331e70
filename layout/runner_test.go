package layout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnymontana/dgraph-client-app-sub001/errors"
)

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = 1
	r := NewRunner(NewEngine(cfg), testModel(5), time.Millisecond)
	t.Cleanup(func() {
		_ = r.Stop(time.Second)
	})
	return r
}

func TestRunnerStepsWhileRunning(t *testing.T) {
	r := newTestRunner(t)

	require.NoError(t, r.Start(context.Background()))
	assert.True(t, r.IsRunning())

	require.Eventually(t, func() bool {
		return r.Ticks() > 0
	}, time.Second, time.Millisecond, "runner never ticked")
}

func TestRunnerDoubleStartFails(t *testing.T) {
	r := newTestRunner(t)

	require.NoError(t, r.Start(context.Background()))
	err := r.Start(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAlreadyStarted)
}

func TestRunnerPauseResumeKeepsPositions(t *testing.T) {
	r := newTestRunner(t)
	require.NoError(t, r.Start(context.Background()))

	require.Eventually(t, func() bool { return r.Ticks() > 3 }, time.Second, time.Millisecond)

	r.Pause()
	assert.False(t, r.IsRunning())
	// Let any in-flight step drain before sampling.
	time.Sleep(10 * time.Millisecond)
	pausedTicks := r.Ticks()
	pausedPositions := r.Snapshot()
	require.NotEmpty(t, pausedPositions)

	// Paused: ticks stop advancing.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, pausedTicks, r.Ticks())
	assert.Equal(t, pausedPositions, r.Snapshot(), "pause must not discard positions")

	r.Resume()
	assert.True(t, r.IsRunning())
	require.Eventually(t, func() bool { return r.Ticks() > pausedTicks }, time.Second, time.Millisecond)
}

func TestRunnerStopTerminatesStepper(t *testing.T) {
	r := newTestRunner(t)
	require.NoError(t, r.Start(context.Background()))
	require.Eventually(t, func() bool { return r.Ticks() > 0 }, time.Second, time.Millisecond)

	require.NoError(t, r.Stop(time.Second))

	stopped := r.Ticks()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, r.Ticks(), "stepper kept running after Stop")
}

func TestRunnerStopIdempotent(t *testing.T) {
	r := newTestRunner(t)

	assert.NoError(t, r.Stop(time.Second), "stop before start is a no-op")

	require.NoError(t, r.Start(context.Background()))
	assert.NoError(t, r.Stop(time.Second))
	assert.NoError(t, r.Stop(time.Second))
}

func TestRunnerParentContextCancellation(t *testing.T) {
	r := newTestRunner(t)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, r.Start(ctx))
	require.Eventually(t, func() bool { return r.Ticks() > 0 }, time.Second, time.Millisecond)

	cancel()

	// The goroutine exits on its own when the owning context dies.
	require.Eventually(t, func() bool {
		ticks := r.Ticks()
		time.Sleep(5 * time.Millisecond)
		return r.Ticks() == ticks
	}, time.Second, 5*time.Millisecond)
}

func TestRunnerSnapshotConsistency(t *testing.T) {
	r := newTestRunner(t)
	require.NoError(t, r.Start(context.Background()))
	require.Eventually(t, func() bool { return r.Ticks() > 0 }, time.Second, time.Millisecond)

	snap := r.Snapshot()
	assert.Len(t, snap, len(r.Model().Nodes))

	// The snapshot is a copy: mutating it leaves the model alone.
	for id := range snap {
		p := snap[id]
		p.X += 1e6
		snap[id] = p
		break
	}
	for id, node := range r.Model().Nodes {
		require.NotNil(t, node.Position, "node %s", id)
	}
}
