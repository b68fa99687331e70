package gateway

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnymontana/dgraph-client-app-sub001/errors"
	"github.com/johnymontana/dgraph-client-app-sub001/graph"
	"github.com/johnymontana/dgraph-client-app-sub001/layout"
)

func newTestSessionManager(max int) *SessionManager {
	return NewSessionManager(max, time.Millisecond, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sessionModel() *graph.Model {
	m := graph.NewModel()
	m.Nodes["0x1"] = &graph.Node{ID: "0x1"}
	m.Nodes["0x2"] = &graph.Node{ID: "0x2"}
	m.Edges = append(m.Edges, graph.Edge{ID: "0x1-0x2-knows", Source: "0x1", Target: "0x2", Label: "knows"})
	return m
}

func TestSessionManagerStartAndStop(t *testing.T) {
	sm := newTestSessionManager(4)
	t.Cleanup(sm.StopAll)

	session, err := sm.Start(context.Background(), sessionModel(), layout.DefaultConfig())
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)
	assert.Equal(t, 1, sm.Count())

	got, ok := sm.Get(session.ID)
	require.True(t, ok)
	assert.Same(t, session, got)

	require.NoError(t, sm.Stop(session.ID))
	assert.Equal(t, 0, sm.Count())
	_, ok = sm.Get(session.ID)
	assert.False(t, ok)
}

func TestSessionManagerStopUnknown(t *testing.T) {
	sm := newTestSessionManager(4)

	err := sm.Stop("does-not-exist")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrSessionNotFound))
}

func TestSessionManagerMaxSessions(t *testing.T) {
	sm := newTestSessionManager(2)
	t.Cleanup(sm.StopAll)

	for i := 0; i < 2; i++ {
		_, err := sm.Start(context.Background(), sessionModel(), layout.DefaultConfig())
		require.NoError(t, err)
	}

	_, err := sm.Start(context.Background(), sessionModel(), layout.DefaultConfig())
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrRateLimited))
	assert.True(t, errors.IsTransient(err))
}

func TestSessionManagerStopAll(t *testing.T) {
	sm := newTestSessionManager(8)

	var runners []*layout.Runner
	for i := 0; i < 3; i++ {
		session, err := sm.Start(context.Background(), sessionModel(), layout.DefaultConfig())
		require.NoError(t, err)
		runners = append(runners, session.Runner)
	}

	sm.StopAll()
	assert.Equal(t, 0, sm.Count())
	for _, r := range runners {
		assert.False(t, r.IsRunning())
	}
}

func TestSessionRunnerStepsInBackground(t *testing.T) {
	sm := newTestSessionManager(4)
	t.Cleanup(sm.StopAll)

	session, err := sm.Start(context.Background(), sessionModel(), layout.DefaultConfig())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return session.Runner.Ticks() > 0
	}, time.Second, 5*time.Millisecond)

	positions := session.Runner.Snapshot()
	assert.Len(t, positions, 2)
}
