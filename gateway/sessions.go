package gateway

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/johnymontana/dgraph-client-app-sub001/errors"
	"github.com/johnymontana/dgraph-client-app-sub001/graph"
	"github.com/johnymontana/dgraph-client-app-sub001/layout"
	"github.com/johnymontana/dgraph-client-app-sub001/metric"
)

// Session is one live continuous layout computation. The runner owns the
// model's coordinates until the session stops.
type Session struct {
	ID        string
	Runner    *layout.Runner
	CreatedAt time.Time
}

// SessionManager tracks live layout sessions. Sessions are started under
// the manager's base context so tearing the service down cancels every
// stepper.
type SessionManager struct {
	maxSessions  int
	tickInterval time.Duration
	metrics      *metric.Metrics
	logger       *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionManager creates a session manager.
func NewSessionManager(maxSessions int, tickInterval time.Duration, metrics *metric.Metrics, logger *slog.Logger) *SessionManager {
	return &SessionManager{
		maxSessions:  maxSessions,
		tickInterval: tickInterval,
		metrics:      metrics,
		logger:       logger,
		sessions:     make(map[string]*Session),
	}
}

// Start launches a continuous layout over a model and registers it under a
// fresh session id.
func (sm *SessionManager) Start(ctx context.Context, model *graph.Model, cfg layout.Config) (*Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= sm.maxSessions {
		return nil, errors.WrapTransient(errors.ErrRateLimited, "SessionManager", "Start",
			"maximum live layout sessions reached")
	}

	session := &Session{
		ID:        uuid.NewString(),
		Runner:    layout.NewRunner(layout.NewEngine(cfg), model, sm.tickInterval),
		CreatedAt: time.Now(),
	}

	if err := session.Runner.Start(ctx); err != nil {
		return nil, err
	}

	sm.sessions[session.ID] = session
	if sm.metrics != nil {
		sm.metrics.LayoutSessions.Set(float64(len(sm.sessions)))
	}

	sm.logger.Info("Layout session started",
		"component", "session-manager",
		"session_id", session.ID,
		"nodes", model.NodeCount(),
		"edges", model.EdgeCount())

	return session, nil
}

// Get returns a live session by id.
func (sm *SessionManager) Get(id string) (*Session, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s, ok := sm.sessions[id]
	return s, ok
}

// Stop terminates a session's stepper and removes it.
func (sm *SessionManager) Stop(id string) error {
	sm.mu.Lock()
	session, ok := sm.sessions[id]
	if ok {
		delete(sm.sessions, id)
		if sm.metrics != nil {
			sm.metrics.LayoutSessions.Set(float64(len(sm.sessions)))
		}
	}
	sm.mu.Unlock()

	if !ok {
		return errors.WrapInvalid(errors.ErrSessionNotFound, "SessionManager", "Stop", id)
	}

	err := session.Runner.Stop(5 * time.Second)
	if sm.metrics != nil {
		sm.metrics.LayoutTicks.Add(float64(session.Runner.Ticks()))
	}

	sm.logger.Info("Layout session stopped",
		"component", "session-manager",
		"session_id", id,
		"ticks", session.Runner.Ticks())

	return err
}

// StopAll terminates every live session, used during shutdown.
func (sm *SessionManager) StopAll() {
	sm.mu.Lock()
	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	sm.mu.Unlock()

	for _, id := range ids {
		if err := sm.Stop(id); err != nil {
			sm.logger.Warn("Failed to stop layout session",
				"component", "session-manager",
				"session_id", id,
				"error", err)
		}
	}
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.sessions)
}
