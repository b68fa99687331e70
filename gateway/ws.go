package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/johnymontana/dgraph-client-app-sub001/errors"
	"github.com/johnymontana/dgraph-client-app-sub001/graph"
)

const (
	wsWriteDeadline = 10 * time.Second
	wsReadDeadline  = 60 * time.Second
	wsPingInterval  = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The web client is served from a different origin during development.
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// positionFrame is one layout update pushed to a streaming client.
type positionFrame struct {
	Type      string                    `json:"type"`
	SessionID string                    `json:"session_id"`
	Tick      int64                     `json:"tick"`
	Running   bool                      `json:"running"`
	Timestamp int64                     `json:"timestamp"`
	Positions map[string]graph.Position `json:"positions"`
}

// handleLayoutStream upgrades to websocket and pushes position snapshots
// for one layout session until the session stops or the client goes away.
func (s *Server) handleLayoutStream(w http.ResponseWriter, r *http.Request) {
	session, ok := s.sessions.Get(r.PathValue("id"))
	if !ok {
		s.fail(w, r, http.StatusNotFound, errors.ErrSessionNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed",
			"component", "gateway",
			"session_id", session.ID,
			"error", err)
		return
	}
	defer conn.Close()

	s.logger.Info("Layout stream opened",
		"component", "gateway",
		"session_id", session.ID,
		"remote", r.RemoteAddr)

	// Read loop exists only to notice client-side close.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			_ = conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		return nil
	})

	ctx := s.baseContext(r)
	broadcast := time.NewTicker(s.cfg.Layout.BroadcastInterval.Std())
	defer broadcast.Stop()
	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-clientGone:
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-broadcast.C:
			// Session gone means the runner was stopped; close cleanly.
			if _, ok := s.sessions.Get(session.ID); !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session stopped"),
					time.Now().Add(wsWriteDeadline))
				return
			}
			if err := writeFrame(conn, session); err != nil {
				return
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, session *Session) error {
	frame := positionFrame{
		Type:      "positions",
		SessionID: session.ID,
		Tick:      session.Runner.Ticks(),
		Running:   session.Runner.IsRunning(),
		Timestamp: time.Now().UnixMilli(),
		Positions: session.Runner.Snapshot(),
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
	return conn.WriteMessage(websocket.TextMessage, data)
}
