package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kelana/nightmarket/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browser clients connect from the game page origin; the API carries no
	// credentials, so any origin may subscribe.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Hub fans full-state snapshots out to websocket subscribers, grouped by
// session id.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*websocket.Conn]bool
	log   *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{rooms: map[string]map[*websocket.Conn]bool{}, log: log}
}

func (h *Hub) add(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[sessionID] == nil {
		h.rooms[sessionID] = map[*websocket.Conn]bool{}
	}
	h.rooms[sessionID][conn] = true
}

func (h *Hub) remove(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[sessionID], conn)
	if len(h.rooms[sessionID]) == 0 {
		delete(h.rooms, sessionID)
	}
	_ = conn.Close()
}

// Broadcast pushes a JSON payload to every subscriber of a session. Dead
// connections are dropped.
func (h *Hub) Broadcast(sessionID string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.rooms[sessionID] {
		if err := conn.WriteJSON(payload); err != nil {
			h.log.Debug("dropping websocket subscriber",
				zap.String("session", sessionID), zap.Error(err))
			delete(h.rooms[sessionID], conn)
			_ = conn.Close()
		}
	}
}

// handleWS upgrades /ws?sessionId=... and streams state snapshots. The
// subscriber receives the current state immediately, then one snapshot
// after every mutation.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		httpError(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	sess := s.registry.Get(sessionID)
	if sess == nil {
		httpError(w, http.StatusBadRequest, "Session not found")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	s.hub.add(sessionID, conn)

	sess.WithLock(func(eng *engine.Engine) {
		_ = conn.WriteJSON(stateResponse{State: eng.State})
	})

	// Reader loop: the protocol is push-only, but reading surfaces closes.
	go func() {
		defer s.hub.remove(sessionID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
