// Package server exposes the game engine over HTTP and websocket. Routes
// mirror the actions a client can take: start, act, dialog, combat, spend,
// buy, sell, save, load, and state inspection. Every mutation broadcasts
// the new state to the session's websocket subscribers.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kelana/nightmarket/engine"
	"github.com/kelana/nightmarket/engine/save"
	"github.com/kelana/nightmarket/engine/state"
	"github.com/kelana/nightmarket/store"
	"github.com/kelana/nightmarket/types"
)

// Server wires the engine registry, the save store, and the websocket hub
// behind an http.Handler.
type Server struct {
	cfg      Config
	defs     *state.Defs
	registry *Registry
	saves    store.Store
	hub      *Hub
	log      *zap.Logger
	mux      *http.ServeMux
}

// New assembles a Server around loaded content and a save store.
func New(cfg Config, defs *state.Defs, saves store.Store, log *zap.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		defs:     defs,
		registry: NewRegistry(defs),
		saves:    saves,
		hub:      NewHub(log),
		log:      log,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/game/start", s.handleStart)
	s.mux.HandleFunc("POST /api/game/act", s.handleAct)
	s.mux.HandleFunc("POST /api/game/dialog", s.handleDialog)
	s.mux.HandleFunc("POST /api/game/combat", s.handleCombat)
	s.mux.HandleFunc("POST /api/game/spend", s.handleSpend)
	s.mux.HandleFunc("POST /api/game/buy", s.handleBuy)
	s.mux.HandleFunc("POST /api/game/sell", s.handleSell)
	s.mux.HandleFunc("POST /api/game/save", s.handleSave)
	s.mux.HandleFunc("POST /api/game/load", s.handleLoad)
	s.mux.HandleFunc("GET /api/game/state", s.handleState)
	s.mux.HandleFunc("GET /ws", s.handleWS)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type stateResponse struct {
	State *types.State `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func httpError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// session resolves the session from a request body's sessionId, writing the
// error response when it is missing or unknown.
func (s *Server) session(w http.ResponseWriter, sessionID string) *Session {
	if sessionID == "" {
		httpError(w, http.StatusBadRequest, "sessionId is required")
		return nil
	}
	sess := s.registry.Get(sessionID)
	if sess == nil {
		httpError(w, http.StatusBadRequest, "Session not found")
		return nil
	}
	return sess
}

// respond writes the session's state and broadcasts it to subscribers.
func (s *Server) respond(w http.ResponseWriter, sess *Session) {
	var snapshot types.State
	sess.WithLock(func(eng *engine.Engine) {
		snapshot = *eng.State
	})
	writeJSON(w, stateResponse{State: &snapshot})
	s.hub.Broadcast(sess.ID, stateResponse{State: &snapshot})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID  string `json:"sessionId"`
		PlayerName string `json:"playerName"`
		SeedLore   string `json:"seedLore"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	sess := s.registry.Start(req.SessionID, req.PlayerName, req.SeedLore)
	s.log.Info("session started",
		zap.String("session", sess.ID), zap.String("player", req.PlayerName))
	s.respond(w, sess)
}

func (s *Server) handleAct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
		Action    string `json:"action"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	sess := s.session(w, req.SessionID)
	if sess == nil {
		return
	}
	sess.WithLock(func(eng *engine.Engine) {
		eng.Step(req.Action)
	})
	s.respond(w, sess)
}

func (s *Server) handleDialog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
		NPCID     string `json:"npcId"`
		ChoiceID  string `json:"choiceId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SessionID == "" || req.NPCID == "" || req.ChoiceID == "" {
		httpError(w, http.StatusBadRequest, "sessionId, npcId, and choiceId are required")
		return
	}
	sess := s.session(w, req.SessionID)
	if sess == nil {
		return
	}
	sess.WithLock(func(eng *engine.Engine) {
		eng.ChooseDialog(req.NPCID, req.ChoiceID)
	})
	s.respond(w, sess)
}

func (s *Server) handleCombat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
		Action    string `json:"action"`
		Target    string `json:"target"`
		Item      string `json:"item"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	sess := s.session(w, req.SessionID)
	if sess == nil {
		return
	}
	var unsupported bool
	sess.WithLock(func(eng *engine.Engine) {
		switch req.Action {
		case "attack":
			eng.Attack(req.Target)
		case "flee":
			eng.Flee()
		case "use":
			eng.UseItem(req.Item)
		default:
			unsupported = true
		}
	})
	if unsupported {
		httpError(w, http.StatusBadRequest, "Unsupported combat action")
		return
	}
	s.respond(w, sess)
}

func (s *Server) handleSpend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
		Stat      string `json:"stat"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	sess := s.session(w, req.SessionID)
	if sess == nil {
		return
	}
	sess.WithLock(func(eng *engine.Engine) {
		eng.SpendSkillPoint(req.Stat)
	})
	s.respond(w, sess)
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
		Item      string `json:"item"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	sess := s.session(w, req.SessionID)
	if sess == nil {
		return
	}
	if req.Item != "" {
		sess.WithLock(func(eng *engine.Engine) {
			eng.GrantItem(req.Item)
		})
	}
	s.respond(w, sess)
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
		Item      string `json:"item"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	sess := s.session(w, req.SessionID)
	if sess == nil {
		return
	}
	if req.Item != "" {
		sess.WithLock(func(eng *engine.Engine) {
			eng.RemoveItem(req.Item)
		})
	}
	s.respond(w, sess)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	sess := s.session(w, req.SessionID)
	if sess == nil {
		return
	}
	var data []byte
	var err error
	sess.WithLock(func(eng *engine.Engine) {
		data, err = save.Save(eng.State)
	})
	if err == nil {
		err = s.saves.Put(r.Context(), sess.ID, data)
	}
	if err != nil {
		s.log.Error("save failed", zap.String("session", sess.ID), zap.Error(err))
		httpError(w, http.StatusInternalServerError, "save failed")
		return
	}
	writeJSON(w, map[string]string{"status": "saved"})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		httpError(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	data, err := s.saves.Get(r.Context(), req.SessionID)
	if errors.Is(err, store.ErrNotFound) {
		httpError(w, http.StatusBadRequest, "Session not found")
		return
	}
	if err != nil {
		s.log.Error("load failed", zap.String("session", req.SessionID), zap.Error(err))
		httpError(w, http.StatusInternalServerError, "load failed")
		return
	}
	sd, err := save.Load(data)
	if err != nil {
		s.log.Error("corrupt save", zap.String("session", req.SessionID), zap.Error(err))
		httpError(w, http.StatusInternalServerError, "corrupt save")
		return
	}
	st := sd.State
	sess := s.registry.Attach(req.SessionID, engine.Restore(s.defs, &st))
	var snapshot types.State
	sess.WithLock(func(eng *engine.Engine) {
		snapshot = *eng.State
	})
	writeJSON(w, map[string]any{"status": "loaded", "state": &snapshot})
	s.hub.Broadcast(sess.ID, stateResponse{State: &snapshot})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r.URL.Query().Get("sessionId"))
	if sess == nil {
		return
	}
	var snapshot types.State
	sess.WithLock(func(eng *engine.Engine) {
		snapshot = *eng.State
	})
	writeJSON(w, stateResponse{State: &snapshot})
}
