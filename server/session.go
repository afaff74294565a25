package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/kelana/nightmarket/engine"
	"github.com/kelana/nightmarket/engine/state"
)

// Session is one live game behind its own lock. All engine calls on a
// session go through WithLock.
type Session struct {
	ID  string
	mu  sync.Mutex
	Eng *engine.Engine
}

// WithLock runs fn with the session's engine while holding its lock.
func (s *Session) WithLock(fn func(*engine.Engine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.Eng)
}

// Registry holds live sessions by id.
type Registry struct {
	mu       sync.RWMutex
	defs     *state.Defs
	sessions map[string]*Session
}

// NewRegistry creates an empty registry over the given content.
func NewRegistry(defs *state.Defs) *Registry {
	return &Registry{defs: defs, sessions: map[string]*Session{}}
}

// Start creates (or replaces) a session. An empty id gets a generated one.
func (r *Registry) Start(id, playerName, loreSeed string) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	sess := &Session{ID: id, Eng: engine.New(r.defs, playerName, loreSeed)}
	r.mu.Lock()
	r.sessions[id] = sess
	r.mu.Unlock()
	return sess
}

// Get returns the live session for an id, or nil.
func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// Attach installs a restored engine under an id, replacing any live
// session.
func (r *Registry) Attach(id string, eng *engine.Engine) *Session {
	sess := &Session{ID: id, Eng: eng}
	r.mu.Lock()
	r.sessions[id] = sess
	r.mu.Unlock()
	return sess
}
