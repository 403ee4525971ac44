// Package session implements the per-query unit of state: a Session
// owns one Dataset registry, one dialect Engine, and the last
// question and generated code observed, all guarded by a per-session mutex so
// concurrent queries against the same Session serialize (spec.md §5,
// "single-writer"). The registry mapping session id to Session is
// grounded on the teacher's SharedContext.tasks + sync.RWMutex pattern
// (internal/context/shared_context.go), generalized from "task id to
// TaskInfo" to "session id to Session".
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nlquery/corecube/internal/dataset"
	"github.com/nlquery/corecube/internal/dialect"
)

// Session is one client's loaded data plus the last observed question
// and generated code. A Dataset, once loaded, is immutable for the
// Session's lifetime (invariant I2); LastQuestion/LastCode are the only
// fields a query mutates. The last Response is not kept on the Session.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	registry *dataset.Registry
	engine   *dialect.Engine

	LastQuestion string
	LastCode     string
}

// New creates a Session with a fresh id, wrapping registry and engine,
// which the caller has already populated via the connector layer.
func New(registry *dataset.Registry, engine *dialect.Engine) *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		registry:  registry,
		engine:    engine,
	}
}

// Ready reports invariant I4: a Session is queryable only once its
// Dataset registry holds at least one fully loaded Dataset.
func (s *Session) Ready() bool {
	return s.registry != nil && len(s.registry.Names()) > 0
}

// Datasets returns every loaded Dataset, safe for concurrent reads
// since a Dataset is immutable once loaded.
func (s *Session) Datasets() []*dataset.Dataset {
	if s.registry == nil {
		return nil
	}
	return s.registry.All()
}

// Engine returns the Session's SQL engine.
func (s *Session) Engine() *dialect.Engine {
	return s.engine
}

// Lock serializes queries against this Session; callers must call
// Unlock when done, typically via defer.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// RecordQuery atomically updates the last-observed fields at the end
// of a successful query, per spec.md §5's sequential-consistency
// guarantee within one Session.
func (s *Session) RecordQuery(question, code string) {
	s.LastQuestion = question
	s.LastCode = code
}

// Close releases the Session's SQL engine connection, matching
// spec.md §5's "SQL engine connection is pooled per Session and
// released on Session close."
func (s *Session) Close() error {
	if s.engine == nil {
		return nil
	}
	return s.engine.Close()
}

// Registry is the sync.RWMutex-guarded map from session id to Session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add registers a new Session.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Get looks up a Session by id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session: %q not found", id)
	}
	return s, nil
}

// Remove closes and drops a Session from the registry.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("session: %q not found", id)
	}
	return s.Close()
}

// Len reports how many sessions are currently registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
