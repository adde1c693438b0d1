package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gyeh/atexplorer/internal/dataset"
	"github.com/gyeh/atexplorer/internal/model"
	"github.com/gyeh/atexplorer/internal/pipeline"
)

// Session is one user's workspace: its own upload cache and the dataset
// currently being explored. Sessions never share caches.
type Session struct {
	ID      uuid.UUID
	Created time.Time

	mu       sync.Mutex
	cache    *dataset.Cache
	prepared map[string]*pipeline.Prepared // by bundle sha256 + name
	current  *pipeline.Prepared
	summary  *model.LoadSummary
}

func newSession(uploadLimit int64) *Session {
	return &Session{
		ID:       uuid.New(),
		Created:  time.Now().UTC(),
		cache:    dataset.NewCache(uploadLimit),
		prepared: make(map[string]*pipeline.Prepared),
	}
}

// Current returns the dataset being explored, nil before a successful upload.
func (s *Session) Current() (*pipeline.Prepared, *model.LoadSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.summary
}

func (s *Session) setCurrent(p *pipeline.Prepared, sum *model.LoadSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = p
	s.summary = sum
}

func (s *Session) lookupPrepared(key string) (*pipeline.Prepared, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prepared[key]
	return p, ok
}

func (s *Session) storePrepared(key string, p *pipeline.Prepared) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prepared[key] = p
}

// SessionInfo is the JSON view of a session.
type SessionInfo struct {
	ID          uuid.UUID          `json:"session_id"`
	Created     time.Time          `json:"created"`
	Dataset     *model.LoadSummary `json:"dataset,omitempty"`
	CachedFiles int                `json:"cached_uploads"`
	CacheHits   int                `json:"cache_hits"`
}

// Info snapshots the session.
func (s *Session) Info() SessionInfo {
	hits, _ := s.cache.Stats()
	_, sum := s.Current()
	return SessionInfo{
		ID:          s.ID,
		Created:     s.Created,
		Dataset:     sum,
		CachedFiles: s.cache.Len(),
		CacheHits:   hits,
	}
}

// Registry holds the live sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	// uploadLimit also caps how far a session's archives may expand.
	uploadLimit int64
}

// NewRegistry creates an empty registry.
func NewRegistry(uploadLimit int64) *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*Session), uploadLimit: uploadLimit}
}

// Create registers a new session.
func (r *Registry) Create() *Session {
	s := newSession(r.uploadLimit)
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get looks a session up by id.
func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Delete drops a session and, with it, its cache.
func (r *Registry) Delete(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
