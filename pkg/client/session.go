package client

import (
	"sync"
	"time"
)

// Session is the client-held token state: the access token with its expiry
// and, when the server has handed one out, a refresh token with its own
// expiry. It is the Go analog of the browser's persisted token fields.
type Session struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// SessionStore persists the session between calls. Implementations must be
// safe for concurrent use; the client reads it before every request.
type SessionStore interface {
	Load() (Session, bool)
	Save(Session)
	Clear()
}

// MemoryStore is the default SessionStore: process-local, mutex-guarded.
type MemoryStore struct {
	mu   sync.RWMutex
	sess Session
	ok   bool
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess, m.ok
}

func (m *MemoryStore) Save(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = s
	m.ok = true
}

func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = Session{}
	m.ok = false
}
