// internal/engine/store.go
package engine

import (
	"sync"

	"github.com/google/uuid"
)

// SessionStore holds live sessions in memory, addressable by internal id or
// by shareable public id.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	byPublic map[string]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*Session),
		byPublic: make(map[string]*Session),
	}
}

func (st *SessionStore) Add(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
	st.byPublic[s.PublicID] = s
}

func (st *SessionStore) Get(id uuid.UUID) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

func (st *SessionStore) GetByPublicID(publicID string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.byPublic[publicID]
	return s, ok
}

func (st *SessionStore) Delete(id uuid.UUID) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok {
		delete(st.byPublic, s.PublicID)
		delete(st.sessions, id)
	}
}

// ForEach calls fn with every live session. fn must not call back into the
// store.
func (st *SessionStore) ForEach(fn func(*Session)) {
	st.mu.Lock()
	list := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		list = append(list, s)
	}
	st.mu.Unlock()
	for _, s := range list {
		fn(s)
	}
}
