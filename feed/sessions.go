package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound  = errors.New("feed session not found")
	ErrSessionForbidden = errors.New("feed session belongs to another viewer")
)

// Sessions tracks live feed sessions. A session lives as long as the context
// it was opened with, or until closed; all internal state is managed by its
// receivers.
type Sessions struct {
	backend Backend
	ranker  *Ranker
	limit   int

	// Adding/Removing a session must grab WriteLock, lookups grab a ReadLock.
	mu       sync.RWMutex
	sessions map[string]*Session
	// cancels releases the context of each registered session.
	cancels map[string]context.CancelFunc
}

func NewSessions(backend Backend, ranker *Ranker, limit int) *Sessions {
	return &Sessions{
		backend:  backend,
		ranker:   ranker,
		limit:    limit,
		sessions: make(map[string]*Session),
		cancels:  make(map[string]context.CancelFunc),
	}
}

// Open creates a session for viewer and registers it until ctx is done or
// the session is closed. Thread-safe.
func (ss *Sessions) Open(ctx context.Context, viewer Viewer) *Session {
	return ss.OpenWithTTL(ctx, viewer, 0)
}

// OpenWithTTL is Open with the session also expiring after ttl, when ttl is
// positive. Thread-safe.
func (ss *Sessions) OpenWithTTL(ctx context.Context, viewer Viewer, ttl time.Duration) *Session {
	var cancel context.CancelFunc
	if ttl > 0 {
		ctx, cancel = context.WithTimeout(ctx, ttl)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	s := NewSession("feed_session_"+uuid.New().String(), viewer, ss.backend, ss.ranker, ss.limit)
	s.done = ctx.Done()

	ss.mu.Lock()
	ss.sessions[s.ID()] = s
	ss.cancels[s.ID()] = cancel
	ss.mu.Unlock()

	// Spin up a background garbage collector.
	go func() {
		<-ctx.Done()
		ss.Close(s.ID())
	}()
	return s
}

// Ephemeral builds a session that is never registered, for one-off views.
func (ss *Sessions) Ephemeral(viewer Viewer) *Session {
	return NewSession("", viewer, ss.backend, ss.ranker, ss.limit)
}

// Get returns the session with id if it belongs to viewer. Thread-safe.
func (ss *Sessions) Get(id string, viewer Viewer) (*Session, error) {
	ss.mu.RLock()
	s, ok := ss.sessions[id]
	ss.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.Viewer().ID != viewer.ID {
		return nil, ErrSessionForbidden
	}
	return s, nil
}

// Close drops a session and releases its context. Closing twice is fine.
// Thread-safe.
func (ss *Sessions) Close(id string) {
	ss.mu.Lock()
	cancel := ss.cancels[id]
	delete(ss.sessions, id)
	delete(ss.cancels, id)
	ss.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// All returns a snapshot of the registered sessions. Thread-safe.
func (ss *Sessions) All() []*Session {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	res := make([]*Session, 0, len(ss.sessions))
	for _, s := range ss.sessions {
		res = append(res, s)
	}
	return res
}

// Count returns the number of registered sessions. Thread-safe.
func (ss *Sessions) Count() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}
