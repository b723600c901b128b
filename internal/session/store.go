// Package session keeps the dashboard state of every browser session in memory.
package session

import (
	"context"
	"sync"
	"time"

	"csvdash/domain/core"
	domainsession "csvdash/domain/session"
	"csvdash/internal"
)

// Store defines the session state operations used by the web layer
type Store interface {
	// Get returns the current state of a session
	Get(ctx context.Context, id core.SessionID) (domainsession.State, error)

	// Update runs fn on the session's state and stores the result. Calls for the
	// same session run one at a time; a session that does not exist yet starts
	// from domainsession.New. When fn fails nothing is stored.
	Update(ctx context.Context, id core.SessionID, fn func(domainsession.State) (domainsession.State, error)) (domainsession.State, error)

	// Delete drops a session
	Delete(ctx context.Context, id core.SessionID) error

	// CleanupExpired drops sessions idle for longer than olderThan and returns
	// how many were removed
	CleanupExpired(ctx context.Context, olderThan time.Duration) (int, error)

	// Len returns the number of live sessions
	Len() int
}

type entry struct {
	mu    sync.Mutex
	state domainsession.State
}

// MemoryStore implements Store with a mutex-guarded map
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*entry
	logger   *internal.Logger
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(logger *internal.Logger) *MemoryStore {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &MemoryStore{
		sessions: make(map[core.SessionID]*entry),
		logger:   logger.With("SessionStore"),
		now:      time.Now,
	}
}

// Get implements Store
func (s *MemoryStore) Get(ctx context.Context, id core.SessionID) (domainsession.State, error) {
	if err := ctx.Err(); err != nil {
		return domainsession.State{}, err
	}
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return domainsession.State{}, core.ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, nil
}

// Update implements Store
func (s *MemoryStore) Update(ctx context.Context, id core.SessionID, fn func(domainsession.State) (domainsession.State, error)) (domainsession.State, error) {
	if id.IsEmpty() {
		return domainsession.State{}, core.ErrSessionNotFound
	}

	e := s.lockEntry(id)
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return e.state, err
	}

	next, err := fn(e.state)
	if err != nil {
		return e.state, err
	}
	next.ID = id
	e.state = next
	return next, nil
}

// lockEntry returns the locked entry of id. An entry evicted or deleted
// between the map lookup and the lock is no longer in the map, so the lookup
// is retried rather than writing to the orphan.
func (s *MemoryStore) lockEntry(id core.SessionID) *entry {
	for {
		e := s.entryFor(id)
		e.mu.Lock()
		s.mu.RLock()
		live := s.sessions[id] == e
		s.mu.RUnlock()
		if live {
			return e
		}
		e.mu.Unlock()
	}
}

func (s *MemoryStore) entryFor(id core.SessionID) *entry {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.sessions[id]; ok {
		return e
	}
	e = &entry{state: domainsession.New(id, s.now())}
	s.sessions[id] = e
	s.logger.Debug("Created session %s", id)
	return e
}

// Delete implements Store
func (s *MemoryStore) Delete(ctx context.Context, id core.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return core.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// CleanupExpired implements Store. Sessions in the middle of an Update are
// left for the next pass.
func (s *MemoryStore) CleanupExpired(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := s.now().Add(-olderThan)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if !e.mu.TryLock() {
			continue
		}
		if e.state.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
		e.mu.Unlock()
	}
	if removed > 0 {
		s.logger.Info("Evicted %d idle sessions (%d remaining)", removed, len(s.sessions))
	}
	return removed, nil
}

// Len implements Store
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// RunJanitor evicts idle sessions every interval until ctx is cancelled
func RunJanitor(ctx context.Context, store Store, interval, ttl time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := store.CleanupExpired(ctx, ttl); err != nil && ctx.Err() == nil {
				return err
			}
		}
	}
}
