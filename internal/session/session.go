// Package session maps opaque session ids to in-memory ledgers. A session
// lives as long as it keeps being used; idle sessions expire after the
// configured TTL and their ledger state is gone with them.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"racha/internal/ledger"
)

// Session owns one ledger plus the single-outstanding-AI-call guard that
// mirrors the client's busy flag on the server side.
type Session struct {
	ID     string
	Ledger *ledger.Ledger

	aiBusy atomic.Bool
}

// TryAcquireAI reserves the session's one AI slot. It returns false while a
// previous call is still in flight.
func (s *Session) TryAcquireAI() bool {
	return s.aiBusy.CompareAndSwap(false, true)
}

// ReleaseAI frees the AI slot after the awaited call resolves or fails.
func (s *Session) ReleaseAI() {
	s.aiBusy.Store(false)
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Store holds live sessions and expires idle ones in the background.
type Store struct {
	mu           sync.Mutex
	ttl          time.Duration
	sessions     map[string]*entry
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

func NewStore(ttl time.Duration) *Store {
	s := &Store{
		ttl:         ttl,
		sessions:    make(map[string]*entry),
		stopCleanup: make(chan struct{}),
	}
	go s.startCleanup()
	return s
}

// Get returns the session for id and refreshes its expiry.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if time.Since(e.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	e.lastSeen = time.Now()
	return e.session, true
}

// Create starts a fresh session with an empty ledger.
func (s *Store) Create() *Session {
	sess := &Session{
		ID:     uuid.NewString(),
		Ledger: ledger.New(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = &entry{session: sess, lastSeen: time.Now()}
	return sess
}

// Len reports the number of live sessions (readiness probe data).
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// startCleanup runs periodic cleanup to drop expired sessions.
func (s *Store) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanupExpired()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *Store) cleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	removed := 0
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Stop shuts the cleanup goroutine down.
func (s *Store) Stop() {
	s.shutdownOnce.Do(func() {
		close(s.stopCleanup)
	})
}
