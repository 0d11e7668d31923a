package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in a mutex-guarded map. A janitor goroutine
// sweeps idled-out entries so abandoned wizards do not leak memory.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[int64]*Session),
		ttl:      TTL,
		now:      time.Now,
	}
	go s.janitor()
	return s
}

// newMemoryStoreForTest skips the janitor and allows a fake clock.
func newMemoryStoreForTest(ttl time.Duration, now func() time.Time) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]*Session),
		ttl:      ttl,
		now:      now,
	}
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (*Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, false, nil
	}
	if s.now().Sub(sess.UpdatedAt) > s.ttl {
		delete(s.sessions, userID)
		return nil, false, nil
	}
	return sess, true, nil
}

func (s *MemoryStore) Put(_ context.Context, userID int64, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.UpdatedAt = s.now()
	s.sessions[userID] = sess
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *MemoryStore) janitor() {
	for range time.Tick(time.Minute) {
		s.mu.Lock()
		for id, sess := range s.sessions {
			if s.now().Sub(sess.UpdatedAt) > s.ttl {
				delete(s.sessions, id)
			}
		}
		s.mu.Unlock()
	}
}
