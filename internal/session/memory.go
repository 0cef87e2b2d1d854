package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// CleanupInterval is how often expired sessions are dropped.
const CleanupInterval = 30 * time.Second

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Values are stored encoded so
// callers never share a *Session.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		sessions:    make(map[string]memoryEntry),
		ttl:         ttl,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

func (s *MemoryStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.expire()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *MemoryStore) expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, id)
		}
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || s.now().After(e.expiresAt) {
		return nil, ErrSessionNotFound
	}

	var sess Session
	if err := json.Unmarshal(e.data, &sess); err != nil {
		return nil, err
	}
	sess.normalize()
	return &sess, nil
}

func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[sess.ID] = memoryEntry{data: data, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() error {
	close(s.stopCleanup)
	s.wg.Wait()
	return nil
}
