package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	userID    uint
	expiresAt time.Time
}

func (e memoryEntry) expired() bool {
	return time.Now().After(e.expiresAt)
}

// MemoryStore is a thread-safe in-process session store with expiration.
// It is the default when redis is not configured, and the test double.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
}

// NewMemoryStore creates a memory store and starts its cleanup goroutine
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{sessions: make(map[string]memoryEntry)}
	go s.cleanupLoop()
	return s
}

func (s *MemoryStore) Create(_ context.Context, userID uint, ttl time.Duration) (string, error) {
	token := uuid.New().String()

	s.mu.Lock()
	s.sessions[token] = memoryEntry{
		userID:    userID,
		expiresAt: time.Now().Add(ttl),
	}
	s.mu.Unlock()

	return token, nil
}

func (s *MemoryStore) Resolve(_ context.Context, token string) (uint, error) {
	s.mu.RLock()
	entry, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok || entry.expired() {
		return 0, ErrNotFound
	}
	return entry.userID, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) cleanupLoop() {
	for {
		time.Sleep(time.Minute)

		s.mu.Lock()
		for token, entry := range s.sessions {
			if entry.expired() {
				delete(s.sessions, token)
			}
		}
		s.mu.Unlock()
	}
}
