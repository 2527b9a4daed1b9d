package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. It exists for tests and local
// runs without a Redis instance.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	userID    uint64
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Set(ctx context.Context, token string, userID uint64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = memoryEntry{
		userID:    userID,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, token string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[token]
	if !ok {
		return 0, ErrNoSession
	}
	if time.Now().After(e.expiresAt) {
		delete(s.entries, token)
		return 0, ErrNoSession
	}
	return e.userID, nil
}

func (s *MemoryStore) Refresh(ctx context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[token]
	if !ok || time.Now().After(e.expiresAt) {
		delete(s.entries, token)
		return ErrNoSession
	}
	e.expiresAt = time.Now().Add(ttl)
	s.entries[token] = e
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
	return nil
}
