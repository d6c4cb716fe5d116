package cache

import (
	"context"
	"sync"
	"time"
)

// entry represents a stored request key with expiration
type entry struct {
	expiresAt time.Time
}

// InMemoryIdempotencyStore implements shared.IdempotencyStore using an
// in-memory map. Suitable for single-instance deployments and testing.
type InMemoryIdempotencyStore struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates a new in-memory idempotency store.
// It starts a background goroutine to clean up expired entries.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// MarkProcessed marks a request key as processed with a TTL.
// Returns true if the key was newly marked, false if it was already processed.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.entries[key]; exists {
		if time.Now().Before(e.expiresAt) {
			return false, nil // Already processed
		}
		// Entry exists but expired, will be overwritten
	}

	s.entries[key] = entry{
		expiresAt: time.Now().Add(ttl),
	}

	return true, nil
}

// IsProcessed checks if a request key has already been processed
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[key]
	if !exists {
		return false, nil
	}
	if time.Now().After(e.expiresAt) {
		return false, nil // Expired, treat as not processed
	}

	return true, nil
}

// Close stops the cleanup goroutine and releases resources.
// Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (s *InMemoryIdempotencyStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

// removeExpired deletes all entries whose TTL has passed
func (s *InMemoryIdempotencyStore) removeExpired() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}
