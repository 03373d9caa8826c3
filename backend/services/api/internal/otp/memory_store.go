package otp

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	hash      string
	expiresAt time.Time
	attempts  int
}

// MemoryStore keeps hashed codes in process memory. One mutex owns every
// check-and-delete so a code can be consumed only once.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), now: time.Now}
}

// Save stores hash under key for ttl, replacing any previous entry.
func (s *MemoryStore) Save(_ context.Context, key, hash string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{hash: hash, expiresAt: s.now().Add(ttl)}
	return nil
}

// Consume deletes and accepts the entry when it is unexpired and match returns true.
// Expired entries are dropped on sight, and so is an entry whose rejections reach maxAttempts.
func (s *MemoryStore) Consume(_ context.Context, key string, maxAttempts int, match func(hash string) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return false, nil
	}
	if !match(e.hash) {
		e.attempts++
		if maxAttempts > 0 && e.attempts >= maxAttempts {
			delete(s.entries, key)
		} else {
			s.entries[key] = e
		}
		return false, nil
	}
	delete(s.entries, key)
	return true, nil
}

// Len reports the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops expired entries.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
