// Package revocation records signed-out sessions until they would have expired.
package revocation

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore keeps signed-out session ids in process.
type InMemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]time.Time), now: time.Now}
}

func (s *InMemoryStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.entries[jti] = now.Add(ttl)
	s.pruneLocked(now)
	return nil
}

func (s *InMemoryStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.entries[jti]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.entries, jti)
		return false, nil
	}
	return true, nil
}

func (s *InMemoryStore) pruneLocked(now time.Time) {
	for jti, exp := range s.entries {
		if !now.Before(exp) {
			delete(s.entries, jti)
		}
	}
}
