package debounce

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process ledger for tests and single-node runs.
// First-seen state does not survive restarts; production deployments use
// RedisStore.
type MemoryStore struct {
	mu       sync.Mutex
	cooldown map[string]time.Time // tuple key -> expiry
	seen     map[string]struct{}
	tracked  map[string]map[string]struct{} // monitorID -> entity ids

	// now is injectable for cooldown expiry tests.
	now func() time.Time
}

// NewMemoryStore creates an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cooldown: make(map[string]time.Time),
		seen:     make(map[string]struct{}),
		tracked:  make(map[string]map[string]struct{}),
		now:      time.Now,
	}
}

func tupleKey(monitorID, kind, entityID string) string {
	return monitorID + ":" + kind + ":" + entityID
}

func (s *MemoryStore) ShouldSuppress(_ context.Context, monitorID, kind, entityID string, cooldown time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tupleKey(monitorID, kind, entityID)
	now := s.now()
	if expiry, ok := s.cooldown[key]; ok && now.Before(expiry) {
		return true, nil
	}
	s.cooldown[key] = now.Add(cooldown)
	return false, nil
}

func (s *MemoryStore) MarkSeen(_ context.Context, monitorID, kind, entityID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tupleKey(monitorID, kind, entityID)
	if _, ok := s.seen[key]; ok {
		return false, nil
	}
	s.seen[key] = struct{}{}
	return true, nil
}

func (s *MemoryStore) TrackMatch(_ context.Context, monitorID, entityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tracked[monitorID] == nil {
		s.tracked[monitorID] = make(map[string]struct{})
	}
	s.tracked[monitorID][entityID] = struct{}{}
	return nil
}

func (s *MemoryStore) TrackedEntities(_ context.Context, monitorID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.tracked[monitorID]))
	for id := range s.tracked[monitorID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) ForgetMonitor(_ context.Context, monitorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tracked, monitorID)
	prefix := monitorID + ":"
	for key := range s.seen {
		if strings.HasPrefix(key, prefix) {
			delete(s.seen, key)
		}
	}
	for key := range s.cooldown {
		if strings.HasPrefix(key, prefix) {
			delete(s.cooldown, key)
		}
	}
	return nil
}
