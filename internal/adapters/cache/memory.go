package cache

import (
	"context"
	"sync"
	"time"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
	"github.com/EAS-COD-System/EAS-COD/internal/core/ports"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is a single-process StateStore and DedupeStore. Expired
// entries are dropped lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(ctx context.Context, state, shop string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[stateKeyPrefix+state] = entry{value: shop, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Consume(ctx context.Context, state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := stateKeyPrefix + state
	e, ok := s.entries[key]
	delete(s.entries, key)
	if !ok || !s.now().Before(e.expiresAt) {
		return "", domain.ErrStateNotFound
	}
	return e.value, nil
}

func (s *MemoryStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key = dedupeKeyPrefix + key
	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expiresAt) {
		return false, nil
	}
	s.entries[key] = entry{value: "1", expiresAt: now.Add(ttl)}
	return true, nil
}

func (s *MemoryStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, dedupeKeyPrefix+key)
	return nil
}

var (
	_ ports.StateStore  = (*MemoryStore)(nil)
	_ ports.DedupeStore = (*MemoryStore)(nil)
)

// Prune drops every expired entry and reports how many were removed.
func (s *MemoryStore) Prune(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
