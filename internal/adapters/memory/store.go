// Package memory holds process-local stores. Data is lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
	"github.com/EAS-COD-System/EAS-COD/internal/core/ports"
)

type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.ShopSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domain.ShopSession)}
}

func (s *SessionStore) Get(ctx context.Context, shop string) (*domain.ShopSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[shop]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) Put(ctx context.Context, session *domain.ShopSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Shop] = *session
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, shop string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, shop)
	return nil
}

type SettingsStore struct {
	mu       sync.RWMutex
	settings map[string]domain.ShopSettings
}

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{settings: make(map[string]domain.ShopSettings)}
}

func (s *SettingsStore) Get(ctx context.Context, shop string) (*domain.ShopSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	settings, ok := s.settings[shop]
	if !ok {
		return nil, domain.ErrSettingsNotFound
	}
	return &settings, nil
}

func (s *SettingsStore) Put(ctx context.Context, settings *domain.ShopSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[settings.Shop] = *settings
	return nil
}

func (s *SettingsStore) Delete(ctx context.Context, shop string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.settings, shop)
	return nil
}

// OrderLog keeps records per shop in insertion order.
type OrderLog struct {
	mu     sync.RWMutex
	byShop map[string][]domain.OrderRecord
}

func NewOrderLog() *OrderLog {
	return &OrderLog{byShop: make(map[string][]domain.OrderRecord)}
}

func (l *OrderLog) Record(ctx context.Context, record *domain.OrderRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.byShop[record.Shop] = append(l.byShop[record.Shop], *record)
	return nil
}

func (l *OrderLog) ListByShop(ctx context.Context, shop string, limit, offset int) ([]*domain.OrderRecord, error) {
	l.mu.RLock()
	records := make([]domain.OrderRecord, len(l.byShop[shop]))
	copy(records, l.byShop[shop])
	l.mu.RUnlock()

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if offset >= len(records) {
		return []*domain.OrderRecord{}, nil
	}
	end := len(records)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := make([]*domain.OrderRecord, 0, end-offset)
	for i := offset; i < end; i++ {
		out = append(out, &records[i])
	}
	return out, nil
}

func (l *OrderLog) DeleteByShop(ctx context.Context, shop string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.byShop, shop)
	return nil
}

var (
	_ ports.SessionStore  = (*SessionStore)(nil)
	_ ports.SettingsStore = (*SettingsStore)(nil)
	_ ports.OrderLog      = (*OrderLog)(nil)
)
