package service

import (
	"context"
	"sync"
	"time"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
)

// MockSessionStore
type MockSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.ShopSession

	GetFn    func(ctx context.Context, shop string) (*domain.ShopSession, error)
	PutFn    func(ctx context.Context, session *domain.ShopSession) error
	DeleteFn func(ctx context.Context, shop string) error
}

func NewMockSessionStore(sessions ...*domain.ShopSession) *MockSessionStore {
	m := &MockSessionStore{sessions: make(map[string]*domain.ShopSession)}
	for _, s := range sessions {
		m.sessions[s.Shop] = s
	}
	return m
}

func (m *MockSessionStore) Get(ctx context.Context, shop string) (*domain.ShopSession, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, shop)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[shop]; ok {
		return s, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (m *MockSessionStore) Put(ctx context.Context, session *domain.ShopSession) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.Shop] = session
	return nil
}

func (m *MockSessionStore) Delete(ctx context.Context, shop string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, shop)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, shop)
	return nil
}

// MockSettingsStore
type MockSettingsStore struct {
	mu       sync.RWMutex
	settings map[string]*domain.ShopSettings

	GetFn func(ctx context.Context, shop string) (*domain.ShopSettings, error)
}

func NewMockSettingsStore() *MockSettingsStore {
	return &MockSettingsStore{settings: make(map[string]*domain.ShopSettings)}
}

func (m *MockSettingsStore) Get(ctx context.Context, shop string) (*domain.ShopSettings, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, shop)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.settings[shop]; ok {
		return s, nil
	}
	return nil, domain.ErrSettingsNotFound
}

func (m *MockSettingsStore) Put(ctx context.Context, settings *domain.ShopSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[settings.Shop] = settings
	return nil
}

func (m *MockSettingsStore) Delete(ctx context.Context, shop string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.settings, shop)
	return nil
}

// MockOrderLog
type MockOrderLog struct {
	mu      sync.Mutex
	Records []*domain.OrderRecord

	RecordFn func(ctx context.Context, record *domain.OrderRecord) error
}

func (m *MockOrderLog) Record(ctx context.Context, record *domain.OrderRecord) error {
	if m.RecordFn != nil {
		return m.RecordFn(ctx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, record)
	return nil
}

func (m *MockOrderLog) ListByShop(ctx context.Context, shop string, limit, offset int) ([]*domain.OrderRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.OrderRecord
	for _, r := range m.Records {
		if r.Shop == shop {
			out = append(out, r)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockOrderLog) DeleteByShop(ctx context.Context, shop string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.Records[:0]
	for _, r := range m.Records {
		if r.Shop != shop {
			kept = append(kept, r)
		}
	}
	m.Records = kept
	return nil
}

// MockOrderClient
type MockOrderClient struct {
	mu    sync.Mutex
	calls map[string]int

	CreateOrderFn        func(ctx context.Context, shop, token string, order *domain.NormalizedOrder) (*domain.VendorOrderResult, error)
	CreateDraftOrderFn   func(ctx context.Context, shop, token string, order *domain.NormalizedOrder) (string, error)
	CompleteDraftOrderFn func(ctx context.Context, shop, token, draftID string, paymentPending bool) (*domain.VendorOrderResult, error)
}

func (m *MockOrderClient) inc(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

func (m *MockOrderClient) GetCalls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// TotalCalls counts every vendor call regardless of method.
func (m *MockOrderClient) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

func (m *MockOrderClient) CreateOrder(ctx context.Context, shop, token string, order *domain.NormalizedOrder) (*domain.VendorOrderResult, error) {
	m.inc("CreateOrder")
	if m.CreateOrderFn != nil {
		return m.CreateOrderFn(ctx, shop, token, order)
	}
	return &domain.VendorOrderResult{OrderID: "gid://shopify/Order/1001", OrderName: "#1001"}, nil
}

func (m *MockOrderClient) CreateDraftOrder(ctx context.Context, shop, token string, order *domain.NormalizedOrder) (string, error) {
	m.inc("CreateDraftOrder")
	if m.CreateDraftOrderFn != nil {
		return m.CreateDraftOrderFn(ctx, shop, token, order)
	}
	return "gid://shopify/DraftOrder/1", nil
}

func (m *MockOrderClient) CompleteDraftOrder(ctx context.Context, shop, token, draftID string, paymentPending bool) (*domain.VendorOrderResult, error) {
	m.inc("CompleteDraftOrder")
	if m.CompleteDraftOrderFn != nil {
		return m.CompleteDraftOrderFn(ctx, shop, token, draftID, paymentPending)
	}
	return &domain.VendorOrderResult{OrderID: "gid://shopify/Order/1001", OrderName: "#1001"}, nil
}

// MockInstallClient
type MockInstallClient struct {
	ExchangeTokenFn      func(ctx context.Context, shop, code string) (*domain.AccessGrant, error)
	SubscribeUninstallFn func(ctx context.Context, shop, token, callbackURL string) error
}

func (m *MockInstallClient) AuthorizeURL(shop, state string) string {
	return "https://" + shop + "/admin/oauth/authorize?state=" + state
}

func (m *MockInstallClient) ExchangeToken(ctx context.Context, shop, code string) (*domain.AccessGrant, error) {
	if m.ExchangeTokenFn != nil {
		return m.ExchangeTokenFn(ctx, shop, code)
	}
	return &domain.AccessGrant{AccessToken: "shpat_test", Scope: "write_orders"}, nil
}

func (m *MockInstallClient) SubscribeUninstall(ctx context.Context, shop, token, callbackURL string) error {
	if m.SubscribeUninstallFn != nil {
		return m.SubscribeUninstallFn(ctx, shop, token, callbackURL)
	}
	return nil
}

// MockStateStore keeps states without expiry.
type MockStateStore struct {
	mu     sync.Mutex
	states map[string]string
}

func NewMockStateStore() *MockStateStore {
	return &MockStateStore{states: make(map[string]string)}
}

func (m *MockStateStore) Save(ctx context.Context, state, shop string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state] = shop
	return nil
}

func (m *MockStateStore) Consume(ctx context.Context, state string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	shop, ok := m.states[state]
	if !ok {
		return "", domain.ErrStateNotFound
	}
	delete(m.states, state)
	return shop, nil
}

// MockDedupeStore
type MockDedupeStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (m *MockDedupeStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

func (m *MockDedupeStore) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, key)
	return nil
}

// MockNotifier
type MockNotifier struct {
	mu     sync.Mutex
	Events []domain.OrderPlaced

	NotifyFn func(ctx context.Context, event domain.OrderPlaced) error
}

func (m *MockNotifier) Notify(ctx context.Context, event domain.OrderPlaced) error {
	m.mu.Lock()
	m.Events = append(m.Events, event)
	m.mu.Unlock()
	if m.NotifyFn != nil {
		return m.NotifyFn(ctx, event)
	}
	return nil
}
