package ports

import (
	"context"
	"time"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
)

// SessionStore holds the installed shop credentials. Get returns
// domain.ErrSessionNotFound when the shop has no session.
type SessionStore interface {
	Get(ctx context.Context, shop string) (*domain.ShopSession, error)
	Put(ctx context.Context, session *domain.ShopSession) error
	Delete(ctx context.Context, shop string) error
}

type SettingsStore interface {
	Get(ctx context.Context, shop string) (*domain.ShopSettings, error)
	Put(ctx context.Context, settings *domain.ShopSettings) error
	Delete(ctx context.Context, shop string) error
}

// OrderLog is the local audit trail of orders accepted by Shopify.
type OrderLog interface {
	Record(ctx context.Context, record *domain.OrderRecord) error
	ListByShop(ctx context.Context, shop string, limit, offset int) ([]*domain.OrderRecord, error)
	DeleteByShop(ctx context.Context, shop string) error
}

// StateStore keeps one-time OAuth state nonces. Consume removes the nonce and
// returns domain.ErrStateNotFound if it was never saved or has expired.
type StateStore interface {
	Save(ctx context.Context, state, shop string, ttl time.Duration) error
	Consume(ctx context.Context, state string) (string, error)
}

// DedupeStore reports true the first time a key is claimed within ttl.
// Release drops a claim so the next delivery is processed again.
type DedupeStore interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
