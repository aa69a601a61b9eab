package ports

import (
	"context"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
)

// OrderClient creates orders in the shop's Admin API. Implementations never retry.
type OrderClient interface {
	CreateOrder(ctx context.Context, shop, token string, order *domain.NormalizedOrder) (*domain.VendorOrderResult, error)
	CreateDraftOrder(ctx context.Context, shop, token string, order *domain.NormalizedOrder) (string, error)
	CompleteDraftOrder(ctx context.Context, shop, token, draftID string, paymentPending bool) (*domain.VendorOrderResult, error)
}

type InstallClient interface {
	AuthorizeURL(shop, state string) string
	ExchangeToken(ctx context.Context, shop, code string) (*domain.AccessGrant, error)
	SubscribeUninstall(ctx context.Context, shop, token, callbackURL string) error
}

type OrderNotifier interface {
	Notify(ctx context.Context, event domain.OrderPlaced) error
}
