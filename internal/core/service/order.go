package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
	"github.com/EAS-COD-System/EAS-COD/internal/core/ports"
)

type OrderMode string

const (
	OrderModeREST    OrderMode = "rest"
	OrderModeGraphQL OrderMode = "graphql"
)

const (
	defaultVendorTimeout     = 10 * time.Second
	defaultSideEffectTimeout = 10 * time.Second
)

type OrderServiceConfig struct {
	Mode          OrderMode
	ThankYouURL   string
	VendorTimeout time.Duration
	// SideEffectTimeout bounds the audit write and notification that follow
	// a placed order. They run after Submit has returned.
	SideEffectTimeout time.Duration
}

// OrderService turns a storefront submission into a pending-payment order.
type OrderService struct {
	sessions ports.SessionStore
	settings ports.SettingsStore
	orders   ports.OrderLog
	client   ports.OrderClient
	notifier ports.OrderNotifier
	cfg      OrderServiceConfig
	logger   *slog.Logger
	now      func() time.Time
	pending  sync.WaitGroup
}

func NewOrderService(
	sessions ports.SessionStore,
	settings ports.SettingsStore,
	orders ports.OrderLog,
	client ports.OrderClient,
	notifier ports.OrderNotifier,
	cfg OrderServiceConfig,
	logger *slog.Logger,
) *OrderService {
	if cfg.Mode == "" {
		cfg.Mode = OrderModeREST
	}
	if cfg.VendorTimeout <= 0 {
		cfg.VendorTimeout = defaultVendorTimeout
	}
	if cfg.SideEffectTimeout <= 0 {
		cfg.SideEffectTimeout = defaultSideEffectTimeout
	}
	return &OrderService{
		sessions: sessions,
		settings: settings,
		orders:   orders,
		client:   client,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit validates the submission and creates the order with the vendor.
// The vendor is called at most once per step and never retried.
func (s *OrderService) Submit(ctx context.Context, shop string, raw domain.OrderSubmission) (*domain.VendorOrderResult, error) {
	shop = domain.NormalizeShopDomain(shop)

	session, err := s.sessions.Get(ctx, shop)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.NewNotInstalledError(shop)
		}
		return nil, err
	}

	order, err := domain.Normalize(raw)
	if err != nil {
		return nil, &domain.SubmissionError{Kind: domain.Validation, Shop: shop, Err: err}
	}

	result, err := s.placeOrder(ctx, session, order)
	if err != nil {
		var vendorErr *domain.VendorError
		if errors.As(err, &vendorErr) {
			return nil, &domain.SubmissionError{Kind: domain.Vendor, Shop: shop, Err: vendorErr}
		}
		return nil, err
	}

	result.RedirectURL = s.redirectFor(ctx, shop, order, result)

	placed := *result
	s.pending.Add(1)
	go s.afterPlaced(context.WithoutCancel(ctx), shop, order, &placed)

	s.logger.Info("cod order created",
		"shop", shop,
		"order_id", result.OrderID,
		"order_name", result.OrderName,
		"country", order.Country,
	)

	return result, nil
}

func (s *OrderService) placeOrder(ctx context.Context, session *domain.ShopSession, order *domain.NormalizedOrder) (*domain.VendorOrderResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.VendorTimeout)
	defer cancel()

	if s.cfg.Mode == OrderModeGraphQL {
		draftID, err := s.client.CreateDraftOrder(ctx, session.Shop, session.AccessToken, order)
		if err != nil {
			return nil, err
		}
		return s.client.CompleteDraftOrder(ctx, session.Shop, session.AccessToken, draftID, true)
	}

	return s.client.CreateOrder(ctx, session.Shop, session.AccessToken, order)
}

// redirectFor picks the request override, then the shop setting, then the
// configured default.
func (s *OrderService) redirectFor(ctx context.Context, shop string, order *domain.NormalizedOrder, result *domain.VendorOrderResult) string {
	base := order.RedirectURL
	if base == "" {
		base = s.cfg.ThankYouURL
		settings, err := s.settings.Get(ctx, shop)
		switch {
		case err == nil && settings.ThankYouURL != "":
			base = settings.ThankYouURL
		case err != nil && !errors.Is(err, domain.ErrSettingsNotFound):
			s.logger.Warn("failed to load shop settings, using default redirect", "shop", shop, "error", err)
		}
	}

	redirect, err := domain.BuildRedirect(base, result.OrderName, order.Country)
	if err != nil {
		s.logger.Error("failed to build redirect", "shop", shop, "base", base, "error", err)
		return base
	}
	return redirect
}

// Wait blocks until every audit write and notification started by Submit has finished.
func (s *OrderService) Wait() {
	s.pending.Wait()
}

// afterPlaced runs detached from the request. The order already exists with the
// vendor by the time it starts.
func (s *OrderService) afterPlaced(ctx context.Context, shop string, order *domain.NormalizedOrder, result *domain.VendorOrderResult) {
	defer s.pending.Done()
	ctx, cancel := context.WithTimeout(ctx, s.cfg.SideEffectTimeout)
	defer cancel()

	now := s.now()

	if err := s.orders.Record(ctx, domain.NewOrderRecord(shop, order, result, now)); err != nil {
		s.logger.Error("failed to record order", "shop", shop, "order_id", result.OrderID, "error", err)
	}

	if err := s.notifier.Notify(ctx, domain.NewOrderPlaced(shop, order, result, now)); err != nil {
		s.logger.Warn("order notification failed", "shop", shop, "order_id", result.OrderID, "error", err)
	}
}
