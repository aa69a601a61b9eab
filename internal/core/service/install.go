package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
	"github.com/EAS-COD-System/EAS-COD/internal/core/ports"
)

const (
	stateTTL          = 10 * time.Minute
	webhookDedupeTTL  = 24 * time.Hour
	uninstallHookPath = "/webhooks/app-uninstalled"
)

type CallbackParams struct {
	Shop  string
	Code  string
	State string
}

// InstallService drives the OAuth install and the uninstall webhook.
type InstallService struct {
	client   ports.InstallClient
	sessions ports.SessionStore
	settings ports.SettingsStore
	orders   ports.OrderLog
	states   ports.StateStore
	dedupe   ports.DedupeStore
	appURL   string
	logger   *slog.Logger
	now      func() time.Time
}

func NewInstallService(
	client ports.InstallClient,
	sessions ports.SessionStore,
	settings ports.SettingsStore,
	orders ports.OrderLog,
	states ports.StateStore,
	dedupe ports.DedupeStore,
	appURL string,
	logger *slog.Logger,
) *InstallService {
	return &InstallService{
		client:   client,
		sessions: sessions,
		settings: settings,
		orders:   orders,
		states:   states,
		dedupe:   dedupe,
		appURL:   strings.TrimRight(appURL, "/"),
		logger:   logger,
		now:      time.Now,
	}
}

// Begin returns the consent URL the merchant is redirected to.
func (s *InstallService) Begin(ctx context.Context, shop string) (string, error) {
	shop, err := checkShop(shop)
	if err != nil {
		return "", err
	}

	state, err := newState()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	if err := s.states.Save(ctx, state, shop, stateTTL); err != nil {
		return "", fmt.Errorf("save state: %w", err)
	}

	return s.client.AuthorizeURL(shop, state), nil
}

// Complete finishes the install after the callback signature was verified.
func (s *InstallService) Complete(ctx context.Context, p CallbackParams) (*domain.ShopSession, error) {
	shop, err := checkShop(p.Shop)
	if err != nil {
		return nil, err
	}

	issuedFor, err := s.states.Consume(ctx, p.State)
	if err != nil {
		if errors.Is(err, domain.ErrStateNotFound) {
			return nil, domain.NewAuthError(domain.InvalidState, nil)
		}
		return nil, fmt.Errorf("consume state: %w", err)
	}
	if issuedFor != shop {
		return nil, domain.NewAuthError(domain.InvalidState, fmt.Errorf("state issued for %s", issuedFor))
	}

	grant, err := s.client.ExchangeToken(ctx, shop, p.Code)
	if err != nil {
		return nil, domain.NewAuthError(domain.ExchangeFailed, err)
	}

	session := &domain.ShopSession{
		Shop:        shop,
		AccessToken: grant.AccessToken,
		Scope:       grant.Scope,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	if err := s.client.SubscribeUninstall(ctx, shop, session.AccessToken, s.appURL+uninstallHookPath); err != nil {
		s.logger.Warn("failed to subscribe uninstall webhook", "shop", shop, "error", err)
	}

	s.logger.Info("shop installed", "shop", shop, "scope", session.Scope)
	return session, nil
}

// Uninstall removes everything stored for the shop. Repeated deliveries of
// the same webhook are ignored.
func (s *InstallService) Uninstall(ctx context.Context, shop, webhookID string) error {
	shop = domain.NormalizeShopDomain(shop)
	if shop == "" {
		return domain.NewAuthError(domain.MissingShopParam, nil)
	}

	dedupeKey := "webhook:" + webhookID
	if webhookID != "" {
		first, err := s.dedupe.Claim(ctx, dedupeKey, webhookDedupeTTL)
		if err != nil {
			return fmt.Errorf("claim webhook: %w", err)
		}
		if !first {
			s.logger.Info("duplicate uninstall webhook ignored", "shop", shop, "webhook_id", webhookID)
			return nil
		}
	}

	if err := errors.Join(
		s.sessions.Delete(ctx, shop),
		s.settings.Delete(ctx, shop),
		s.orders.DeleteByShop(ctx, shop),
	); err != nil {
		// Let the vendor's redelivery of this webhook retry the cleanup.
		if webhookID != "" {
			if relErr := s.dedupe.Release(context.WithoutCancel(ctx), dedupeKey); relErr != nil {
				s.logger.Error("failed to release webhook claim", "shop", shop, "webhook_id", webhookID, "error", relErr)
			}
		}
		return fmt.Errorf("uninstall %s: %w", shop, err)
	}

	s.logger.Info("shop uninstalled", "shop", shop)
	return nil
}

func checkShop(raw string) (string, error) {
	shop := domain.NormalizeShopDomain(raw)
	if shop == "" {
		return "", domain.NewAuthError(domain.MissingShopParam, nil)
	}
	if !domain.IsValidShopDomain(shop) {
		return "", domain.NewAuthError(domain.InvalidShop, nil)
	}
	return shop, nil
}

func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
