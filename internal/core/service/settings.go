package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
	"github.com/EAS-COD-System/EAS-COD/internal/core/ports"
)

type SettingsInput struct {
	ThankYouURL      string
	SheetsWebhookURL string
}

type SettingsService struct {
	settings ports.SettingsStore
	now      func() time.Time
}

func NewSettingsService(settings ports.SettingsStore) *SettingsService {
	return &SettingsService{settings: settings, now: time.Now}
}

// Get returns the shop's settings, or empty settings when none were saved.
func (s *SettingsService) Get(ctx context.Context, shop string) (*domain.ShopSettings, error) {
	shop = domain.NormalizeShopDomain(shop)
	settings, err := s.settings.Get(ctx, shop)
	if errors.Is(err, domain.ErrSettingsNotFound) {
		return &domain.ShopSettings{Shop: shop}, nil
	}
	return settings, err
}

func (s *SettingsService) Update(ctx context.Context, shop string, in SettingsInput) (*domain.ShopSettings, error) {
	shop = domain.NormalizeShopDomain(shop)

	thankYou := strings.TrimSpace(in.ThankYouURL)
	if thankYou != "" && !isHTTPURL(thankYou) {
		return nil, &domain.ValidationError{Kind: domain.InvalidRedirect, Field: "thank_you_url", Value: thankYou}
	}
	sheets := strings.TrimSpace(in.SheetsWebhookURL)
	if sheets != "" && !isHTTPURL(sheets) {
		return nil, &domain.ValidationError{Kind: domain.InvalidRedirect, Field: "sheets_webhook_url", Value: sheets}
	}

	settings := &domain.ShopSettings{
		Shop:             shop,
		ThankYouURL:      thankYou,
		SheetsWebhookURL: sheets,
		UpdatedAt:        s.now().UTC(),
	}
	if err := s.settings.Put(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
