package domain

import (
	"strings"
	"time"
)

// ShopSession is the offline access credential issued to the app for a shop.
type ShopSession struct {
	Shop        string
	AccessToken string
	Scope       string
	CreatedAt   time.Time
}

// AccessGrant is the result of exchanging an OAuth authorization code.
type AccessGrant struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

// ShopSettings holds per-shop overrides of the app defaults.
type ShopSettings struct {
	Shop             string
	ThankYouURL      string
	SheetsWebhookURL string
	UpdatedAt        time.Time
}

const shopSuffix = ".myshopify.com"

// NormalizeShopDomain lower-cases and trims a shop identifier.
func NormalizeShopDomain(shop string) string {
	return strings.ToLower(strings.TrimSpace(shop))
}

// IsValidShopDomain accepts only bare "<name>.myshopify.com" hosts.
func IsValidShopDomain(shop string) bool {
	if !strings.HasSuffix(shop, shopSuffix) {
		return false
	}
	name := strings.TrimSuffix(shop, shopSuffix)
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
		default:
			return false
		}
	}
	return true
}
