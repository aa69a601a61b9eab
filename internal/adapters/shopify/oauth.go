package shopify

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
)

const callbackPath = "/auth/callback"

// AuthorizeURL builds the consent page URL for shop.
func (c *Client) AuthorizeURL(shop, state string) string {
	q := url.Values{}
	q.Set("client_id", c.cfg.APIKey)
	q.Set("scope", strings.Join(c.cfg.Scopes, ","))
	q.Set("redirect_uri", c.cfg.AppURL+callbackPath)
	q.Set("state", state)
	return c.baseURL(shop) + "/admin/oauth/authorize?" + q.Encode()
}

type accessTokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Code         string `json:"code"`
}

// ExchangeToken trades a one-time authorization code for an offline token.
func (c *Client) ExchangeToken(ctx context.Context, shop, code string) (*domain.AccessGrant, error) {
	grant, err := doJSON[accessTokenRequest, domain.AccessGrant](c, ctx, http.MethodPost, c.baseURL(shop)+"/admin/oauth/access_token", "", accessTokenRequest{
		ClientID:     c.cfg.APIKey,
		ClientSecret: c.cfg.APISecret,
		Code:         code,
	})
	if err != nil {
		return nil, err
	}
	if grant.AccessToken == "" {
		return nil, errors.New("token response missing access_token")
	}
	return grant, nil
}
