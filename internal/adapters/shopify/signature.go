package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignProxyQuery computes the app proxy signature: sorted key=value pairs
// concatenated without a separator, "signature" excluded.
func SignProxyQuery(query url.Values, secret string) string {
	return hmacHex(canonicalQuery(query, "", "signature"), secret)
}

// VerifyProxySignature checks the "signature" parameter of an app proxy request.
func VerifyProxySignature(query url.Values, secret string) bool {
	provided := query.Get("signature")
	if provided == "" || secret == "" {
		return false
	}
	return hmac.Equal([]byte(SignProxyQuery(query, secret)), []byte(strings.ToLower(provided)))
}

// SignOAuthQuery computes the hmac Shopify attaches to OAuth redirects:
// sorted key=value pairs joined by "&", "hmac" and "signature" excluded.
func SignOAuthQuery(query url.Values, secret string) string {
	return hmacHex(canonicalQuery(query, "&", "hmac", "signature"), secret)
}

func VerifyOAuthHMAC(query url.Values, secret string) bool {
	provided := query.Get("hmac")
	if provided == "" || secret == "" {
		return false
	}
	return hmac.Equal([]byte(SignOAuthQuery(query, secret)), []byte(strings.ToLower(provided)))
}

func SignWebhook(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookHMAC checks the X-Shopify-Hmac-Sha256 header against the raw body.
func VerifyWebhookHMAC(body []byte, header, secret string) bool {
	if header == "" || secret == "" {
		return false
	}
	return hmac.Equal([]byte(SignWebhook(body, secret)), []byte(header))
}

func canonicalQuery(query url.Values, sep string, exclude ...string) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		skip := false
		for _, e := range exclude {
			if k == e {
				skip = true
				break
			}
		}
		if !skip {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strings.Join(query[k], ","))
	}
	return strings.Join(parts, sep)
}

func hmacHex(msg, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}

var ErrInvalidSessionToken = errors.New("invalid session token")

// SessionClaims are the claims of an App Bridge session token.
type SessionClaims struct {
	Dest string `json:"dest"`
	jwt.RegisteredClaims
}

// VerifySessionToken validates an embedded-app session token and returns the
// shop domain it was issued for.
func VerifySessionToken(token, apiKey, secret string) (string, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(apiKey),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSessionToken, err)
	}

	dest, err := url.Parse(claims.Dest)
	if err != nil || dest.Host == "" {
		return "", fmt.Errorf("%w: bad dest claim", ErrInvalidSessionToken)
	}
	if claims.Issuer != "" {
		iss, err := url.Parse(claims.Issuer)
		if err != nil || iss.Host != dest.Host {
			return "", fmt.Errorf("%w: issuer does not match dest", ErrInvalidSessionToken)
		}
	}
	return strings.ToLower(dest.Host), nil
}
