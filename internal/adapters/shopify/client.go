package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/EAS-COD-System/EAS-COD/internal/config"
	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
)

const maxResponseBytes = 1 << 20

type Config struct {
	APIKey     string
	APISecret  string
	AppURL     string
	Scopes     []string
	APIVersion string
	// AdminBaseURL replaces https://{shop} when set.
	AdminBaseURL string
	Timeout      time.Duration
}

func ConfigFrom(cfg config.ShopifyConfig) Config {
	return Config{
		APIKey:       cfg.APIKey,
		APISecret:    cfg.APISecret,
		AppURL:       strings.TrimRight(cfg.AppURL, "/"),
		Scopes:       cfg.ScopeList(),
		APIVersion:   cfg.APIVersion,
		AdminBaseURL: strings.TrimRight(cfg.AdminBaseURL, "/"),
		Timeout:      cfg.RequestTimeout,
	}
}

// Client talks to a shop's Admin API. It never retries: order creation has
// no idempotency key and OAuth codes are single-use.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *Client) baseURL(shop string) string {
	if c.cfg.AdminBaseURL != "" {
		return c.cfg.AdminBaseURL
	}
	return "https://" + shop
}

func (c *Client) apiURL(shop, resource string) string {
	return fmt.Sprintf("%s/admin/api/%s/%s", c.baseURL(shop), c.cfg.APIVersion, resource)
}

// doJSON sends req as JSON and decodes a 2xx body into Resp. Any other status
// becomes a *domain.VendorError carrying the body verbatim.
func doJSON[Req any, Resp any](c *Client, ctx context.Context, method, url, token string, req Req) (*Resp, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("error marshalling json: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if token != "" {
		httpReq.Header.Set("X-Shopify-Access-Token", token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newStatusError(resp.StatusCode, body)
	}

	var out Resp
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}

	return &out, nil
}

// errorBody covers the REST shapes {"errors": ...} and {"error": "..."}.
type errorBody struct {
	Errors           json.RawMessage `json:"errors"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

func newStatusError(status int, body []byte) *domain.VendorError {
	vendorErr := &domain.VendorError{
		StatusCode: status,
		Message:    http.StatusText(status),
	}

	var eb errorBody
	if json.Unmarshal(body, &eb) != nil {
		if text := strings.TrimSpace(string(body)); text != "" {
			vendorErr.Message = text
		}
		return vendorErr
	}

	switch {
	case len(eb.Errors) > 0:
		vendorErr.Details = eb.Errors
		var msg string
		if json.Unmarshal(eb.Errors, &msg) == nil && msg != "" {
			vendorErr.Message = msg
		}
	case eb.Error != "":
		vendorErr.Message = eb.Error
		if eb.ErrorDescription != "" {
			vendorErr.Message += ": " + eb.ErrorDescription
		}
		vendorErr.Details = json.RawMessage(body)
	default:
		vendorErr.Details = json.RawMessage(body)
	}
	return vendorErr
}
