package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
	"github.com/EAS-COD-System/EAS-COD/internal/core/ports"
)

// WebhookNotifier posts the event to the shop's configured sheets webhook,
// typically a Google Apps Script that appends a row.
type WebhookNotifier struct {
	settings   ports.SettingsStore
	httpClient *http.Client
}

func NewWebhookNotifier(settings ports.SettingsStore, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		settings:   settings,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, event domain.OrderPlaced) error {
	settings, err := n.settings.Get(ctx, event.Shop)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			return nil
		}
		return fmt.Errorf("load settings: %w", err)
	}
	if settings.SheetsWebhookURL == "" {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshalling json: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, settings.SheetsWebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sheets webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sheets webhook returned status %d", resp.StatusCode)
	}
	return nil
}
