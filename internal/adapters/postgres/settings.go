package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
	"github.com/EAS-COD-System/EAS-COD/internal/core/ports"
	"github.com/jackc/pgx/v5"
)

type SettingsRepository struct {
	q querier
}

func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{q: db.Pool}
}

func (r *SettingsRepository) Get(ctx context.Context, shop string) (*domain.ShopSettings, error) {
	query := `SELECT shop, thank_you_url, sheets_webhook_url, updated_at FROM settings WHERE shop = $1`

	var s domain.ShopSettings
	err := r.q.QueryRow(ctx, query, shop).Scan(&s.Shop, &s.ThankYouURL, &s.SheetsWebhookURL, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepository) Put(ctx context.Context, s *domain.ShopSettings) error {
	query := `INSERT INTO settings (shop, thank_you_url, sheets_webhook_url, updated_at)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (shop) DO UPDATE SET
					thank_you_url = EXCLUDED.thank_you_url,
					sheets_webhook_url = EXCLUDED.sheets_webhook_url,
					updated_at = EXCLUDED.updated_at`

	if _, err := r.q.Exec(ctx, query, s.Shop, s.ThankYouURL, s.SheetsWebhookURL, s.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (r *SettingsRepository) Delete(ctx context.Context, shop string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM settings WHERE shop = $1`, shop); err != nil {
		return fmt.Errorf("failed to delete settings: %w", err)
	}
	return nil
}

var _ ports.SettingsStore = (*SettingsRepository)(nil)
