package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
	"github.com/EAS-COD-System/EAS-COD/internal/core/ports"
	"github.com/jackc/pgx/v5"
)

// TokenSealer encrypts access tokens at rest.
type TokenSealer interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(sealed string) (string, error)
}

type SessionRepository struct {
	q      querier
	sealer TokenSealer
}

func NewSessionRepository(db *DB, sealer TokenSealer) *SessionRepository {
	return &SessionRepository{q: db.Pool, sealer: sealer}
}

func (r *SessionRepository) Get(ctx context.Context, shop string) (*domain.ShopSession, error) {
	query := `SELECT shop, access_token, scope, created_at FROM sessions WHERE shop = $1`

	var s domain.ShopSession
	var sealed string
	err := r.q.QueryRow(ctx, query, shop).Scan(&s.Shop, &sealed, &s.Scope, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	s.AccessToken, err = r.sealer.Decrypt(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token for %s: %w", shop, err)
	}
	return &s, nil
}

// Put replaces any previous session for the shop; a reinstall issues a new token.
func (r *SessionRepository) Put(ctx context.Context, s *domain.ShopSession) error {
	sealed, err := r.sealer.Encrypt(s.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}

	query := `INSERT INTO sessions (shop, access_token, scope, created_at)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (shop) DO UPDATE SET
					access_token = EXCLUDED.access_token,
					scope = EXCLUDED.scope,
					created_at = EXCLUDED.created_at`

	if _, err := r.q.Exec(ctx, query, s.Shop, sealed, s.Scope, s.CreatedAt); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, shop string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE shop = $1`, shop); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

var _ ports.SessionStore = (*SessionRepository)(nil)
