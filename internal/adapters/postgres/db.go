package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/EAS-COD-System/EAS-COD/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pingTimeout     = 5 * time.Second
	uniqueViolation = "23505"
)

// querier is the part of *pgxpool.Pool the repositories use.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB owns the pool shared by the session, settings and order repositories.
type DB struct {
	Pool   *pgxpool.Pool
	logger *slog.Logger
}

func Connect(ctx context.Context, cfg *config.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	pgxCfg, err := cfg.PgxConfig()
	if err != nil {
		return nil, fmt.Errorf("pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, fmt.Errorf("open pool for %s: %w", cfg.Name, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}

	logger.Info("cod store connected",
		"host", cfg.Host,
		"database", cfg.Name,
		"max_conns", pgxCfg.MaxConns,
	)
	return &DB{Pool: pool, logger: logger}, nil
}

func (db *DB) Close() {
	stat := db.Pool.Stat()
	db.logger.Info("closing cod store",
		"acquired_conns", stat.AcquiredConns(),
		"total_conns", stat.TotalConns(),
	)
	db.Pool.Close()
}

// IsUniqueViolation reports a duplicate key, e.g. an order record logged twice.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
