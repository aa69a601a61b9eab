package postgres

import (
	"context"
	"fmt"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
	"github.com/EAS-COD-System/EAS-COD/internal/core/ports"
	"github.com/shopspring/decimal"
)

type OrderRepository struct {
	q querier
}

func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{q: db.Pool}
}

func (r *OrderRepository) Record(ctx context.Context, o *domain.OrderRecord) error {
	query := `INSERT INTO orders (
				id, shop, vendor_order_id, order_name, country, currency, total, phone, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9)`

	_, err := r.q.Exec(ctx, query,
		o.ID,
		o.Shop,
		o.VendorOrderID,
		o.OrderName,
		o.Country.String(),
		o.Currency,
		o.Total.StringFixed(2),
		o.Phone,
		o.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("order record %s already exists: %w", o.ID, err)
		}
		return fmt.Errorf("failed to record order: %w", err)
	}
	return nil
}

// ListByShop returns the shop's orders newest first.
func (r *OrderRepository) ListByShop(ctx context.Context, shop string, limit, offset int) ([]*domain.OrderRecord, error) {
	query := `SELECT id, shop, vendor_order_id, order_name, country, currency, total::text, phone, created_at
				FROM orders
				WHERE shop = $1
				ORDER BY created_at DESC
				LIMIT $2 OFFSET $3`

	rows, err := r.q.Query(ctx, query, shop, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	records := []*domain.OrderRecord{}
	for rows.Next() {
		var (
			o       domain.OrderRecord
			country string
			total   string
		)
		if err := rows.Scan(&o.ID, &o.Shop, &o.VendorOrderID, &o.OrderName, &country, &o.Currency, &total, &o.Phone, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.Country = domain.CountryCode(country)
		if o.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("failed to parse order total %q: %w", total, err)
		}
		records = append(records, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return records, nil
}

func (r *OrderRepository) DeleteByShop(ctx context.Context, shop string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM orders WHERE shop = $1`, shop); err != nil {
		return fmt.Errorf("failed to delete orders: %w", err)
	}
	return nil
}

var _ ports.OrderLog = (*OrderRepository)(nil)
