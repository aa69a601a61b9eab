package service

import (
	"context"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
	"github.com/EAS-COD-System/EAS-COD/internal/core/ports"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type OrderQueryService struct {
	orders ports.OrderLog
}

func NewOrderQueryService(orders ports.OrderLog) *OrderQueryService {
	return &OrderQueryService{orders: orders}
}

// List returns the shop's recorded orders, newest first.
func (s *OrderQueryService) List(ctx context.Context, shop string, limit, offset int) ([]*domain.OrderRecord, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.orders.ListByShop(ctx, domain.NormalizeShopDomain(shop), limit, offset)
}
