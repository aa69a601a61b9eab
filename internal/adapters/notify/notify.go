// Package notify publishes OrderPlaced events after an order was created.
// Every notifier is best-effort; callers log the returned error.
package notify

import (
	"context"
	"errors"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
	"github.com/EAS-COD-System/EAS-COD/internal/core/ports"
)

type Nop struct{}

func (Nop) Notify(ctx context.Context, event domain.OrderPlaced) error { return nil }

// Multi fans an event out to every notifier and joins their errors.
type Multi []ports.OrderNotifier

func (m Multi) Notify(ctx context.Context, event domain.OrderPlaced) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ ports.OrderNotifier = Nop{}
	_ ports.OrderNotifier = Multi(nil)
)
