package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shop = "demo.myshopify.com"

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	_, err := store.Get(ctx, shop)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	in := &domain.ShopSession{Shop: shop, AccessToken: "shpat_1"}
	require.NoError(t, store.Put(ctx, in))
	in.AccessToken = "mutated after put"

	got, err := store.Get(ctx, shop)
	require.NoError(t, err)
	assert.Equal(t, "shpat_1", got.AccessToken)

	require.NoError(t, store.Delete(ctx, shop))
	_, err = store.Get(ctx, shop)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = store.Put(ctx, &domain.ShopSession{Shop: fmt.Sprintf("s%d.myshopify.com", i%5), AccessToken: "t"})
		}(i)
		go func(i int) {
			defer wg.Done()
			_, _ = store.Get(ctx, fmt.Sprintf("s%d.myshopify.com", i%5))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 5; i++ {
		_, err := store.Get(ctx, fmt.Sprintf("s%d.myshopify.com", i))
		assert.NoError(t, err)
	}
}

func TestSettingsStore(t *testing.T) {
	ctx := context.Background()
	store := NewSettingsStore()

	_, err := store.Get(ctx, shop)
	assert.ErrorIs(t, err, domain.ErrSettingsNotFound)

	require.NoError(t, store.Put(ctx, &domain.ShopSettings{Shop: shop, ThankYouURL: "https://x.example.com"}))
	got, err := store.Get(ctx, shop)
	require.NoError(t, err)
	assert.Equal(t, "https://x.example.com", got.ThankYouURL)

	require.NoError(t, store.Delete(ctx, shop))
	_, err = store.Get(ctx, shop)
	assert.ErrorIs(t, err, domain.ErrSettingsNotFound)
}

func TestOrderLog_NewestFirstWithPaging(t *testing.T) {
	ctx := context.Background()
	log := NewOrderLog()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, log.Record(ctx, &domain.OrderRecord{
			Shop:      shop,
			OrderName: fmt.Sprintf("#%d", 1000+i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, log.Record(ctx, &domain.OrderRecord{Shop: "other.myshopify.com", OrderName: "#1"}))

	page, err := log.ListByShop(ctx, shop, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "#1003", page[0].OrderName)
	assert.Equal(t, "#1002", page[1].OrderName)

	empty, err := log.ListByShop(ctx, shop, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, log.DeleteByShop(ctx, shop))
	all, _ := log.ListByShop(ctx, shop, 10, 0)
	assert.Empty(t, all)
	others, _ := log.ListByShop(ctx, "other.myshopify.com", 10, 0)
	assert.Len(t, others, 1)
}
