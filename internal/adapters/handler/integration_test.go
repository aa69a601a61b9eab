package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/EAS-COD-System/EAS-COD/internal/adapters/cache"
	"github.com/EAS-COD-System/EAS-COD/internal/adapters/handler"
	"github.com/EAS-COD-System/EAS-COD/internal/adapters/notify"
	"github.com/EAS-COD-System/EAS-COD/internal/adapters/postgres"
	"github.com/EAS-COD-System/EAS-COD/internal/adapters/shopify"
	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
	"github.com/EAS-COD-System/EAS-COD/internal/core/service"
	"github.com/EAS-COD-System/EAS-COD/internal/security"
	"github.com/EAS-COD-System/EAS-COD/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPostgresBackedSubmissions runs concurrent submissions through the HTTP
// layer against a real database and checks every order lands in the audit log.
func TestPostgresBackedSubmissions(t *testing.T) {
	testDB := testhelpers.SetupTestDatabase(t)
	defer testDB.Cleanup(t)

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var vendorCalls int32
	vendor := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&vendorCalls, 1)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"order": map[string]any{"id": 5000 + n, "name": fmt.Sprintf("#%d", 1000+n)},
		})
	}))
	defer vendor.Close()

	cipher, err := security.NewTokenCipher(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)
	sessions := postgres.NewSessionRepository(testDB.DB, cipher)
	settings := postgres.NewSettingsRepository(testDB.DB)
	orders := postgres.NewOrderRepository(testDB.DB)

	require.NoError(t, sessions.Put(ctx, &domain.ShopSession{Shop: "demo.myshopify.com", AccessToken: "shpat_demo", CreatedAt: time.Now()}))

	client := shopify.NewClient(shopify.Config{APIVersion: "2025-01", AdminBaseURL: vendor.URL, Timeout: 2 * time.Second})
	orderSvc := service.NewOrderService(sessions, settings, orders, client, notify.NewWebhookNotifier(settings, time.Second), service.OrderServiceConfig{
		ThankYouURL: "https://shop.example.com/thanks",
	}, logger)
	states := cache.NewMemoryStore()

	h := handler.NewCODHandler(handler.Deps{
		Orders:   orderSvc,
		Install:  service.NewInstallService(client, sessions, settings, orders, states, states, "https://cod.example.com", logger),
		Settings: service.NewSettingsService(settings),
		Query:    service.NewOrderQueryService(orders),
		Logger:   logger,
	})
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	const submissions = 5
	body, _ := json.Marshal(map[string]any{
		"variant_id": "123",
		"quantity":   1,
		"full_name":  "Jane Doe",
		"phone":      "0712345678",
		"address":    "Main St",
		"country":    "kenya",
		"price":      "250",
		"currency":   "KES",
	})

	var wg sync.WaitGroup
	codes := make([]int, submissions)
	for i := 0; i < submissions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/cod/create-order?shop=demo.myshopify.com", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()
	orderSvc.Wait()

	for _, code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}
	assert.Equal(t, int32(submissions), atomic.LoadInt32(&vendorCalls))

	logged, err := orders.ListByShop(ctx, "demo.myshopify.com", 50, 0)
	require.NoError(t, err)
	assert.Len(t, logged, submissions)
	for _, rec := range logged {
		assert.Equal(t, "250.00", rec.Total.StringFixed(2))
		assert.Equal(t, domain.CountryCode("KE"), rec.Country)
	}
}
