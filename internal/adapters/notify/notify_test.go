package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/EAS-COD-System/EAS-COD/internal/adapters/memory"
	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const shop = "demo.myshopify.com"

func event() domain.OrderPlaced {
	return domain.OrderPlaced{Shop: shop, OrderID: "5001", OrderName: "#1001", Country: "KE", Total: "1000.00"}
}

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

func TestKafkaNotifier_KeysByShop(t *testing.T) {
	w := &mockWriter{}
	w.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 1 || string(msgs[0].Key) != shop {
			return false
		}
		var got domain.OrderPlaced
		return json.Unmarshal(msgs[0].Value, &got) == nil && got.OrderName == "#1001"
	})).Return(nil).Once()

	err := NewKafkaNotifier(w).Notify(context.Background(), event())

	require.NoError(t, err)
	w.AssertExpectations(t)
}

func TestKafkaNotifier_WriteError(t *testing.T) {
	w := &mockWriter{}
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("leader not available"))

	err := NewKafkaNotifier(w).Notify(context.Background(), event())

	assert.ErrorContains(t, err, "leader not available")
}

func TestNewKafkaWriter_FlushesWithoutWaitingForBatch(t *testing.T) {
	w := NewKafkaWriter([]string{"localhost:9092"}, "cod.orders")

	assert.Equal(t, "cod.orders", w.Topic)
	assert.Equal(t, kafka.RequireOne, w.RequiredAcks)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
	assert.Greater(t, w.BatchTimeout, time.Duration(0))
	assert.Less(t, w.BatchTimeout, 100*time.Millisecond)
}

func TestWebhookNotifier_PostsToShopURL(t *testing.T) {
	received := make(chan domain.OrderPlaced, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got domain.OrderPlaced
		_ = json.NewDecoder(r.Body).Decode(&got)
		received <- got
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	settings := memory.NewSettingsStore()
	_ = settings.Put(context.Background(), &domain.ShopSettings{Shop: shop, SheetsWebhookURL: srv.URL})

	err := NewWebhookNotifier(settings, time.Second).Notify(context.Background(), event())

	require.NoError(t, err)
	assert.Equal(t, "#1001", (<-received).OrderName)
}

func TestWebhookNotifier_SkipsWithoutURL(t *testing.T) {
	settings := memory.NewSettingsStore()

	assert.NoError(t, NewWebhookNotifier(settings, time.Second).Notify(context.Background(), event()))

	_ = settings.Put(context.Background(), &domain.ShopSettings{Shop: shop})
	assert.NoError(t, NewWebhookNotifier(settings, time.Second).Notify(context.Background(), event()))
}

func TestWebhookNotifier_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	settings := memory.NewSettingsStore()
	_ = settings.Put(context.Background(), &domain.ShopSettings{Shop: shop, SheetsWebhookURL: srv.URL})

	err := NewWebhookNotifier(settings, time.Second).Notify(context.Background(), event())
	assert.ErrorContains(t, err, "500")
}

type failingNotifier struct{ err error }

func (f failingNotifier) Notify(ctx context.Context, e domain.OrderPlaced) error { return f.err }

func TestMulti_JoinsErrors(t *testing.T) {
	errA, errB := errors.New("a"), errors.New("b")
	m := Multi{Nop{}, failingNotifier{errA}, failingNotifier{errB}}

	err := m.Notify(context.Background(), event())

	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.NoError(t, Multi{Nop{}}.Notify(context.Background(), event()))
}
