package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("COD_PRIMARY__ENV", "test")
	t.Setenv("COD_SHOPIFY__API_KEY", "key")
	t.Setenv("COD_SHOPIFY__API_SECRET", "secret")
	t.Setenv("COD_SHOPIFY__APP_URL", "https://cod.example.com")
	t.Setenv("COD_CHECKOUT__THANK_YOU_URL", "https://shop.example.com/thanks")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "rest", cfg.Shopify.OrderAPI)
	assert.Equal(t, "2025-01", cfg.Shopify.APIVersion)
	assert.Equal(t, 10*time.Second, cfg.Shopify.RequestTimeout)
	assert.Equal(t, []string{"read_products", "write_draft_orders", "read_orders", "write_orders"}, cfg.Shopify.ScopeList())
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Empty(t, cfg.Kafka.BrokerList())
}

func TestLoadConfig_FailsClosedOnMissingCredentials(t *testing.T) {
	setRequired(t)
	t.Setenv("COD_SHOPIFY__API_SECRET", "")

	_, err := LoadConfig()

	assert.Error(t, err)
}

func TestLoadConfig_RejectsUnknownOrderAPI(t *testing.T) {
	setRequired(t)
	t.Setenv("COD_SHOPIFY__ORDER_API", "soap")

	_, err := LoadConfig()

	assert.Error(t, err)
}

func TestLoadConfig_PostgresNeedsDatabaseAndKey(t *testing.T) {
	setRequired(t)
	t.Setenv("COD_STORE__DRIVER", "postgres")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token_key")

	t.Setenv("COD_DATABASE__HOST", "localhost")
	t.Setenv("COD_DATABASE__PORT", "5432")
	t.Setenv("COD_DATABASE__USER", "cod")
	t.Setenv("COD_DATABASE__NAME", "cod")
	t.Setenv("COD_DATABASE__SSL_MODE", "disable")
	t.Setenv("COD_SECURITY__TOKEN_KEY", "AQEBAQEBAQEBAQEBAQEBAQEBAQEBAQEBAQEBAQEBAQE=")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://cod:@localhost:5432/cod?sslmode=disable", cfg.Database.URL())
}

func TestLoadConfig_WriteTimeoutMustExceedVendorTimeout(t *testing.T) {
	setRequired(t)
	t.Setenv("COD_SERVER__WRITE_TIMEOUT", "10s")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write_timeout")

	t.Setenv("COD_SERVER__WRITE_TIMEOUT", "12s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Greater(t, cfg.Server.WriteTimeout, cfg.Shopify.RequestTimeout)
}

func TestKafkaConfig(t *testing.T) {
	setRequired(t)
	t.Setenv("COD_KAFKA__BROKERS", "k1:9092, k2:9092,")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.BrokerList())
	assert.Equal(t, "cod.orders", cfg.Kafka.Topic)
}

func TestLoggerLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LoggerConfig{Level: "DEBUG"}.level())
	assert.Equal(t, slog.LevelWarn, LoggerConfig{Level: "warning"}.level())
	assert.Equal(t, slog.LevelInfo, LoggerConfig{}.level())
}
