package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
)

const envPrefix = "COD_"

type Config struct {
	Primary  Primary        `koanf:"primary"`
	Server   ServerConfig   `koanf:"server"`
	Shopify  ShopifyConfig  `koanf:"shopify"`
	Checkout CheckoutConfig `koanf:"checkout"`
	Store    StoreConfig    `koanf:"store"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Cache    CacheConfig    `koanf:"cache"`
	Redis    RedisConfig    `koanf:"redis"`
	Kafka    KafkaConfig    `koanf:"kafka"`
	Logger   LoggerConfig   `koanf:"logger"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port         string        `koanf:"port" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"required"`
}

type ShopifyConfig struct {
	APIKey         string        `koanf:"api_key" validate:"required"`
	APISecret      string        `koanf:"api_secret" validate:"required"`
	AppURL         string        `koanf:"app_url" validate:"required,url"`
	Scopes         string        `koanf:"scopes" validate:"required"`
	APIVersion     string        `koanf:"api_version" validate:"required"`
	OrderAPI       string        `koanf:"order_api" validate:"required,oneof=rest graphql"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"required"`
	AdminBaseURL   string        `koanf:"admin_base_url" validate:"omitempty,url"`
}

// ScopeList splits the comma-separated scopes, dropping blanks.
func (c ShopifyConfig) ScopeList() []string {
	var out []string
	for _, s := range strings.Split(c.Scopes, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type CheckoutConfig struct {
	ThankYouURL string `koanf:"thank_you_url" validate:"required,url"`
}

type StoreConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=memory postgres"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type SecurityConfig struct {
	// TokenKey is a base64 encoded 32-byte AES key for access tokens at rest.
	TokenKey string `koanf:"token_key"`
}

type CacheConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=memory redis"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

type KafkaConfig struct {
	Brokers string `koanf:"brokers"`
	Topic   string `koanf:"topic"`
}

// BrokerList returns the configured brokers; empty means the sink is disabled.
func (c KafkaConfig) BrokerList() []string {
	var out []string
	for _, b := range strings.Split(c.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

type LoggerConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"omitempty,oneof=json text"`
}

func defaults() map[string]any {
	return map[string]any{
		"server.port":             "3000",
		"server.read_timeout":     "15s",
		"server.write_timeout":    "15s",
		"server.idle_timeout":     "60s",
		"shopify.scopes":          "read_products,write_draft_orders,read_orders,write_orders",
		"shopify.api_version":     "2025-01",
		"shopify.order_api":       "rest",
		"shopify.request_timeout": "10s",
		"store.driver":            "memory",
		"cache.driver":            "memory",
		"kafka.topic":             "cod.orders",
		"logger.level":            "info",
		"logger.format":           "json",
	}
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		logger.Error("failed to load defaults", "error", err)
		return nil, err
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, envPrefix)),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	if err := mainConfig.validateDrivers(); err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}

// validateDrivers checks the settings that only matter for the selected backends.
func (c *Config) validateDrivers() error {
	var errs []error

	if c.Store.Driver == "postgres" {
		d := c.Database
		if d.Host == "" || d.Port == 0 || d.User == "" || d.Name == "" {
			errs = append(errs, errors.New("database host, port, user and name are required for the postgres store"))
		}
		if d.SSLMode == "" {
			errs = append(errs, errors.New("database ssl_mode is required for the postgres store"))
		}
		if c.Security.TokenKey == "" {
			errs = append(errs, errors.New("security token_key is required for the postgres store"))
		}
	}

	if c.Cache.Driver == "redis" && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis addr is required for the redis cache"))
	}

	// The request deadline must leave room for a full vendor call.
	if c.Server.WriteTimeout <= c.Shopify.RequestTimeout {
		errs = append(errs, fmt.Errorf("server write_timeout (%s) must exceed shopify request_timeout (%s)", c.Server.WriteTimeout, c.Shopify.RequestTimeout))
	}

	if len(c.Kafka.BrokerList()) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, fmt.Errorf("kafka topic is required when brokers are set"))
	}

	return errors.Join(errs...)
}
