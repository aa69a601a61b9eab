package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EAS-COD-System/EAS-COD/internal/adapters/cache"
	"github.com/EAS-COD-System/EAS-COD/internal/adapters/handler"
	"github.com/EAS-COD-System/EAS-COD/internal/adapters/handler/middleware"
	"github.com/EAS-COD-System/EAS-COD/internal/adapters/memory"
	"github.com/EAS-COD-System/EAS-COD/internal/adapters/notify"
	"github.com/EAS-COD-System/EAS-COD/internal/adapters/postgres"
	"github.com/EAS-COD-System/EAS-COD/internal/adapters/shopify"
	"github.com/EAS-COD-System/EAS-COD/internal/config"
	"github.com/EAS-COD-System/EAS-COD/internal/core/ports"
	"github.com/EAS-COD-System/EAS-COD/internal/core/service"
	"github.com/EAS-COD-System/EAS-COD/internal/metrics"
	"github.com/EAS-COD-System/EAS-COD/internal/security"
	"github.com/EAS-COD-System/EAS-COD/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type stores struct {
	sessions ports.SessionStore
	settings ports.SettingsStore
	orders   ports.OrderLog
	close    func()
}

type caches struct {
	states ports.StateStore
	dedupe ports.DedupeStore
	// pruner is set for the in-process cache, which has no server-side expiry.
	pruner worker.Pruner
	close  func()
}

const sweepInterval = 5 * time.Minute

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting cod service",
		"env", cfg.Primary.Env,
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
		"cache", cfg.Cache.Driver,
		"order_api", cfg.Shopify.OrderAPI,
	)

	ctx := context.Background()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.close()

	ch, err := openCaches(ctx, cfg)
	if err != nil {
		logger.Error("failed to open cache", "error", err)
		os.Exit(1)
	}
	defer ch.close()

	notifiers := notify.Multi{notify.NewWebhookNotifier(st.settings, cfg.Shopify.RequestTimeout)}
	if brokers := cfg.Kafka.BrokerList(); len(brokers) > 0 {
		kafkaNotifier := notify.NewKafkaNotifier(notify.NewKafkaWriter(brokers, cfg.Kafka.Topic))
		defer func() {
			if err := kafkaNotifier.Close(); err != nil {
				logger.Error("failed to close kafka writer", "error", err)
			}
		}()
		notifiers = append(notifiers, kafkaNotifier)
		logger.Info("publishing order events", "brokers", brokers, "topic", cfg.Kafka.Topic)
	}

	shopifyClient := shopify.NewClient(shopify.ConfigFrom(cfg.Shopify))

	orderService := service.NewOrderService(st.sessions, st.settings, st.orders, shopifyClient, notifiers, service.OrderServiceConfig{
		Mode:              service.OrderMode(cfg.Shopify.OrderAPI),
		ThankYouURL:       cfg.Checkout.ThankYouURL,
		VendorTimeout:     cfg.Shopify.RequestTimeout,
		SideEffectTimeout: cfg.Shopify.RequestTimeout,
	}, logger)
	installService := service.NewInstallService(shopifyClient, st.sessions, st.settings, st.orders, ch.states, ch.dedupe, cfg.Shopify.AppURL, logger)
	settingsService := service.NewSettingsService(st.settings)
	queryService := service.NewOrderQueryService(st.orders)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(registry)

	apiDoc, err := handler.LoadAPIDoc(ctx)
	if err != nil {
		logger.Error("invalid api document", "error", err)
		os.Exit(1)
	}

	h := handler.NewCODHandler(handler.Deps{
		Orders:   orderService,
		Install:  installService,
		Settings: settingsService,
		Query:    queryService,
		Credentials: handler.Credentials{
			APIKey:    cfg.Shopify.APIKey,
			APISecret: cfg.Shopify.APISecret,
		},
		Metrics: serverMetrics,
		APIDoc:  apiDoc,
		Logger:  logger,
	})

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	router := middleware.Metrics(serverMetrics)(mux)
	router = middleware.Recovery(logger)(router)
	router = middleware.Timeout(cfg.Server.WriteTimeout)(router)
	router = middleware.Logging(logger)(router)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout + time.Second,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	if ch.pruner != nil {
		go worker.NewSweepWorker(ch.pruner, sweepInterval, logger).Start(workerCtx)
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	// Drain pending order notifications before the kafka writer closes.
	orderService.Wait()

	logger.Info("server exited")
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.Store.Driver != "postgres" {
		return &stores{
			sessions: memory.NewSessionStore(),
			settings: memory.NewSettingsStore(),
			orders:   memory.NewOrderLog(),
			close:    func() {},
		}, nil
	}

	key, err := security.LoadKeyFromBase64(cfg.Security.TokenKey)
	if err != nil {
		return nil, err
	}
	cipher, err := security.NewTokenCipher(key)
	if err != nil {
		return nil, err
	}

	if err := postgres.Migrate(&cfg.Database, logger); err != nil {
		return nil, err
	}
	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	return &stores{
		sessions: postgres.NewSessionRepository(db, cipher),
		settings: postgres.NewSettingsRepository(db),
		orders:   postgres.NewOrderRepository(db),
		close:    db.Close,
	}, nil
}

func openCaches(ctx context.Context, cfg *config.Config) (*caches, error) {
	if cfg.Cache.Driver != "redis" {
		store := cache.NewMemoryStore()
		return &caches{states: store, dedupe: store, pruner: store, close: func() {}}, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	store := cache.NewRedisStore(client)
	return &caches{
		states: store,
		dedupe: store,
		close:  func() { _ = client.Close() },
	}, nil
}
