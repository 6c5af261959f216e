package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dejobratic/orderwatch/internal/config"
	"github.com/dejobratic/orderwatch/internal/database"
	idemmemory "github.com/dejobratic/orderwatch/internal/idempotency/memory"
	idempostgres "github.com/dejobratic/orderwatch/internal/idempotency/postgres"
	"github.com/dejobratic/orderwatch/internal/kafka"
	"github.com/dejobratic/orderwatch/internal/notify"
	"github.com/dejobratic/orderwatch/internal/notify/desktop"
	"github.com/dejobratic/orderwatch/internal/notify/headless"
	"github.com/dejobratic/orderwatch/internal/orders/adapters"
	httpadapter "github.com/dejobratic/orderwatch/internal/orders/adapters/http"
	"github.com/dejobratic/orderwatch/internal/orders/adapters/live"
	ordersmemory "github.com/dejobratic/orderwatch/internal/orders/adapters/memory"
	orderspostgres "github.com/dejobratic/orderwatch/internal/orders/adapters/postgres"
	ordersredis "github.com/dejobratic/orderwatch/internal/orders/adapters/redis"
	ordersapp "github.com/dejobratic/orderwatch/internal/orders/app"
	"github.com/dejobratic/orderwatch/internal/orders/demo"
	ordersmetrics "github.com/dejobratic/orderwatch/internal/orders/metrics"
	"github.com/dejobratic/orderwatch/internal/orders/ports"
	"github.com/dejobratic/orderwatch/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level, err := telemetry.ParseLevel(cfg.Telemetry.LogLevel)
	if err != nil {
		slog.Error("failed to parse log level", "error", err)
		os.Exit(1)
	}
	logger := telemetry.NewLogger(os.Stdout, level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("console stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	tel, err := initTelemetry(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	meter := telemetry.Meter(cfg.Service.Name)
	orderMetrics, err := ordersmetrics.NewMetrics(meter)
	if err != nil {
		return err
	}
	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		return err
	}
	kafkaMetrics, err := kafka.NewMetrics(meter)
	if err != nil {
		return err
	}
	httpMetrics, err := httpadapter.NewMetrics(meter)
	if err != nil {
		return err
	}

	health := httpadapter.NewHealth(2 * time.Second)

	var (
		repo      ports.OrderRepository
		idemStore ports.IdempotencyStore
	)
	switch cfg.Console.Store {
	case config.StorePostgres:
		pool, err := database.NewPool(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("create database pool: %w", err)
		}
		defer pool.Close()

		if cfg.Database.AutoMigrate {
			logger.Info("running database migrations", "path", cfg.Database.MigrationsPath)
			version, err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath)
			if err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			logger.Info("migrations completed successfully", "schema_version", version)
		}

		repo = orderspostgres.NewRepository(pool)
		idemStore = idempostgres.NewStore(pool)
		health.Add("database", func(ctx context.Context) error {
			return database.CheckHealth(ctx, pool)
		})
	default:
		mem := ordersmemory.NewRepository()
		orders, err := demo.Orders(cfg.Console.TenantID, time.Now())
		if err != nil {
			return fmt.Errorf("seed demo orders: %w", err)
		}
		mem.Seed(orders...)
		logger.Warn("using in-memory order store seeded with demo data", "tenant_id", cfg.Console.TenantID)

		repo = mem
		idemStore = idemmemory.NewStore()
	}

	var feed ports.ChangeFeed = ordersmemory.NewFeed()
	if cfg.Redis.Addr != "" {
		client, err := ordersredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer client.Close()

		feed = ordersredis.NewFeed(client, logger)
		health.Add("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}

	var storeOpts []live.Option
	if cfg.Console.DemoFallback {
		storeOpts = append(storeOpts, live.WithDemoFallback(cfg.Console.DemoTenantID, demo.Snapshot))
	}
	store := live.NewStore(adapters.NewObservableRepository(repo, dbMetrics), feed, logger, storeOpts...)

	var bus ports.EventBus = kafka.NewNoopEventBus(logger)
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaBus := kafka.NewEventBus(kafka.NewWriter(cfg.Kafka.Brokers))
		defer func() {
			if err := kafkaBus.Close(); err != nil {
				logger.Error("kafka writer close failed", "error", err)
			}
		}()
		bus = kafkaBus
	}
	bus = adapters.NewObservableEventBus(bus, kafkaMetrics)

	sink, err := newSink(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sink.Close(closeCtx); err != nil {
			logger.Error("notification sink close failed", "error", err)
		}
	}()

	view := ordersapp.NewLifecycleView(cfg.Console.TenantID, store, bus, logger, orderMetrics, nil)
	watcher := ordersapp.NewWatcher(store, view, sink, logger, orderMetrics, cfg.Console.ResubscribeDelay)
	service := ordersapp.NewService(store, bus, idemStore, view, logger, orderMetrics)

	watchCtx, stopWatch := context.WithCancel(ctx)
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		if err := watcher.Watch(watchCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("order watcher stopped", "tenant_id", cfg.Console.TenantID, "error", err)
		}
	}()
	defer func() {
		stopWatch()
		<-watchDone
	}()

	handler := httpadapter.NewHandler(service, sink, logger)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           httpadapter.NewRouter(handler, health, httpMetrics),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port, "tenant_id", cfg.Console.TenantID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}

func initTelemetry(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*telemetry.Telemetry, error) {
	telCfg := telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		Insecure:       cfg.Telemetry.Insecure,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		SampleRate:     cfg.Telemetry.SampleRate,
	}
	if telCfg.OTLPEndpoint == "" && (telCfg.EnableTracing || telCfg.EnableMetrics) {
		logger.Warn("OTEL_EXPORTER_OTLP_ENDPOINT not set, telemetry export disabled")
		telCfg.EnableTracing = false
		telCfg.EnableMetrics = false
	}

	tel, err := telemetry.Initialize(ctx, telCfg)
	if err != nil {
		return nil, fmt.Errorf("initialize telemetry: %w", err)
	}
	return tel, nil
}

func newSink(cfg *config.Config, logger *slog.Logger) (*notify.Sink, error) {
	if cfg.Console.Notifier == config.NotifierDesktop {
		return notify.NewSink(desktop.NewAudio(), desktop.NewTray(), logger), nil
	}

	permission, ok := notify.ParsePermission(cfg.Console.HeadlessPermission)
	if !ok {
		return nil, fmt.Errorf("invalid CONSOLE_HEADLESS_PERMISSION %q", cfg.Console.HeadlessPermission)
	}
	return notify.NewSink(headless.NewAudio(logger), headless.NewTray(logger, permission), logger), nil
}
