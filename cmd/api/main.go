package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nuvemflow/orderdesk-backend/api/routes"
	"github.com/nuvemflow/orderdesk-backend/internal/auth"
	"github.com/nuvemflow/orderdesk-backend/internal/notes"
	"github.com/nuvemflow/orderdesk-backend/internal/orders"
	"github.com/nuvemflow/orderdesk-backend/internal/refresh"
	"github.com/nuvemflow/orderdesk-backend/internal/users"
	"github.com/nuvemflow/orderdesk-backend/pkg/auth/session"
	"github.com/nuvemflow/orderdesk-backend/pkg/config"
	"github.com/nuvemflow/orderdesk-backend/pkg/db"
	"github.com/nuvemflow/orderdesk-backend/pkg/instance"
	"github.com/nuvemflow/orderdesk-backend/pkg/logger"
	"github.com/nuvemflow/orderdesk-backend/pkg/metrics"
	"github.com/nuvemflow/orderdesk-backend/pkg/migrate"
	"github.com/nuvemflow/orderdesk-backend/pkg/nuvemshop"
	"github.com/nuvemflow/orderdesk-backend/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Instance:    instance.ID(),
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	orderMetrics := metrics.NewOrderMetrics(registry)
	jobMetrics := metrics.NewJobMetrics(registry)

	upstream, err := nuvemshop.NewClient(cfg.Nuvemshop)
	if err != nil {
		logg.Error(context.Background(), "failed to create nuvemshop client", err)
		os.Exit(1)
	}

	classifier := orders.NewClassifier(time.Now, cfg.Orders.Location())
	cache, err := orders.NewCache(orders.NewNuvemshopSource(upstream), classifier, orders.CacheOptions{
		TTL:            cfg.Orders.CacheTTL,
		EmptyResultTTL: cfg.Orders.EmptyResultTTL,
		Logger:         logg,
		Metrics:        orderMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order cache", err)
		os.Exit(1)
	}

	noteStore := notes.NewStore(dbClient.DB())
	counter, err := orders.NewCounter(cache, noteStore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order counter", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Cache:          cache,
		Classifier:     classifier,
		Merger:         orders.NewMerger(noteStore, logg, orderMetrics, cfg.Orders.AnnotationConcurrency),
		Annotations:    noteStore,
		Counts:         noteStore,
		Counter:        counter,
		Logger:         logg,
		DefaultPerPage: cfg.Orders.DefaultPerPage,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	lock, err := refresh.NewRedisLock(redisClient, redisClient.LockKey(refresh.LockName), cfg.Refresh.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create refresh lock", err)
		os.Exit(1)
	}
	scheduler, err := refresh.NewScheduler(refresh.Params{
		Cache:        cache,
		Counter:      counter,
		Lock:         lock,
		Logger:       logg,
		JobMetrics:   jobMetrics,
		OrderMetrics: orderMetrics,
		Interval:     cfg.Refresh.Interval(),
		PageSize:     cfg.Refresh.PageSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create refresh scheduler", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	if cfg.Refresh.Enabled {
		scheduler.Start(ctx)
	}

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			Annotations:     noteStore,
			RateLimiter:     redisClient,
			Sessions:        sessionManager,
			AuthService:     authService,
			OrdersService:   ordersService,
			Scheduler:       scheduler,
			Cache:           cache,
			MetricsGatherer: registry,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	}

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "graceful shutdown failed", err)
	}
	counter.Wait()
	logg.Info(shutdownCtx, "api server stopped")
}
