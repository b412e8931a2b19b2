package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/carmarket/orders/internal/cache"
	"github.com/carmarket/orders/internal/config"
	"github.com/carmarket/orders/internal/events"
	"github.com/carmarket/orders/internal/httpapi"
	"github.com/carmarket/orders/internal/observability"
	"github.com/carmarket/orders/internal/pkg/retry"
	"github.com/carmarket/orders/internal/service"
	"github.com/carmarket/orders/internal/storage/postgres"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var pool *pgxpool.Pool
	if err := retry.Do(ctx, cfg.Retry, func() error {
		var err error
		pool, err = postgres.Connect(ctx, cfg.DSN())
		return err
	}); err != nil {
		logger.Fatal("postgres connect", zap.Error(err))
	}
	defer pool.Close()

	store := cache.NewRedis(cfg.Cache.RedisAddr, cfg.Cache.TTL)
	if err := retry.Do(ctx, cfg.Retry, func() error { return store.Ping(ctx) }); err != nil {
		logger.Fatal("redis connect", zap.Error(err))
	}
	defer store.Close()

	publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer publisher.Close()

	catalogRepo := postgres.NewCatalogRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)

	metrics := observability.NewInmem(1000)
	inv := service.NewInvalidator(store, logger)

	placement := service.NewPlacement(catalogRepo, orderRepo, inv, publisher, logger, metrics)
	status := service.NewStatus(orderRepo, inv, publisher, logger, metrics)
	catalog := service.NewCatalog(catalogRepo, store, logger, metrics)
	orderQuery := service.NewOrderQuery(orderRepo, store, logger, metrics)

	server := httpapi.New(placement, status, catalog, orderQuery, logger, metrics)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: server.Router()}

	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
