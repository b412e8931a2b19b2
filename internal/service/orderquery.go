package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/carmarket/orders/internal/cache"
	"github.com/carmarket/orders/internal/domain"
	"github.com/carmarket/orders/internal/observability"
)

// OrderQuery serves order reads cache-aside, in the same shape as the
// catalog reads.
type OrderQuery struct {
	store   OrderStore
	cache   Cache
	logger  *zap.Logger
	metrics observability.Metrics
}

func NewOrderQuery(store OrderStore, c Cache, logger *zap.Logger, metrics observability.Metrics) *OrderQuery {
	return &OrderQuery{store: store, cache: c, logger: logger, metrics: metrics}
}

func (q *OrderQuery) Order(ctx context.Context, id string) (*domain.OrderView, error) {
	key := cache.OrderKey(id)
	t0 := time.Now()
	var cached domain.OrderView
	if cacheLookup(ctx, q.cache, q.metrics, q.logger, key, &cached) {
		q.metrics.ObserveLookup(observability.SourceCache, msSince(t0), 0)
		return &cached, nil
	}
	cacheMs := msSince(t0)

	t1 := time.Now()
	view, err := q.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	q.metrics.ObserveLookup(observability.SourceDB, cacheMs, msSince(t1))
	cacheFill(ctx, q.cache, q.logger, key, view)
	return view, nil
}

func (q *OrderQuery) Orders(ctx context.Context) ([]domain.OrderView, error) {
	return q.list(ctx, cache.AllOrdersKey, q.store.List)
}

func (q *OrderQuery) BuyerOrders(ctx context.Context, buyerID string) ([]domain.OrderView, error) {
	return q.list(ctx, cache.BuyerOrdersKey(buyerID), func(ctx context.Context) ([]domain.OrderView, error) {
		return q.store.ByBuyer(ctx, buyerID)
	})
}

func (q *OrderQuery) SellerOrders(ctx context.Context, sellerID string) ([]domain.OrderView, error) {
	return q.list(ctx, cache.SellerOrdersKey(sellerID), func(ctx context.Context) ([]domain.OrderView, error) {
		return q.store.BySeller(ctx, sellerID)
	})
}

func (q *OrderQuery) list(ctx context.Context, key string, load func(context.Context) ([]domain.OrderView, error)) ([]domain.OrderView, error) {
	t0 := time.Now()
	var cached []domain.OrderView
	if cacheLookup(ctx, q.cache, q.metrics, q.logger, key, &cached) {
		q.metrics.ObserveLookup(observability.SourceCache, msSince(t0), 0)
		return cached, nil
	}
	cacheMs := msSince(t0)

	t1 := time.Now()
	views, err := load(ctx)
	if err != nil {
		return nil, err
	}
	q.metrics.ObserveLookup(observability.SourceDB, cacheMs, msSince(t1))
	cacheFill(ctx, q.cache, q.logger, key, views)
	return views, nil
}
