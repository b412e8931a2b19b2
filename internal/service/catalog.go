package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/carmarket/orders/internal/cache"
	"github.com/carmarket/orders/internal/domain"
	"github.com/carmarket/orders/internal/observability"
)

// Catalog serves product reads cache-aside: try the cache, fall back to
// the store, repopulate on miss.
type Catalog struct {
	store   CatalogStore
	cache   Cache
	logger  *zap.Logger
	metrics observability.Metrics
}

func NewCatalog(store CatalogStore, c Cache, logger *zap.Logger, metrics observability.Metrics) *Catalog {
	return &Catalog{store: store, cache: c, logger: logger, metrics: metrics}
}

func (c *Catalog) Product(ctx context.Context, id string) (*domain.Product, error) {
	key := cache.ProductKey(id)
	t0 := time.Now()
	var cached domain.Product
	if cacheLookup(ctx, c.cache, c.metrics, c.logger, key, &cached) {
		c.metrics.ObserveLookup(observability.SourceCache, msSince(t0), 0)
		return &cached, nil
	}
	cacheMs := msSince(t0)

	t1 := time.Now()
	product, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.metrics.ObserveLookup(observability.SourceDB, cacheMs, msSince(t1))
	cacheFill(ctx, c.cache, c.logger, key, product)
	return product, nil
}

func (c *Catalog) Products(ctx context.Context) ([]domain.Product, error) {
	return c.list(ctx, cache.AllProductsKey, c.store.List)
}

func (c *Catalog) Featured(ctx context.Context) ([]domain.Product, error) {
	return c.list(ctx, cache.FeaturedProductsKey, c.store.Featured)
}

func (c *Catalog) SellerProducts(ctx context.Context, sellerID string) ([]domain.Product, error) {
	return c.list(ctx, cache.SellerProductsKey(sellerID), func(ctx context.Context) ([]domain.Product, error) {
		return c.store.BySeller(ctx, sellerID)
	})
}

func (c *Catalog) list(ctx context.Context, key string, load func(context.Context) ([]domain.Product, error)) ([]domain.Product, error) {
	t0 := time.Now()
	var cached []domain.Product
	if cacheLookup(ctx, c.cache, c.metrics, c.logger, key, &cached) {
		c.metrics.ObserveLookup(observability.SourceCache, msSince(t0), 0)
		return cached, nil
	}
	cacheMs := msSince(t0)

	t1 := time.Now()
	products, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.metrics.ObserveLookup(observability.SourceDB, cacheMs, msSince(t1))
	cacheFill(ctx, c.cache, c.logger, key, products)
	return products, nil
}
