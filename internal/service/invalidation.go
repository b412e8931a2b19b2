package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/carmarket/orders/internal/cache"
)

// Change describes what a mutation touched. Keys derives the cache keys
// to drop from it, so the fan-out stays a pure function of the change.
type Change struct {
	OrderIDs   []string
	BuyerID    string
	ProductIDs []string
	SellerIDs  []string
}

// Keys returns the deterministic list of cache keys the change can make
// stale. Global list keys always go first, then the scoped keys in input
// order; sellers are deduplicated.
func (c Change) Keys() []string {
	keys := []string{
		cache.AllOrdersKey,
		cache.AllProductsKey,
		cache.FeaturedProductsKey,
		cache.DefaultSearchKey,
	}
	for _, id := range c.OrderIDs {
		keys = append(keys, cache.OrderKey(id))
	}
	if c.BuyerID != "" {
		keys = append(keys, cache.BuyerOrdersKey(c.BuyerID))
	}
	for _, id := range c.ProductIDs {
		keys = append(keys, cache.ProductKey(id))
	}
	seen := make(map[string]bool, len(c.SellerIDs))
	for _, id := range c.SellerIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		keys = append(keys, cache.SellerOrdersKey(id), cache.SellerProductsKey(id))
	}
	return keys
}

// Invalidator drops every cache key a committed mutation could have made
// stale. Each delete is independent: one failure does not block the rest,
// and no failure is ever returned to the caller — the authoritative write
// has already succeeded and stale entries self-heal on TTL expiry.
type Invalidator struct {
	cache  Cache
	logger *zap.Logger
}

func NewInvalidator(cache Cache, logger *zap.Logger) *Invalidator {
	return &Invalidator{cache: cache, logger: logger}
}

func (iv *Invalidator) Invalidate(ctx context.Context, ch Change) {
	for _, key := range ch.Keys() {
		if err := iv.cache.Delete(ctx, key); err != nil {
			iv.logger.Warn("cache invalidation failed",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}
}
