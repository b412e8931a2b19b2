package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/carmarket/orders/internal/domain"
	"github.com/carmarket/orders/internal/events"
	"github.com/carmarket/orders/internal/observability"
)

//go:generate mockgen -source internal/service/service.go -destination=internal/service/service_mock_test.go -package=service

// CatalogStore is the persistent product view the services read from.
// Soft-deleted products are excluded from every method.
type CatalogStore interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Featured(ctx context.Context) ([]domain.Product, error)
	BySeller(ctx context.Context, sellerID string) ([]domain.Product, error)
}

// OrderStore persists orders. Create commits the stock decrements and the
// order insert in one transaction; a conditional decrement that no longer
// holds at write time surfaces as *domain.StockError and nothing is
// written.
type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.OrderView, error)
	List(ctx context.Context) ([]domain.OrderView, error)
	ByBuyer(ctx context.Context, buyerID string) ([]domain.OrderView, error)
	BySeller(ctx context.Context, sellerID string) ([]domain.OrderView, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
}

// Cache is a key/value view with a fixed TTL per adapter. It holds no
// authoritative state: the system stays correct if every entry is absent.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type Publisher interface {
	Publish(ctx context.Context, env events.Envelope) error
}

// cacheLookup is the read half of the cache-aside pattern: unmarshal the
// cached entry into dst if present. Cache errors count as misses.
func cacheLookup(ctx context.Context, c Cache, m observability.Metrics, logger *zap.Logger, key string, dst any) bool {
	b, ok, err := c.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		m.IncCacheMiss()
		return false
	}
	if !ok {
		m.IncCacheMiss()
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		logger.Warn("cache entry corrupt, ignoring", zap.String("key", key), zap.Error(err))
		m.IncCacheMiss()
		return false
	}
	m.IncCacheHit()
	return true
}

// cacheFill repopulates a key after a miss. Best-effort.
func cacheFill(ctx context.Context, c Cache, logger *zap.Logger, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.Set(ctx, key, b); err != nil {
		logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
