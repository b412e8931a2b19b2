package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carmarket/orders/internal/domain"
	"github.com/carmarket/orders/internal/events"
	"github.com/carmarket/orders/internal/observability"
)

// CartItem is one requested line of a cart. Prices are never accepted
// from the client; they are read from the catalog at placement time.
type CartItem struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

// Placement validates a cart against the catalog, snapshots prices,
// commits the stock decrements together with the new order, and fans out
// cache invalidation afterwards.
type Placement struct {
	catalog   CatalogStore
	orders    OrderStore
	inv       *Invalidator
	publisher Publisher
	logger    *zap.Logger
	metrics   observability.Metrics
}

func NewPlacement(
	catalog CatalogStore,
	orders OrderStore,
	inv *Invalidator,
	publisher Publisher,
	logger *zap.Logger,
	metrics observability.Metrics,
) *Placement {
	return &Placement{
		catalog:   catalog,
		orders:    orders,
		inv:       inv,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// Place creates an order for buyerID. It either fully succeeds or fails
// with no order created and no stock changed.
func (p *Placement) Place(ctx context.Context, buyerID string, items []CartItem, shippingAddress string) (*domain.OrderView, error) {
	if strings.TrimSpace(shippingAddress) == "" {
		return nil, fmt.Errorf("%w: shipping address is required", domain.ErrInvalidRequest)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", domain.ErrInvalidRequest)
	}
	for _, it := range items {
		if _, err := uuid.Parse(it.ProductID); err != nil {
			return nil, fmt.Errorf("%w: malformed product id %q", domain.ErrInvalidRequest, it.ProductID)
		}
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity for product %s must be at least 1", domain.ErrInvalidRequest, it.ProductID)
		}
	}

	ids := distinctIDs(items)
	products, err := p.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	// A shorter result means some reference is unknown or soft-deleted.
	// No partial orders.
	if len(products) != len(ids) {
		return nil, fmt.Errorf("%w: %d of %d products not found", domain.ErrProductUnavailable, len(ids)-len(products), len(ids))
	}
	byID := make(map[string]domain.Product, len(products))
	for _, prod := range products {
		byID[prod.ID] = prod
	}

	// Duplicate cart rows for one product collapse into a single line.
	need := make(map[string]int, len(ids))
	for _, it := range items {
		need[it.ProductID] += it.Quantity
	}

	var total int64
	lines := make([]domain.LineItem, 0, len(ids))
	for _, id := range ids {
		prod := byID[id]
		qty := need[id]
		if prod.Stock <= 0 {
			return nil, &domain.StockError{ProductID: prod.ID, Requested: qty, Available: prod.Stock}
		}
		if qty > prod.Stock {
			return nil, &domain.StockError{ProductID: prod.ID, Requested: qty, Available: prod.Stock}
		}
		lines = append(lines, domain.LineItem{
			ProductID: prod.ID,
			Quantity:  qty,
			Price:     prod.Price,
		})
		total += prod.Price * int64(qty)
	}

	order := &domain.Order{
		ID:              uuid.NewString(),
		BuyerID:         buyerID,
		Items:           lines,
		TotalPrice:      total,
		Status:          domain.StatusPending,
		ShippingAddress: shippingAddress,
		CreatedAt:       time.Now().UTC(),
	}

	// Commit. The store re-checks stock with a conditional decrement, so a
	// concurrent order that won the race between our read and this write
	// fails here with a StockError, not an oversell.
	t0 := time.Now()
	if err := p.orders.Create(ctx, order); err != nil {
		p.metrics.ObservePlacement(msSince(t0), false)
		p.logger.Error("order commit failed",
			zap.String("order_id", order.ID),
			zap.String("buyer_id", buyerID),
			zap.Error(err),
		)
		return nil, err
	}
	p.metrics.ObservePlacement(msSince(t0), true)
	p.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("buyer_id", buyerID),
		zap.Int64("total_price", total),
		zap.Int("line_items", len(lines)),
	)

	// Post-commit side effects are best-effort: the order exists now, so
	// none of these may fail the request.
	p.inv.Invalidate(ctx, Change{
		OrderIDs:   []string{order.ID},
		BuyerID:    buyerID,
		ProductIDs: ids,
		SellerIDs:  sellerIDs(ids, byID),
	})
	p.publishCreated(ctx, order)

	return p.orders.GetByID(ctx, order.ID)
}

func (p *Placement) publishCreated(ctx context.Context, order *domain.Order) {
	env, err := events.NewOrderCreated(order)
	if err == nil {
		err = p.publisher.Publish(ctx, env)
	}
	if err != nil {
		p.logger.Warn("order created event not published",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}
}

func distinctIDs(items []CartItem) []string {
	seen := make(map[string]bool, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if seen[it.ProductID] {
			continue
		}
		seen[it.ProductID] = true
		ids = append(ids, it.ProductID)
	}
	return ids
}

func sellerIDs(productIDs []string, byID map[string]domain.Product) []string {
	seen := make(map[string]bool, len(productIDs))
	var sellers []string
	for _, id := range productIDs {
		s := byID[id].SellerID
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		sellers = append(sellers, s)
	}
	return sellers
}
