package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/carmarket/orders/internal/domain"
	"github.com/carmarket/orders/internal/events"
	"github.com/carmarket/orders/internal/observability"
)

// Status moves an order through its lifecycle and invalidates the caches
// the transition could have made stale.
type Status struct {
	orders    OrderStore
	inv       *Invalidator
	publisher Publisher
	logger    *zap.Logger
	metrics   observability.Metrics
}

func NewStatus(
	orders OrderStore,
	inv *Invalidator,
	publisher Publisher,
	logger *zap.Logger,
	metrics observability.Metrics,
) *Status {
	return &Status{
		orders:    orders,
		inv:       inv,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// Update transitions the order to target and returns the updated view.
// An illegal transition leaves the order untouched.
func (s *Status) Update(ctx context.Context, orderID string, target domain.Status) (*domain.OrderView, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidRequest, target)
	}

	view, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	from := view.Status
	if !domain.CanTransition(from, target) {
		return nil, &domain.TransitionError{From: from, To: target}
	}

	t0 := time.Now()
	if err := s.orders.UpdateStatus(ctx, orderID, target); err != nil {
		s.metrics.ObserveStatusChange(msSince(t0), false)
		return nil, err
	}
	s.metrics.ObserveStatusChange(msSince(t0), true)
	view.Status = target
	s.logger.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
	)

	// Status changes affect order visibility for the buyer and every
	// seller with a product in this order; products themselves are
	// untouched.
	s.inv.Invalidate(ctx, Change{
		OrderIDs:  []string{orderID},
		BuyerID:   view.Buyer.ID,
		SellerIDs: view.SellerIDs(),
	})
	s.publishChanged(ctx, orderID, from, target)

	return view, nil
}

func (s *Status) publishChanged(ctx context.Context, orderID string, from, to domain.Status) {
	env, err := events.NewStatusChanged(orderID, from, to)
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil {
		s.logger.Warn("status changed event not published",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
	}
}
