package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/carmarket/orders/internal/domain"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

const Topic = "order.events"

// PartitionKey keeps all events of one order on one partition, so
// consumers see them in order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }

type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	OrderID    string          `json:"order_id"`
	Payload    json.RawMessage `json:"payload"`
}

type ItemPrice struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

type OrderCreatedPayload struct {
	OrderID    string      `json:"order_id"`
	BuyerID    string      `json:"buyer_id"`
	Items      []ItemPrice `json:"items"`
	TotalPrice int64       `json:"total_price"`
}

type StatusChangedPayload struct {
	OrderID string        `json:"order_id"`
	From    domain.Status `json:"from"`
	To      domain.Status `json:"to"`
}

func NewOrderCreated(o *domain.Order) (Envelope, error) {
	items := make([]ItemPrice, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemPrice{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return wrap(EventOrderCreated, o.ID, OrderCreatedPayload{
		OrderID:    o.ID,
		BuyerID:    o.BuyerID,
		Items:      items,
		TotalPrice: o.TotalPrice,
	})
}

func NewStatusChanged(orderID string, from, to domain.Status) (Envelope, error) {
	return wrap(EventOrderStatusChanged, orderID, StatusChangedPayload{
		OrderID: orderID,
		From:    from,
		To:      to,
	})
}

func wrap(eventType, orderID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		OrderID:    orderID,
		Payload:    raw,
	}, nil
}
