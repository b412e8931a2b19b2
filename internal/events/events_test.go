package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carmarket/orders/internal/domain"
)

func TestNewOrderCreated(t *testing.T) {
	order := &domain.Order{
		ID:      "o1",
		BuyerID: "b1",
		Items: []domain.LineItem{
			{ProductID: "p1", Quantity: 2, Price: 500000},
		},
		TotalPrice: 1000000,
	}

	env, err := NewOrderCreated(order)
	require.NoError(t, err)
	require.Equal(t, EventOrderCreated, env.EventType)
	require.Equal(t, "o1", env.OrderID)
	require.NotEmpty(t, env.EventID)
	require.WithinDuration(t, time.Now().UTC(), env.OccurredAt, time.Minute)

	var p OrderCreatedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	require.Equal(t, OrderCreatedPayload{
		OrderID:    "o1",
		BuyerID:    "b1",
		Items:      []ItemPrice{{ProductID: "p1", Quantity: 2, Price: 500000}},
		TotalPrice: 1000000,
	}, p)
}

func TestNewStatusChanged(t *testing.T) {
	env, err := NewStatusChanged("o1", domain.StatusPending, domain.StatusShipped)
	require.NoError(t, err)
	require.Equal(t, EventOrderStatusChanged, env.EventType)

	var p StatusChangedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	require.Equal(t, domain.StatusPending, p.From)
	require.Equal(t, domain.StatusShipped, p.To)
}

func TestEnvelopeIDsAreUnique(t *testing.T) {
	a, err := NewStatusChanged("o1", domain.StatusPending, domain.StatusCancelled)
	require.NoError(t, err)
	b, err := NewStatusChanged("o1", domain.StatusPending, domain.StatusCancelled)
	require.NoError(t, err)
	require.NotEqual(t, a.EventID, b.EventID)
}

func TestPartitionKey(t *testing.T) {
	require.Equal(t, []byte("o1"), PartitionKey("o1"))
}
