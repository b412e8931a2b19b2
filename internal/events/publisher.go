package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher writes order events to Kafka. Callers treat publishing as
// best-effort: the order has already committed by the time an event goes
// out, so a failed write is logged by the caller, never surfaced.
type Publisher struct {
	w *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, env Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   PartitionKey(env.OrderID),
		Value: value,
		Time:  time.Now(),
	})
}

func (p *Publisher) Close() error { return p.w.Close() }
