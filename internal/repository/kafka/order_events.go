package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"agroMarket/domain"

	"github.com/segmentio/kafka-go"
)

// batchTimeout caps how long a checkout's events wait for more messages to batch with.
const batchTimeout = 10 * time.Millisecond

// OrderEventPublisher writes order placed events to a Kafka topic.
type OrderEventPublisher struct {
	writer *kafka.Writer
}

func NewOrderEventPublisher(brokers []string, topic string) *OrderEventPublisher {
	return &OrderEventPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(trimBrokers(brokers)...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           batchTimeout,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

func trimBrokers(brokers []string) []string {
	out := make([]string, 0, len(brokers))
	for _, b := range brokers {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// PublishOrderPlaced sends one message per order. Messages are keyed by farmer so a
// farmer's orders stay in one partition.
func (p *OrderEventPublisher) PublishOrderPlaced(ctx context.Context, events []domain.OrderPlacedEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs, err := orderMessages(events)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to publish order events: %w", err)
	}

	return nil
}

func orderMessages(events []domain.OrderPlacedEvent) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal order event: %w", err)
		}

		msgs = append(msgs, kafka.Message{
			Key:   []byte(fmt.Sprintf("order.placed.farmer.%d", ev.FarmerID)),
			Value: payload,
		})
	}

	return msgs, nil
}

func (p *OrderEventPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderPlaced(context.Context, []domain.OrderPlacedEvent) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
