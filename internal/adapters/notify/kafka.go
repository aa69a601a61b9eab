package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the notifier needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// kafkaBatchTimeout caps how long a single event waits for a batch to fill.
// The writer's one second default would hold every notification that long.
const kafkaBatchTimeout = 10 * time.Millisecond

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: kafkaBatchTimeout,
	}
}

// KafkaNotifier publishes events keyed by shop so a shop's orders stay on one partition.
type KafkaNotifier struct {
	writer MessageWriter
}

func NewKafkaNotifier(writer MessageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: writer}
}

func (n *KafkaNotifier) Notify(ctx context.Context, event domain.OrderPlaced) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.Shop),
		Value: data,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("order.placed")},
		},
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
