package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// Publisher hands verified callback events to downstream order processing.
type Publisher interface {
	Publish(ctx context.Context, event *CallbackEvent) error
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *CallbackEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal callback event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Event),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Event)},
		},
	}

	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
