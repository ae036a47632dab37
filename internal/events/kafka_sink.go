package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaSink writes events to a Kafka topic keyed by ticket id, so every
// event for one ticket lands on the same partition in order.
type KafkaSink struct {
	writer *kafka.Writer
}

// NewKafkaSink creates a sink writing to topic on brokers.
func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}}
}

// Write publishes one event.
func (s *KafkaSink) Write(ctx context.Context, event Event) error {
	msg, err := Message(event)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, msg)
}

// Close flushes pending writes.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

// Message encodes an event as a Kafka message.
func Message(event Event) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return kafka.Message{
		Key:   []byte(event.TicketID),
		Value: value,
		Time:  ts,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}, nil
}
