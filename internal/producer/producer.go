// Package producer provides Kafka producer functionality for the
// alerts.created notification hook topic.
package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"watchtower/internal/events"
	kafkautil "watchtower/internal/kafka"
)

// Producer wraps a Kafka writer and publishes alert-created events for
// downstream notification consumers.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer with the specified brokers and
// topic, configured for at-least-once delivery with synchronous writes.
func NewProducer(brokers, topic string) (*Producer, error) {
	if err := kafkautil.ValidateProducerParams(brokers, topic); err != nil {
		return nil, err
	}

	brokerList := kafkautil.ParseBrokers(brokers)

	slog.Info("Initializing Kafka producer",
		"brokers", brokerList,
		"topic", topic,
	)

	// Key by monitor_id so one monitor's alerts stay ordered per partition.
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokerList...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: kafkautil.WriteTimeout,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}, nil
}

// Publish serializes an alert-created event to JSON and publishes it.
func (p *Producer) Publish(ctx context.Context, created *events.AlertCreated) error {
	payload, err := json.Marshal(created)
	if err != nil {
		return fmt.Errorf("failed to marshal alert created event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(created.MonitorID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "schema_version", Value: []byte(fmt.Sprintf("%d", created.SchemaVersion))},
			{Key: "alert_id", Value: []byte(created.AlertID)},
		},
		Time: time.Unix(created.TriggeredTS, 0),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

// Close gracefully closes the Kafka writer and releases resources.
func (p *Producer) Close() error {
	slog.Info("Closing Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		slog.Error("Error closing Kafka producer", "error", err)
		return err
	}
	return nil
}
