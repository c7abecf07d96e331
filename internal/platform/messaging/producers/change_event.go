package producers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/register-pos/internal/config"
	"github.com/segmentio/kafka-go"
)

// ChangeEventProducer writes transaction change events to the change topic.
// Writes are synchronous so the outbox only marks what the broker acknowledged.
type ChangeEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewChangeEventProducer creates the producer and makes sure the change topic exists
func NewChangeEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*ChangeEventProducer, error) {
	if cfg.ChangeTopic == "" {
		return nil, fmt.Errorf("kafka change topic is not configured")
	}

	if err := ensureTopic(cfg, cfg.ChangeTopic, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure change topic %s exists: %w", cfg.ChangeTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.BrokerList()...),
		Topic:        cfg.ChangeTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &ChangeEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.ChangeTopic,
	}, nil
}

func (p *ChangeEventProducer) Publish(ctx context.Context, key string, value []byte) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish change event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish change event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published change event", "topic", p.topic, "key", key)
	return nil
}

func (p *ChangeEventProducer) Close() error {
	p.logger.Info("Closing change event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
