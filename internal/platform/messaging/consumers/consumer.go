// Package consumers reads the change feed.
package consumers

import (
	"context"
	"log/slog"
	"time"

	"github.com/register-pos/internal/config"
	"github.com/segmentio/kafka-go"
)

type MessageHandler func(ctx context.Context, key []byte, value []byte) error

type Consumer interface {
	Subscribe(ctx context.Context, handler MessageHandler) error
	Close() error
}

// KafkaReader is the part of *kafka.Reader the consumer uses.
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	defaultHandleAttempts = 3
	defaultBackoff        = time.Second
)

// KafkaConsumer feeds change events to a handler one at a time, committing each
// offset only after the handler accepted the message.
type KafkaConsumer struct {
	reader  KafkaReader
	logger  *slog.Logger
	topic   string
	groupID string
	// handleAttempts is how often a message is offered before it is skipped uncommitted.
	handleAttempts int
	backoff        time.Duration
}

// GroupID derives the consumer group of one register instance. Every instance
// reads the whole change feed, so groups are never shared.
func GroupID(prefix, instanceID string) string {
	return prefix + "-" + instanceID
}

// NewKafkaConsumer reads the change topic in its own group. A new group starts at
// the newest offset; anything older is covered by the load at startup.
func NewKafkaConsumer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig, groupID string) *KafkaConsumer {
	return &KafkaConsumer{
		logger:         logger.With("topic", cfg.ChangeTopic, "group_id", groupID),
		topic:          cfg.ChangeTopic,
		groupID:        groupID,
		handleAttempts: defaultHandleAttempts,
		backoff:        defaultBackoff,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.BrokerList(),
			Topic:       cfg.ChangeTopic,
			GroupID:     groupID,
			MinBytes:    cfg.MinBytes,
			MaxBytes:    cfg.MaxBytes,
			MaxWait:     cfg.MaxWait,
			StartOffset: kafka.LastOffset,
		}),
	}
}

// Subscribe starts consuming in the background until ctx is canceled.
func (c *KafkaConsumer) Subscribe(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("Subscribed to change feed")
	go c.run(ctx, handler)
	return nil
}

func (c *KafkaConsumer) run(ctx context.Context, handler MessageHandler) {
	defer c.logger.Info("Change feed consumer stopped")

	for ctx.Err() == nil {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("Failed to fetch change event", "error", err)
			c.wait(ctx)
			continue
		}

		logger := c.logger.With("partition", msg.Partition, "offset", msg.Offset)
		logger.Debug("Change event received")

		if !c.handle(ctx, logger, handler, msg) {
			continue
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			logger.Error("Failed to commit change event offset", "error", err)
		}
	}
}

// handle offers msg to handler up to handleAttempts times. A message that is never
// accepted stays uncommitted and is redelivered after a rebalance or restart.
func (c *KafkaConsumer) handle(ctx context.Context, logger *slog.Logger, handler MessageHandler, msg kafka.Message) bool {
	attempts := c.handleAttempts
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 1; ; attempt++ {
		err := handler(ctx, msg.Key, msg.Value)
		if err == nil {
			return true
		}
		if attempt >= attempts || !c.wait(ctx) {
			logger.Error("Giving up on change event, offset not committed", "attempts", attempt, "error", err)
			return false
		}
		logger.Warn("Change event handler failed, retrying", "attempt", attempt, "error", err)
	}
}

// wait sleeps for the backoff and reports false if ctx ended first.
func (c *KafkaConsumer) wait(ctx context.Context) bool {
	t := time.NewTimer(c.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
