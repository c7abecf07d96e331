package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// MessagePublisher writes encoded change events to the change topic.
type MessagePublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
	Close() error
}

// DeadLetter is a change feed message this register gave up on.
type DeadLetter struct {
	Key   []byte
	Value []byte
	// Stage names the processing step that failed, e.g. "decode".
	Stage  string
	Reason string
}

type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, letter DeadLetter) error
	Close() error
}

// KafkaWriter is the part of *kafka.Writer the producers use.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
