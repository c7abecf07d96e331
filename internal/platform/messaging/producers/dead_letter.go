package producers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/register-pos/internal/config"
	"github.com/segmentio/kafka-go"
)

// ErrDLQDisabled is returned by a nil *DLQProducer.
var ErrDLQDisabled = errors.New("change feed DLQ is not configured")

const (
	headerStage  = "dlq-stage"
	headerReason = "dlq-reason"
)

// DLQProducer parks change feed messages that could not be applied on the DLQ topic.
// A nil *DLQProducer is valid and rejects every letter with ErrDLQDisabled.
type DLQProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
	now    func() time.Time
}

// envelope is the DLQ record; the original value is kept verbatim when it is JSON.
type envelope struct {
	Key      string          `json:"key"`
	Value    json.RawMessage `json:"value,omitempty"`
	RawValue string          `json:"raw_value,omitempty"`
	Stage    string          `json:"stage"`
	Reason   string          `json:"reason"`
	FailedAt time.Time       `json:"failed_at"`
}

// NewDLQProducer returns nil when cfg.DLQTopic is empty.
func NewDLQProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*DLQProducer, error) {
	if cfg.DLQTopic == "" {
		logger.Info("No DLQ topic configured, undecodable change events will stay uncommitted")
		return nil, nil
	}

	if err := ensureTopic(cfg, cfg.DLQTopic, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure DLQ topic %s exists: %w", cfg.DLQTopic, err)
	}

	return &DLQProducer{
		logger: logger,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.BrokerList()...),
			Topic:        cfg.DLQTopic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
			WriteTimeout: cfg.MaxWait,
		},
		topic: cfg.DLQTopic,
		now:   time.Now,
	}, nil
}

func (p *DLQProducer) PublishToDLQ(ctx context.Context, letter DeadLetter) error {
	if p == nil || p.writer == nil {
		return ErrDLQDisabled
	}

	record := envelope{
		Key:      string(letter.Key),
		Stage:    letter.Stage,
		Reason:   letter.Reason,
		FailedAt: p.clock().UTC(),
	}
	if json.Valid(letter.Value) {
		record.Value = letter.Value
	} else {
		record.RawValue = string(letter.Value)
	}

	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode dead letter: %w", err)
	}

	msg := kafka.Message{
		Key:   letter.Key,
		Value: value,
		Headers: []kafka.Header{
			{Key: headerStage, Value: []byte(letter.Stage)},
			{Key: headerReason, Value: []byte(letter.Reason)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("DLQ write failed", "topic", p.topic, "stage", letter.Stage, "error", err)
		return fmt.Errorf("failed to publish dead letter to %s: %w", p.topic, err)
	}

	p.logger.Warn("Change event parked on DLQ", "topic", p.topic, "stage", letter.Stage, "reason", letter.Reason)
	return nil
}

func (p *DLQProducer) clock() time.Time {
	if p.now == nil {
		return time.Now()
	}
	return p.now()
}

func (p *DLQProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close DLQ writer for %s: %w", p.topic, err)
	}
	return nil
}
