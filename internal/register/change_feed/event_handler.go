// Package change_feed applies transaction change events from other registers.
package change_feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/register-pos/internal/domain/sale"
	"github.com/register-pos/internal/platform/messaging/producers"
)

// Applier receives decoded change events
type Applier interface {
	ApplyChange(ctx context.Context, event sale.ChangeEvent) bool
}

// EventHandler handles change feed messages from Kafka
type EventHandler struct {
	applier  Applier
	producer producers.DeadLetterPublisher
	logger   *slog.Logger
}

// NewEventHandler creates a new handler. producer may be nil when no DLQ is configured.
func NewEventHandler(logger *slog.Logger, applier Applier, producer producers.DeadLetterPublisher) *EventHandler {
	return &EventHandler{
		applier:  applier,
		producer: producer,
		logger:   logger.With("component", "change_feed"),
	}
}

// HandleMessage decodes one event and hands it to the applier.
// Undecodable messages go to the DLQ; without one they are left uncommitted.
func (h *EventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	event, err := sale.DecodeChangeEvent(value)
	if err != nil {
		h.logger.Error("Failed to decode change event", "error", err, "message_key", string(key))
		return h.deadLetter(ctx, key, value, err)
	}

	logger := h.logger.With(
		"transaction_id", event.Transaction.ID.String(),
		"type", string(event.Type),
		"origin", event.Origin,
	)

	if h.applier.ApplyChange(ctx, event) {
		logger.Info("Applied change event", "total", event.Transaction.Total)
	} else {
		logger.Debug("Change event did not affect the open transaction")
	}
	return nil
}

func (h *EventHandler) deadLetter(ctx context.Context, key, value []byte, cause error) error {
	if h.producer == nil {
		return fmt.Errorf("failed to decode change event: %w", cause)
	}

	letter := producers.DeadLetter{
		Key:    key,
		Value:  value,
		Stage:  "decode",
		Reason: cause.Error(),
	}
	if err := h.producer.PublishToDLQ(ctx, letter); err != nil {
		if !errors.Is(err, producers.ErrDLQDisabled) {
			h.logger.Error("Failed to publish message to DLQ after decode error",
				"dlq_error", err,
				"original_error", cause,
				"message_key", string(key),
			)
		}
		return fmt.Errorf("failed to decode change event: %w", cause)
	}

	h.logger.Info("Published undecodable change event to DLQ", "message_key", string(key))
	return nil
}
