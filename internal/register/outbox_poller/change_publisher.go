package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/register-pos/internal/domain/outbox"
	"github.com/register-pos/internal/platform/messaging/producers"
)

// ChangeFeedKey is the message key of every change event. One key keeps the
// whole feed on one partition, in outbox order.
const ChangeFeedKey = "register"

// ErrMalformedPayload marks a message that can never be published
var ErrMalformedPayload = errors.New("outbox payload is not a valid change event")

// ChangePublisher publishes outbox messages to the change feed
type ChangePublisher interface {
	PublishChange(ctx context.Context, message *outbox.Message) error
}

// ChangePublisherImpl implements ChangePublisher
type ChangePublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewChangePublisher creates a new publisher
func NewChangePublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) ChangePublisher {
	return &ChangePublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishChange validates the stored event, publishes it and marks the message processed
func (p *ChangePublisherImpl) PublishChange(ctx context.Context, message *outbox.Message) error {
	event, err := message.ChangeEvent()
	if err != nil {
		p.logger.Error("Outbox payload is not a valid change event",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		if parkErr := p.outboxRepo.Park(ctx, message.ID); parkErr != nil {
			p.logger.Error("Could not park malformed outbox message", "outbox_id", message.ID, "park_error", parkErr)
		}
		return fmt.Errorf("outbox %d: %w: %v", message.ID, ErrMalformedPayload, err)
	}

	logger := p.logger.With("outbox_id", message.ID, "transaction_id", message.TransactionID, "type", string(event.Type))

	if err := p.producer.Publish(ctx, ChangeFeedKey, message.Payload); err != nil {
		return fmt.Errorf("publish outbox %d failed: %w", message.ID, err)
	}

	if err := p.outboxRepo.MarkPublished(ctx, message.ID); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED", "error", err)
		return fmt.Errorf("change for %s published, but failed to mark outbox %d as PROCESSED: %w", message.TransactionID, message.ID, err)
	}

	logger.Debug("Change event published")
	return nil
}
