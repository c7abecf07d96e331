// Package outbox_poller relays stored change events to the change feed.
package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/register-pos/internal/config"
	"github.com/register-pos/internal/domain/outbox"
)

// Poller relays pending outbox messages to the change feed in id order.
type Poller struct {
	outboxRepo       outbox.Repository
	publisher        ChangePublisher
	logger           *slog.Logger
	pollInterval     time.Duration
	batchSize        int
	maxRetryAttempts int
}

func NewPoller(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	publisher ChangePublisher,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		outboxRepo:       outboxRepo,
		publisher:        publisher,
		logger:           logger.With("component", "outbox_poller"),
		pollInterval:     cfg.PollingInterval,
		batchSize:        cfg.BatchSize,
		maxRetryAttempts: cfg.MaxRetryAttempts,
	}
}

// Start polls until ctx is canceled.
func (p *Poller) Start(ctx context.Context) {
	p.logger.Info("Outbox poller started",
		"poll_interval", p.pollInterval.String(),
		"batch_size", p.batchSize,
		"max_retry_attempts", p.maxRetryAttempts,
	)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox poller stopped")
			return
		case <-ticker.C:
			p.drain(ctx)
		}
	}
}

// drain keeps publishing while batches come back full, so a backlog left by a
// broker outage is cleared without waiting a tick per batch.
func (p *Poller) drain(ctx context.Context) {
	for ctx.Err() == nil {
		settled, err := p.publishBatch(ctx)
		if err != nil {
			p.logger.Error("Outbox batch failed", "error", err)
			return
		}
		if settled < p.batchSize {
			return
		}
	}
}

// publishBatch publishes one batch and returns how many messages left the pending
// queue. A failed message halts the batch so later changes are not delivered ahead
// of it; once it runs out of attempts it is parked as FAILED_TO_PUBLISH and the
// feed moves on.
func (p *Poller) publishBatch(ctx context.Context) (int, error) {
	messages, err := p.outboxRepo.GetPending(ctx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	p.logger.Debug("Fetched pending outbox messages", "count", len(messages))

	settled := 0
	for _, msg := range messages {
		err := p.publisher.PublishChange(ctx, msg)
		if err == nil || errors.Is(err, ErrMalformedPayload) {
			// malformed payloads are parked by the publisher
			settled++
			continue
		}

		logger := p.logger.With("outbox_id", msg.ID, "transaction_id", msg.TransactionID)
		logger.Error("Failed to publish outbox message", "current_attempts", msg.Attempts, "error", err)

		msg.RecordFailedAttempt(time.Now().UTC())
		parked := msg.Exhausted(p.maxRetryAttempts)
		if parked {
			msg.Park()
		}
		if errSave := p.outboxRepo.SaveAttempt(ctx, msg); errSave != nil {
			logger.Error("Failed to record publish attempt", "error", errSave)
			return settled, nil
		}
		if parked {
			logger.Warn("Outbox message parked as FAILED_TO_PUBLISH", "attempts_made", msg.Attempts)
			settled++
			continue
		}
		return settled, nil
	}
	return settled, nil
}
