package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/register-pos/internal/domain/outbox"
	"github.com/register-pos/internal/domain/shared"
	"github.com/register-pos/internal/platform/persistence"
)

// OutboxRepository keeps the transaction_outbox table, the source of the change feed.
type OutboxRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

func NewOutboxRepository(logger *slog.Logger, db *persistence.PostgresDB) outbox.Repository {
	return &OutboxRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx binds the repository to tx so an event is stored atomically with the row change
// that produced it.
func (r *OutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return &OutboxRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create inserts message and assigns its sequence ID. Call it through WithTx.
func (r *OutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	const query = `
		INSERT INTO transaction_outbox (transaction_id, event_type, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		message.TransactionID,
		message.EventType,
		[]byte(message.Payload),
		message.Status,
		message.Attempts,
		message.CreatedAt,
	).Scan(&message.ID)

	if err != nil {
		r.logger.Error("Failed to create outbox message",
			"transaction_id", message.TransactionID.String(),
			"event_type", string(message.EventType),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message: %w", err)
	}

	return nil
}

// GetPending retrieves a batch of pending outbox messages in insertion order.
// The change feed relies on this order to replay row changes as they happened.
func (r *OutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	const query = `
		SELECT id, transaction_id, event_type, payload, status, attempts, created_at, last_attempt_at
		FROM transaction_outbox
		WHERE status = $1
		ORDER BY id ASC
		LIMIT $2
	`

	rows, err := r.querier.Query(ctx, query, shared.OutboxStatusPending, limit)
	if err != nil {
		r.logger.Error("Failed to read the outbox backlog", "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []*outbox.Message
	for rows.Next() {
		var (
			message outbox.Message
			payload []byte
		)
		err := rows.Scan(
			&message.ID,
			&message.TransactionID,
			&message.EventType,
			&payload,
			&message.Status,
			&message.Attempts,
			&message.CreatedAt,
			&message.LastAttemptAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		message.Payload = payload
		messages = append(messages, &message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading outbox rows: %w", err)
	}

	return messages, nil
}

// MarkPublished records that the message reached the change feed.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id int64) error {
	return r.setStatus(ctx, id, shared.OutboxStatusProcessed)
}

// Park moves the message to FAILED_TO_PUBLISH.
func (r *OutboxRepository) Park(ctx context.Context, id int64) error {
	return r.setStatus(ctx, id, shared.OutboxStatusFailedToPublish)
}

func (r *OutboxRepository) setStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	const query = `
		UPDATE transaction_outbox
		SET status = $1, last_attempt_at = $2
		WHERE id = $3 AND status = $4
	`

	result, err := r.querier.Exec(ctx, query, status, time.Now().UTC(), id, shared.OutboxStatusPending)
	if err != nil {
		r.logger.Error("Outbox status change failed", "id", id, "status", string(status), "error", err)
		return fmt.Errorf("failed to set outbox message %d to %s: %w", id, status, err)
	}
	if result.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: id}
	}
	return nil
}

// SaveAttempt writes back the retry bookkeeping of a message whose publish failed.
// The status is written too so an exhausted message is parked in the same statement.
func (r *OutboxRepository) SaveAttempt(ctx context.Context, message *outbox.Message) error {
	const query = `
		UPDATE transaction_outbox
		SET attempts = $1, last_attempt_at = $2, status = $3
		WHERE id = $4
	`

	result, err := r.querier.Exec(ctx, query, message.Attempts, message.LastAttemptAt, message.Status, message.ID)
	if err != nil {
		r.logger.Error("Failed to save outbox attempt",
			"id", message.ID,
			"attempts", message.Attempts,
			"error", err,
		)
		return fmt.Errorf("failed to save attempt %d of outbox message %d: %w", message.Attempts, message.ID, err)
	}
	if result.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: message.ID}
	}
	return nil
}
