package outbox

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
)

// Repository stores change events between the row write and the change feed.
type Repository interface {
	Create(ctx context.Context, message *Message) error
	// GetPending returns up to limit PENDING messages, oldest first.
	GetPending(ctx context.Context, limit int) ([]*Message, error)
	MarkPublished(ctx context.Context, id int64) error
	// Park moves a message that can never be published out of the pending queue.
	Park(ctx context.Context, id int64) error
	// SaveAttempt persists the attempt counter, timestamp and status of message.
	SaveAttempt(ctx context.Context, message *Message) error
	WithTx(tx pgx.Tx) Repository
}

// ErrMessageNotFound is returned when an update matches no outbox row.
type ErrMessageNotFound struct {
	ID int64
}

func (e ErrMessageNotFound) Error() string {
	return "outbox message " + strconv.FormatInt(e.ID, 10) + " does not exist"
}
