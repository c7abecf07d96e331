package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/register-pos/internal/domain/sale"
	"github.com/register-pos/internal/domain/shared"
)

// Message stores a change event until it has been published to the change feed.
// Messages are published in ID order; Payload is an encoded sale.ChangeEvent.
type Message struct {
	ID            int64               `json:"id"`
	TransactionID uuid.UUID           `json:"transaction_id"`
	EventType     shared.EventType    `json:"event_type"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(event sale.ChangeEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		TransactionID: event.Transaction.ID,
		EventType:     event.Type,
		Payload:       payload,
		Status:        shared.OutboxStatusPending,
		Attempts:      0,
		CreatedAt:     time.Now(),
	}, nil
}

// RecordFailedAttempt counts a publish attempt that did not reach the change feed
func (m *Message) RecordFailedAttempt(at time.Time) {
	m.Attempts++
	m.LastAttemptAt = &at
}

// Exhausted reports whether the message has used up maxAttempts publish attempts.
// A non-positive maxAttempts never exhausts.
func (m *Message) Exhausted(maxAttempts int) bool {
	return maxAttempts > 0 && m.Attempts >= maxAttempts
}

// Park gives up on the message; the poller stops offering it to the change feed.
func (m *Message) Park() {
	m.Status = shared.OutboxStatusFailedToPublish
}

// ChangeEvent decodes the payload
func (m *Message) ChangeEvent() (sale.ChangeEvent, error) {
	return sale.DecodeChangeEvent(m.Payload)
}
