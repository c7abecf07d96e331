package sale

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/register-pos/internal/domain/shared"
)

// ChangeEvent is a row-level notification about the current transaction
type ChangeEvent struct {
	Type        shared.EventType `json:"type"`
	Transaction Transaction      `json:"transaction"`
	Origin      string           `json:"origin"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

// NewChangeEvent stamps an event for t
func NewChangeEvent(eventType shared.EventType, t Transaction, origin string) ChangeEvent {
	return ChangeEvent{
		Type:        eventType,
		Transaction: t.Clone(),
		Origin:      origin,
		OccurredAt:  time.Now().UTC(),
	}
}

// LeavesCurrentScope reports whether the event removes the row from the current-transaction view
func (e ChangeEvent) LeavesCurrentScope() bool {
	return e.Type == shared.EventTypeDelete || !e.Transaction.IsCurrent
}

// DecodeChangeEvent parses and checks an event payload
func DecodeChangeEvent(payload []byte) (ChangeEvent, error) {
	var event ChangeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return ChangeEvent{}, err
	}
	if !event.Type.Valid() {
		return ChangeEvent{}, fmt.Errorf("unknown change event type %q", event.Type)
	}
	return event, nil
}
