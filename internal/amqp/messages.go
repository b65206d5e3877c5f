package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind doubles as the routing key on the exchange.
type EventKind string

const (
	EventTransactionCreated EventKind = "transaction.created"
	EventTransactionDeleted EventKind = "transaction.deleted"
	EventGoalSet            EventKind = "goal.set"
	EventDocumentScanned    EventKind = "document.scanned"
)

// EventKinds lists every kind the rewards queue is bound to.
var EventKinds = []EventKind{EventTransactionCreated, EventTransactionDeleted, EventGoalSet, EventDocumentScanned}

var ErrInvalidEvent = errors.New("invalid event")

// Event is a small domain notification. Consumers reload whatever they need
// from the store, so only ids travel on the wire.
type Event struct {
	ID             string    `json:"id"`
	Kind           EventKind `json:"kind"`
	UserID         string    `json:"user_id"`
	TransactionIDs []string  `json:"transaction_ids,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

func NewEvent(kind EventKind, userID string, transactionIDs []string) *Event {
	return &Event{
		ID:             uuid.NewString(),
		Kind:           kind,
		UserID:         userID,
		TransactionIDs: transactionIDs,
		Timestamp:      time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes and checks an event body.
func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if e.UserID == "" {
		return nil, fmt.Errorf("%w: missing user_id", ErrInvalidEvent)
	}
	known := false
	for _, k := range EventKinds {
		if e.Kind == k {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, e.Kind)
	}
	return &e, nil
}
