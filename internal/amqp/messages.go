package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TransactionEvent announces a change to one owner's ledger. It carries only
// identifiers; consumers read the current state back from the store.
type TransactionEvent struct {
	Action    string    `json:"action"`
	ID        int64     `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Kind      string    `json:"kind"`
	Month     string    `json:"month"` // YYYY-MM of the affected transaction
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionEvent creates an event stamped with the current time.
func NewTransactionEvent(action string, id int64, owner, kind, month string) *TransactionEvent {
	return &TransactionEvent{
		Action:    action,
		ID:        id,
		OwnerID:   owner,
		Kind:      kind,
		Month:     month,
		Timestamp: time.Now(),
	}
}

// Validate rejects events a consumer cannot act on.
func (m *TransactionEvent) Validate() error {
	switch m.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return fmt.Errorf("unknown action %q", m.Action)
	}
	if m.OwnerID == "" {
		return fmt.Errorf("missing owner_id")
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventFromJSON creates a message from JSON bytes
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
