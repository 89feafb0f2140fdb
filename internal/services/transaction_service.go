package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"finsage/internal/amqp"
	"finsage/internal/core"
	"finsage/internal/ledger"
)

// EventPublisher is the outbound side of the change feed.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, msg *amqp.TransactionEvent) error
}

// TransactionPatch holds the fields of a partial update. Nil fields are left unchanged.
type TransactionPatch struct {
	Category  *string
	Amount    *decimal.Decimal
	Timestamp *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.Category == nil && p.Amount == nil && p.Timestamp == nil
}

// TransactionService orchestrates ledger writes and change events.
type TransactionService struct {
	store     ledger.Writer
	publisher EventPublisher
	loc       *time.Location
}

// NewTransactionService wires a writer and an optional publisher (nil disables events).
func NewTransactionService(store ledger.Writer, publisher EventPublisher, loc *time.Location) *TransactionService {
	if loc == nil {
		loc = time.UTC
	}
	return &TransactionService{
		store:     store,
		publisher: publisher,
		loc:       loc,
	}
}

// Create saves a transaction and publishes a created event.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	saved, err := s.store.Append(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save %s: %w", tx.Kind, err)
	}
	s.publish(ctx, amqp.ActionCreated, saved)
	return saved, nil
}

// Update applies patch to an existing transaction of the owner.
func (s *TransactionService) Update(ctx context.Context, owner string, kind core.Kind, id int64, patch TransactionPatch) (core.Transaction, error) {
	current, err := s.store.Get(ctx, owner, kind, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load %s %d: %w", kind, id, err)
	}
	if patch.Category != nil {
		current.Category = *patch.Category
	}
	if patch.Amount != nil {
		current.Amount = *patch.Amount
	}
	if patch.Timestamp != nil {
		current.Timestamp = *patch.Timestamp
	}
	if err := current.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.Update(ctx, current)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update %s %d: %w", kind, id, err)
	}
	s.publish(ctx, amqp.ActionUpdated, saved)
	return saved, nil
}

// Delete removes a transaction of the owner and publishes a deleted event.
func (s *TransactionService) Delete(ctx context.Context, owner string, kind core.Kind, id int64) error {
	current, err := s.store.Get(ctx, owner, kind, id)
	if err != nil {
		return fmt.Errorf("load %s %d: %w", kind, id, err)
	}
	if err := s.store.Delete(ctx, owner, kind, id); err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	s.publish(ctx, amqp.ActionDeleted, current)
	return nil
}

// Get returns one transaction of the owner.
func (s *TransactionService) Get(ctx context.Context, owner string, kind core.Kind, id int64) (core.Transaction, error) {
	return s.store.Get(ctx, owner, kind, id)
}

// publish never fails the request; the write has already succeeded.
func (s *TransactionService) publish(ctx context.Context, action string, tx core.Transaction) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping event", "action", action, "id", tx.ID)
		return
	}
	msg := amqp.NewTransactionEvent(action, tx.ID, tx.OwnerID, tx.Kind.String(), tx.MonthKey(s.loc))
	if err := s.publisher.PublishTransactionEvent(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"action", action, "id", tx.ID, "error", err)
	}
}

// IsNotFound reports whether err means the transaction does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ledger.ErrNotFound)
}
