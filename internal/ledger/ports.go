package ledger

import (
	"context"
	"errors"
	"time"

	"finsage/internal/core"
)

var (
	// ErrNotFound is returned when a transaction id does not exist for the owner and kind.
	ErrNotFound = errors.New("transaction not found")
	// ErrReadOnly is returned by stores that cannot modify existing rows.
	ErrReadOnly = errors.New("store is read-only")
)

// Ports for the transaction stores.
type (
	// Reader is the read side consumed by the report engine.
	Reader interface {
		// QueryRange returns the owner's transactions of kind with start <= ts < end.
		QueryRange(ctx context.Context, owner string, kind core.Kind, start, end time.Time) ([]core.Transaction, error)
		// QueryAll returns every transaction of kind for the owner.
		QueryAll(ctx context.Context, owner string, kind core.Kind) ([]core.Transaction, error)
	}

	Writer interface {
		// Append stores tx and returns it with its assigned ID.
		Append(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		Update(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		Delete(ctx context.Context, owner string, kind core.Kind, id int64) error
		Get(ctx context.Context, owner string, kind core.Kind, id int64) (core.Transaction, error)
	}

	Store interface {
		Reader
		Writer
	}

	// BatchAppender is implemented by stores that can insert many rows at once.
	BatchAppender interface {
		AppendBatch(ctx context.Context, txs []core.Transaction) (int, error)
	}

	// Pinger is implemented by stores that can report connectivity.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
