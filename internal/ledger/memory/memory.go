package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"finsage/internal/core"
	"finsage/internal/ledger"
)

// Store keeps transactions in process memory. It is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Transaction
}

var (
	_ ledger.Store         = (*Store)(nil)
	_ ledger.Pinger        = (*Store)(nil)
	_ ledger.BatchAppender = (*Store)(nil)
)

func New() *Store {
	return &Store{}
}

// Seed stores txs as-is, assigning IDs. Validation is skipped so tests can
// load boundary data such as zero amounts.
func (s *Store) Seed(txs ...core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range txs {
		s.nextID++
		tx.ID = s.nextID
		s.items = append(s.items, tx)
	}
}

// Append stores the transaction and assigns the next ID.
func (s *Store) Append(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	tx.ID = s.nextID
	s.items = append(s.items, tx)
	return tx, nil
}

// AppendBatch validates every transaction before storing any of them.
func (s *Store) AppendBatch(_ context.Context, txs []core.Transaction) (int, error) {
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return 0, err
		}
	}
	s.Seed(txs...)
	return len(txs), nil
}

func (s *Store) Update(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(tx.OwnerID, tx.Kind, tx.ID)
	if i < 0 {
		return core.Transaction{}, ledger.ErrNotFound
	}
	s.items[i] = tx
	return tx, nil
}

func (s *Store) Delete(_ context.Context, owner string, kind core.Kind, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(owner, kind, id)
	if i < 0 {
		return ledger.ErrNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *Store) Get(_ context.Context, owner string, kind core.Kind, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(owner, kind, id)
	if i < 0 {
		return core.Transaction{}, ledger.ErrNotFound
	}
	return s.items[i], nil
}

func (s *Store) QueryRange(_ context.Context, owner string, kind core.Kind, start, end time.Time) ([]core.Transaction, error) {
	return s.query(func(tx core.Transaction) bool {
		return tx.OwnerID == owner && tx.Kind == kind &&
			!tx.Timestamp.Before(start) && tx.Timestamp.Before(end)
	}), nil
}

func (s *Store) QueryAll(_ context.Context, owner string, kind core.Kind) ([]core.Transaction, error) {
	return s.query(func(tx core.Transaction) bool {
		return tx.OwnerID == owner && tx.Kind == kind
	}), nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// query returns a copy of the matching rows ordered by timestamp then ID.
func (s *Store) query(match func(core.Transaction) bool) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0)
	for _, tx := range s.items {
		if match(tx) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

func (s *Store) indexOf(owner string, kind core.Kind, id int64) int {
	for i, tx := range s.items {
		if tx.ID == id && tx.OwnerID == owner && tx.Kind == kind {
			return i
		}
	}
	return -1
}
