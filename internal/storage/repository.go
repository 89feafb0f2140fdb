package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"finsage/internal/core"
	"finsage/internal/ledger"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

var (
	_ ledger.Store         = (*SQLiteRepository)(nil)
	_ ledger.Pinger        = (*SQLiteRepository)(nil)
	_ ledger.BatchAppender = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := MigrateUp(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("SQLite schema ready", "path", dbPath, "version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Append implements ledger.Writer
func (r *SQLiteRepository) Append(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		OwnerID:     tx.OwnerID,
		Kind:        tx.Kind.String(),
		Category:    tx.Category,
		AmountCents: toCents(tx.Amount),
		OccurredAt:  tx.Timestamp.UnixMilli(),
		Now:         r.now().UnixMilli(),
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", row.ID,
		"kind", row.Kind,
		"category", row.Category,
		"amount_cents", row.AmountCents)

	return fromRow(row), nil
}

// Update implements ledger.Writer
func (r *SQLiteRepository) Update(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	n, err := r.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		ID:          tx.ID,
		OwnerID:     tx.OwnerID,
		Kind:        tx.Kind.String(),
		Category:    tx.Category,
		AmountCents: toCents(tx.Amount),
		OccurredAt:  tx.Timestamp.UnixMilli(),
		Now:         r.now().UnixMilli(),
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", tx.ID, err)
	}
	if n == 0 {
		return core.Transaction{}, ledger.ErrNotFound
	}
	return r.Get(ctx, tx.OwnerID, tx.Kind, tx.ID)
}

// Delete implements ledger.Writer
func (r *SQLiteRepository) Delete(ctx context.Context, owner string, kind core.Kind, id int64) error {
	n, err := r.queries.DeleteTransaction(ctx, id, owner, kind.String())
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

// Get implements ledger.Writer
func (r *SQLiteRepository) Get(ctx context.Context, owner string, kind core.Kind, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id, owner, kind.String())
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return fromRow(row), nil
}

// QueryRange implements ledger.Reader
func (r *SQLiteRepository) QueryRange(ctx context.Context, owner string, kind core.Kind, start, end time.Time) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactionsInRange(ctx, owner, kind.String(), start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list %s in range: %w", kind, err)
	}
	return fromRows(rows), nil
}

// QueryAll implements ledger.Reader
func (r *SQLiteRepository) QueryAll(ctx context.Context, owner string, kind core.Kind) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx, owner, kind.String())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return fromRows(rows), nil
}

// AppendBatch inserts all transactions in a single database transaction.
func (r *SQLiteRepository) AppendBatch(ctx context.Context, txs []core.Transaction) (int, error) {
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return 0, err
		}
	}
	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer dbtx.Rollback()

	q := r.queries.WithTx(dbtx)
	now := r.now().UnixMilli()
	for _, tx := range txs {
		if _, err := q.CreateTransaction(ctx, CreateTransactionParams{
			OwnerID:     tx.OwnerID,
			Kind:        tx.Kind.String(),
			Category:    tx.Category,
			AmountCents: toCents(tx.Amount),
			OccurredAt:  tx.Timestamp.UnixMilli(),
			Now:         now,
		}); err != nil {
			return 0, fmt.Errorf("create transaction: %w", err)
		}
	}
	if err := dbtx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(txs), nil
}

func toCents(d decimal.Decimal) int64 {
	return d.Round(core.AmountPlaces).Shift(core.AmountPlaces).IntPart()
}

func fromRow(row Row) core.Transaction {
	return core.Transaction{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		Kind:      core.Kind(row.Kind),
		Category:  row.Category,
		Amount:    decimal.New(row.AmountCents, -core.AmountPlaces),
		Timestamp: time.UnixMilli(row.OccurredAt).UTC(),
	}
}

func fromRows(rows []Row) []core.Transaction {
	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		out[i] = fromRow(row)
	}
	return out
}
