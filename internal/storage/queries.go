package storage

import (
	"context"
	"database/sql"
)

// Row mirrors the transactions table.
type Row struct {
	ID          int64
	OwnerID     string
	Kind        string
	Category    string
	AmountCents int64
	OccurredAt  int64 // unix milliseconds
	CreatedAt   int64
	UpdatedAt   int64
}

type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the prepared SQL for the transactions table.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx runs the same queries inside tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const selectColumns = `SELECT id, owner_id, kind, category, amount_cents, occurred_at, created_at, updated_at FROM transactions`

const createTransaction = `INSERT INTO transactions (owner_id, kind, category, amount_cents, occurred_at, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, owner_id, kind, category, amount_cents, occurred_at, created_at, updated_at`

type CreateTransactionParams struct {
	OwnerID     string
	Kind        string
	Category    string
	AmountCents int64
	OccurredAt  int64
	Now         int64
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Row, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.OwnerID, arg.Kind, arg.Category, arg.AmountCents, arg.OccurredAt, arg.Now, arg.Now)
	return scanRow(row)
}

const updateTransaction = `UPDATE transactions
SET category = ?, amount_cents = ?, occurred_at = ?, updated_at = ?
WHERE id = ? AND owner_id = ? AND kind = ?`

type UpdateTransactionParams struct {
	ID          int64
	OwnerID     string
	Kind        string
	Category    string
	AmountCents int64
	OccurredAt  int64
	Now         int64
}

// UpdateTransaction returns the number of rows changed.
func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		arg.Category, arg.AmountCents, arg.OccurredAt, arg.Now, arg.ID, arg.OwnerID, arg.Kind)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ? AND owner_id = ? AND kind = ?`

// DeleteTransaction returns the number of rows removed.
func (q *Queries) DeleteTransaction(ctx context.Context, id int64, owner, kind string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id, owner, kind)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getTransaction = selectColumns + ` WHERE id = ? AND owner_id = ? AND kind = ?`

func (q *Queries) GetTransaction(ctx context.Context, id int64, owner, kind string) (Row, error) {
	return scanRow(q.db.QueryRowContext(ctx, getTransaction, id, owner, kind))
}

const listTransactionsInRange = selectColumns + `
WHERE owner_id = ? AND kind = ? AND occurred_at >= ? AND occurred_at < ?
ORDER BY occurred_at, id`

func (q *Queries) ListTransactionsInRange(ctx context.Context, owner, kind string, start, end int64) ([]Row, error) {
	return q.list(ctx, listTransactionsInRange, owner, kind, start, end)
}

const listTransactions = selectColumns + `
WHERE owner_id = ? AND kind = ?
ORDER BY occurred_at, id`

func (q *Queries) ListTransactions(ctx context.Context, owner, kind string) ([]Row, error) {
	return q.list(ctx, listTransactions, owner, kind)
}

func (q *Queries) list(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Row{}
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (Row, error) {
	var r Row
	err := s.Scan(&r.ID, &r.OwnerID, &r.Kind, &r.Category, &r.AmountCents, &r.OccurredAt, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}
