package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsage/internal/amqp"
	"finsage/internal/core"
	"finsage/internal/ledger/memory"
	"finsage/internal/log"
	"finsage/internal/report"
)

var now = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func newWorker(t *testing.T) (*DigestWorker, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := report.NewService(store, report.WithClock(func() time.Time { return now }), report.WithLogger(log.Discard()))
	return NewDigestWorker(svc), store
}

func add(store *memory.Store, kind core.Kind, category, amount string, d int) {
	store.Seed(core.Transaction{
		OwnerID:   "u1",
		Kind:      kind,
		Category:  category,
		Amount:    decimal.RequireFromString(amount),
		Timestamp: time.Date(2024, time.March, d, 9, 0, 0, 0, time.UTC),
	})
}

func TestDigestWorker_HandleEventBuildsDigest(t *testing.T) {
	w, store := newWorker(t)
	add(store, core.Income, "Salary", "5000", 1)
	add(store, core.Expense, "Rent", "1200", 2)
	add(store, core.Expense, "Food", "300", 3)
	add(store, core.Expense, "Food", "1000", 4)

	err := w.HandleEvent(context.Background(), amqp.NewTransactionEvent(amqp.ActionCreated, 4, "u1", "expense", "2024-03"))
	require.NoError(t, err)

	d, ok := w.Latest("u1", "2024-03")
	require.True(t, ok)
	assert.True(t, d.TotalIncome.Equal(decimal.NewFromInt(5000)))
	assert.True(t, d.TotalExpense.Equal(decimal.NewFromInt(2500)))
	assert.True(t, d.Net.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, "Food", d.TopExpense)
	assert.Equal(t, 4, d.Entries)
}

func TestDigestWorker_DropsMalformedEvents(t *testing.T) {
	w, _ := newWorker(t)

	err := w.HandleEvent(context.Background(), amqp.NewTransactionEvent(amqp.ActionCreated, 1, "u1", "transfer", "2024-03"))
	assert.ErrorIs(t, err, amqp.ErrDrop)

	err = w.HandleEvent(context.Background(), amqp.NewTransactionEvent(amqp.ActionCreated, 1, "u1", "income", "March"))
	assert.ErrorIs(t, err, amqp.ErrDrop)
}

type downBuilder struct{}

func (downBuilder) Report(context.Context, string, string) (*report.Report, error) {
	return nil, report.ErrStoreUnavailable
}

func TestDigestWorker_StoreFailureRequeues(t *testing.T) {
	w := NewDigestWorker(downBuilder{})

	err := w.HandleEvent(context.Background(), amqp.NewTransactionEvent(amqp.ActionUpdated, 1, "u1", "income", "2024-03"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, report.ErrStoreUnavailable))
	assert.False(t, errors.Is(err, amqp.ErrDrop))

	_, ok := w.Latest("u1", "2024-03")
	assert.False(t, ok)
}

func TestDigestWorker_RefreshAll(t *testing.T) {
	w, store := newWorker(t)
	add(store, core.Income, "Salary", "10", 1)

	require.NoError(t, w.RefreshAll(context.Background(), []string{"u1", "u2"}))
	d, ok := w.Latest("u2", "2024-03")
	require.True(t, ok)
	assert.True(t, d.TotalIncome.IsZero())
	assert.Empty(t, d.TopExpense)

	assert.Error(t, NewDigestWorker(downBuilder{}).RefreshAll(context.Background(), []string{"u1"}))
}
