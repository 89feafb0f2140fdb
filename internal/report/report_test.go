package report

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsage/internal/core"
	"finsage/internal/ledger/memory"
	"finsage/internal/log"
)

var now = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func tx(owner string, kind core.Kind, category, amount string, ts time.Time) core.Transaction {
	return core.Transaction{
		OwnerID:   owner,
		Kind:      kind,
		Category:  category,
		Amount:    decimal.RequireFromString(amount),
		Timestamp: ts,
	}
}

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 9, 0, 0, 0, time.UTC)
}

func seeded() *memory.Store {
	s := memory.New()
	s.Seed(
		tx("u1", core.Income, "Salary", "5000", day(time.March, 1)),
		tx("u1", core.Income, "Freelance", "750.50", day(time.March, 10)),
		tx("u1", core.Expense, "Rent", "1200", day(time.March, 2)),
		tx("u1", core.Expense, "Food", "100", day(time.March, 5)),
		tx("u1", core.Expense, "Food", "50", day(time.March, 20)),
		tx("u1", core.Income, "Salary", "5000", day(time.February, 1)),
		tx("u1", core.Expense, "Rent", "1200", day(time.February, 2)),
		tx("u2", core.Expense, "Other", "999", day(time.March, 3)),
	)
	return s
}

type failingStore struct {
	err       error
	failRange bool
}

func (f failingStore) QueryRange(ctx context.Context, _ string, _ core.Kind, _, _ time.Time) ([]core.Transaction, error) {
	if f.failRange {
		return nil, f.err
	}
	return nil, nil
}

func (f failingStore) QueryAll(ctx context.Context, _ string, _ core.Kind) ([]core.Transaction, error) {
	if !f.failRange {
		return nil, f.err
	}
	return nil, nil
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestBuild_FullReport(t *testing.T) {
	r, err := Build(context.Background(), seeded(), "u1", "2024-03", now)
	require.NoError(t, err)

	assert.Equal(t, "2024-03", r.Period.Key())
	assert.Equal(t, []string{"Freelance", "Salary"}, r.IncomeByCategory.Categories())
	assertDecimal(t, "150", r.ExpenseByCategory["Food"])
	assertDecimal(t, "5750.50", r.TotalIncome)
	assertDecimal(t, "1350", r.TotalExpense)
	assertDecimal(t, "4400.50", r.Net)

	require.Len(t, r.Trend, 2)
	assert.Equal(t, []string{"2024-02", "2024-03"}, r.Trend.Months())

	require.NotNil(t, r.Comparison)
	assert.Equal(t, []string{"Food", "Freelance", "Rent", "Salary"}, r.Comparison.Categories)

	require.Len(t, r.ExpenseAmounts, 3)
	assertDecimal(t, "50", r.ExpenseAmounts[0])
	assertDecimal(t, "1200", r.ExpenseAmounts[2])

	require.NotNil(t, r.Heatmap)
	assertDecimal(t, "10000", r.Heatmap.Cell("Salary", "2024-03").Add(r.Heatmap.Cell("Salary", "2024-02")))
	assert.False(t, r.IsEmpty())
}

func TestBuild_EmptyStoreMarksEverythingAbsent(t *testing.T) {
	r, err := Build(context.Background(), memory.New(), "u1", "", now)
	require.NoError(t, err)

	assert.True(t, r.IsEmpty())
	assert.Nil(t, r.IncomeByCategory)
	assert.Nil(t, r.ExpenseByCategory)
	assert.Nil(t, r.Trend)
	assert.Nil(t, r.Comparison)
	assert.Nil(t, r.IncomeAmounts)
	assert.Nil(t, r.ExpenseAmounts)
	assert.Nil(t, r.Heatmap)
	assert.True(t, r.Net.IsZero())
	assert.Equal(t, "2024-03", r.Period.Key())
}

func TestBuild_MonthWithoutDataKeepsAllTimeCharts(t *testing.T) {
	r, err := Build(context.Background(), seeded(), "u1", "2023-06", now)
	require.NoError(t, err)

	assert.Nil(t, r.IncomeByCategory)
	assert.Nil(t, r.ExpenseAmounts)
	assert.NotNil(t, r.Comparison)
	assert.NotNil(t, r.Trend)
	assert.NotNil(t, r.Heatmap)
}

func TestBuild_MalformedTokenFallsBack(t *testing.T) {
	r, err := Build(context.Background(), seeded(), "u1", "March", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-03", r.Period.Key())
}

func TestBuild_StoreFailureAborts(t *testing.T) {
	boom := errors.New("connection refused")
	for _, failRange := range []bool{true, false} {
		r, err := Build(context.Background(), failingStore{err: boom, failRange: failRange}, "u1", "2024-03", now)
		assert.Nil(t, r)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.ErrorIs(t, err, boom)
	}
}

func TestBuild_ConcurrentOwners(t *testing.T) {
	store := seeded()
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		owner := "u1"
		if i%2 == 1 {
			owner = "u2"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := Build(context.Background(), store, owner, "2024-03", now)
			if err != nil {
				errs <- err
				return
			}
			if owner == "u2" && !r.TotalExpense.Equal(decimal.NewFromInt(999)) {
				errs <- errors.New("owner data leaked")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestBuildDashboard(t *testing.T) {
	d, err := BuildDashboard(context.Background(), seeded(), "u1", "2024-03", now)
	require.NoError(t, err)

	assertDecimal(t, "5750.50", d.TotalIncome)
	assertDecimal(t, "1350", d.TotalExpense)
	assertDecimal(t, "4400.50", d.Net)
	require.Len(t, d.Incomes, 2)
	assert.Equal(t, "Freelance", d.Incomes[0].Category)
	require.Len(t, d.Expenses, 3)
	assert.Equal(t, "Food", d.Expenses[0].Category)
	assert.Equal(t, []string{"2024-03", "2024-02"}, d.AvailableMonths)
}

func TestBuildDashboard_StoreFailure(t *testing.T) {
	_, err := BuildDashboard(context.Background(), failingStore{err: errors.New("down"), failRange: true}, "u1", "", now)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestService_UsesClockAndLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 2024-03-31 20:00 UTC is already April in IST
	clock := func() time.Time { return time.Date(2024, time.March, 31, 20, 0, 0, 0, time.UTC) }
	svc := NewService(memory.New(), WithClock(clock), WithLocation(ist), WithLogger(log.Discard()))

	r, err := svc.Report(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-04", r.Period.Key())
	assert.Equal(t, ist, r.Period.Start.Location())
}

func TestService_LogsFallback(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelDebug, Component: log.ComponentReport, Output: &buf})
	svc := NewService(seeded(), WithClock(func() time.Time { return now }), WithLogger(logger))

	d, err := svc.Dashboard(context.Background(), "u1", "2024-13")
	require.NoError(t, err)
	assert.Equal(t, "2024-03", d.Period.Key())
	assert.Contains(t, buf.String(), "Invalid month token")
	assert.Contains(t, buf.String(), "month_token=2024-13")
}
