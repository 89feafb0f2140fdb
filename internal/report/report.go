// Package report assembles the aggregates for one owner and month into the
// bundle consumed by the dashboard and chart renderers.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"finsage/internal/aggregate"
	"finsage/internal/core"
	"finsage/internal/ledger"
)

// ErrStoreUnavailable wraps any transaction store failure during a build.
var ErrStoreUnavailable = errors.New("transaction store unavailable")

// Report is the full set of aggregates for one month.
// Chart fields are nil when their aggregate is empty so renderers can skip them.
type Report struct {
	Period core.Period

	IncomeByCategory  aggregate.CategoryTotals
	ExpenseByCategory aggregate.CategoryTotals
	Trend             aggregate.MonthlySeries
	Comparison        *aggregate.CategoryComparison
	IncomeAmounts     []decimal.Decimal
	ExpenseAmounts    []decimal.Decimal
	Heatmap           *aggregate.Matrix

	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Net          decimal.Decimal
}

// snapshot holds one consistent read of the store for a build.
type snapshot struct {
	monthIncome  []core.Transaction
	monthExpense []core.Transaction
	allIncome    []core.Transaction
	allExpense   []core.Transaction
}

func (s snapshot) all() []core.Transaction {
	out := make([]core.Transaction, 0, len(s.allIncome)+len(s.allExpense))
	out = append(out, s.allIncome...)
	return append(out, s.allExpense...)
}

func (s snapshot) month() []core.Transaction {
	out := make([]core.Transaction, 0, len(s.monthIncome)+len(s.monthExpense))
	out = append(out, s.monthIncome...)
	return append(out, s.monthExpense...)
}

// read runs the range and all-time queries for both kinds concurrently.
// The first failure cancels the others.
func read(ctx context.Context, store ledger.Reader, owner string, period core.Period) (snapshot, error) {
	var s snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		s.monthIncome, err = store.QueryRange(gctx, owner, core.Income, period.Start, period.End)
		if err != nil {
			return fmt.Errorf("query income range: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		s.monthExpense, err = store.QueryRange(gctx, owner, core.Expense, period.Start, period.End)
		if err != nil {
			return fmt.Errorf("query expense range: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		s.allIncome, err = store.QueryAll(gctx, owner, core.Income)
		if err != nil {
			return fmt.Errorf("query all income: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		s.allExpense, err = store.QueryAll(gctx, owner, core.Expense)
		if err != nil {
			return fmt.Errorf("query all expense: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return s, nil
}

// Build resolves monthToken against now and computes every aggregate for owner.
// A store failure aborts the build; no partial report is returned.
func Build(ctx context.Context, store ledger.Reader, owner, monthToken string, now time.Time) (*Report, error) {
	period := core.ResolvePeriod(monthToken, now)
	snap, err := read(ctx, store, owner, period)
	if err != nil {
		return nil, err
	}
	return assemble(snap, period, now), nil
}

func assemble(snap snapshot, period core.Period, now time.Time) *Report {
	month := snap.month()
	all := snap.all()

	r := &Report{
		Period:       period,
		TotalIncome:  aggregate.Total(month, core.Income, period),
		TotalExpense: aggregate.Total(month, core.Expense, period),
	}
	r.Net = r.TotalIncome.Sub(r.TotalExpense)

	if m := aggregate.SumByCategory(month, core.Income, period); len(m) > 0 {
		r.IncomeByCategory = m
	}
	if m := aggregate.SumByCategory(month, core.Expense, period); len(m) > 0 {
		r.ExpenseByCategory = m
	}
	if s := aggregate.SumByMonth(all, aggregate.TrendMonths, now); len(s) > 0 {
		r.Trend = s
	}
	if c := aggregate.Compare(aggregate.SumByCategoryAllTime(all)); !c.IsEmpty() {
		r.Comparison = &c
	}
	if d := aggregate.Distribution(month, core.Income, period); len(d) > 0 {
		r.IncomeAmounts = d
	}
	if d := aggregate.Distribution(month, core.Expense, period); len(d) > 0 {
		r.ExpenseAmounts = d
	}
	if m := aggregate.BuildHeatmapMatrix(all, aggregate.TrendMonths, now); !m.IsEmpty() {
		r.Heatmap = &m
	}
	return r
}

// IsEmpty reports whether every chart field is absent.
func (r *Report) IsEmpty() bool {
	return r.IncomeByCategory == nil && r.ExpenseByCategory == nil && r.Trend == nil &&
		r.Comparison == nil && r.IncomeAmounts == nil && r.ExpenseAmounts == nil && r.Heatmap == nil
}
