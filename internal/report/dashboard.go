package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"finsage/internal/aggregate"
	"finsage/internal/core"
	"finsage/internal/ledger"
)

// Dashboard is the month overview shown on the landing page.
type Dashboard struct {
	Period          core.Period
	TotalIncome     decimal.Decimal
	TotalExpense    decimal.Decimal
	Net             decimal.Decimal
	Incomes         []core.Transaction // newest first
	Expenses        []core.Transaction // newest first
	AvailableMonths []string           // newest first, always includes the current month
}

// BuildDashboard computes the month overview for owner.
func BuildDashboard(ctx context.Context, store ledger.Reader, owner, monthToken string, now time.Time) (*Dashboard, error) {
	period := core.ResolvePeriod(monthToken, now)
	snap, err := read(ctx, store, owner, period)
	if err != nil {
		return nil, err
	}

	month := snap.month()
	d := &Dashboard{
		Period:          period,
		TotalIncome:     aggregate.Total(month, core.Income, period),
		TotalExpense:    aggregate.Total(month, core.Expense, period),
		Incomes:         aggregate.Filter(month, core.Income, period),
		Expenses:        aggregate.Filter(month, core.Expense, period),
		AvailableMonths: aggregate.AvailableMonths(snap.all(), now),
	}
	d.Net = d.TotalIncome.Sub(d.TotalExpense)
	return d, nil
}
