package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finsage/internal/core"
)

// TrendMonths is the trailing window used by the trend and heatmap charts.
const TrendMonths = 6

// daysPerWindowMonth approximates a month when computing the trailing window start.
const daysPerWindowMonth = 30

// MonthTotals is one point of a monthly series.
type MonthTotals struct {
	Month   string
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// MonthlySeries is ordered by Month ascending with no duplicate keys.
type MonthlySeries []MonthTotals

// Months returns the month keys in series order.
func (s MonthlySeries) Months() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Month
	}
	return out
}

// WindowStart returns now minus windowMonths*30 days.
func WindowStart(windowMonths int, now time.Time) time.Time {
	return now.AddDate(0, 0, -windowMonths*daysPerWindowMonth)
}

func inWindow(t, start, now time.Time) bool {
	return !t.Before(start) && !t.After(now)
}

// SumByMonth sums both kinds per YYYY-MM month over the trailing day window
// [now-windowMonths*30d, now]. Only months with at least one transaction appear;
// a month missing one kind reports zero for it.
func SumByMonth(txs []core.Transaction, windowMonths int, now time.Time) MonthlySeries {
	start := WindowStart(windowMonths, now)
	loc := now.Location()

	income := map[string]decimal.Decimal{}
	expense := map[string]decimal.Decimal{}
	for _, tx := range txs {
		if !inWindow(tx.Timestamp, start, now) {
			continue
		}
		key := tx.MonthKey(loc)
		switch tx.Kind {
		case core.Income:
			income[key] = getOrZero(income, key).Add(tx.Amount)
		case core.Expense:
			expense[key] = getOrZero(expense, key).Add(tx.Amount)
		}
	}

	months := unionKeys(income, expense)
	out := make(MonthlySeries, 0, len(months))
	for _, m := range months {
		out = append(out, MonthTotals{
			Month:   m,
			Income:  getOrZero(income, m),
			Expense: getOrZero(expense, m),
		})
	}
	return out
}

// AvailableMonths lists every month with activity plus the month of now,
// newest first.
func AvailableMonths(txs []core.Transaction, now time.Time) []string {
	loc := now.Location()
	seen := map[string]struct{}{
		now.Format(core.MonthLayout): {},
	}
	for _, tx := range txs {
		seen[tx.MonthKey(loc)] = struct{}{}
	}
	out := sortedKeys(seen)
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

func getOrZero(m map[string]decimal.Decimal, key string) decimal.Decimal {
	if v, ok := m[key]; ok {
		return v
	}
	return decimal.Zero
}
