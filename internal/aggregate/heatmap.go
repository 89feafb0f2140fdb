package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"finsage/internal/core"
)

// Matrix is a category by month table of combined income and expense sums.
// Cells[i][j] belongs to Categories[i] and Months[j]. Missing pairs are zero.
type Matrix struct {
	Categories []string
	Months     []string
	Cells      [][]decimal.Decimal
}

// IsEmpty reports whether the matrix has no category rows.
func (m Matrix) IsEmpty() bool {
	return len(m.Categories) == 0
}

// Cell returns the value for a category and month key, zero when absent.
func (m Matrix) Cell(category, month string) decimal.Decimal {
	for i, c := range m.Categories {
		if c != category {
			continue
		}
		for j, mo := range m.Months {
			if mo == month {
				return m.Cells[i][j]
			}
		}
	}
	return decimal.Zero
}

// CalendarMonths enumerates calendar months from the month containing the
// window start through the month containing now, inclusive.
func CalendarMonths(windowMonths int, now time.Time) []core.Period {
	last := core.MonthOf(now)
	cur := core.MonthOf(WindowStart(windowMonths, now))
	var out []core.Period
	for !cur.Start.After(last.Start) {
		out = append(out, cur)
		cur = cur.Next()
	}
	return out
}

// BuildHeatmapMatrix builds the category by month matrix. Rows are the
// categories seen in the day window of either kind. Each cell sums every
// transaction of that category in that full calendar month, both kinds
// combined, so edge months are never truncated by the day window.
func BuildHeatmapMatrix(txs []core.Transaction, windowMonths int, now time.Time) Matrix {
	start := WindowStart(windowMonths, now)
	names := map[string]struct{}{}
	for _, tx := range txs {
		if inWindow(tx.Timestamp, start, now) {
			names[tx.Category] = struct{}{}
		}
	}
	if len(names) == 0 {
		return Matrix{}
	}

	categories := sortedKeys(names)
	periods := CalendarMonths(windowMonths, now)
	months := make([]string, len(periods))
	for j, p := range periods {
		months[j] = p.Key()
	}

	cells := make([][]decimal.Decimal, len(categories))
	for i, category := range categories {
		row := make([]decimal.Decimal, len(periods))
		for j, p := range periods {
			sum := decimal.Zero
			for _, tx := range txs {
				if tx.Category == category && p.Contains(tx.Timestamp) {
					sum = sum.Add(tx.Amount)
				}
			}
			row[j] = sum
		}
		cells[i] = row
	}
	return Matrix{Categories: categories, Months: months, Cells: cells}
}
