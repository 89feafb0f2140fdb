// Package chart converts report aggregates into plot-ready float datasets.
// This is the only place amounts leave exact decimal arithmetic.
package chart

import (
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"

	"finsage/internal/aggregate"
	"finsage/internal/report"
)

// Pie is a category breakdown for one kind.
type Pie struct {
	Title  string    `json:"title"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Shares []float64 `json:"shares"` // percent of total, same order as Labels
}

// Series is a two-kind chart on a shared label axis (trend line or comparison bars).
type Series struct {
	Title   string    `json:"title"`
	Labels  []string  `json:"labels"`
	Income  []float64 `json:"income"`
	Expense []float64 `json:"expense"`
}

// Grid is the category by month heatmap.
type Grid struct {
	Title   string      `json:"title"`
	Rows    []string    `json:"rows"`
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Set holds one dataset per chart. A nil field means there is nothing to draw.
type Set struct {
	Month            string     `json:"month"`
	IncomePie        *Pie       `json:"income_pie"`
	ExpensePie       *Pie       `json:"expense_pie"`
	Trend            *Series    `json:"trend"`
	Comparison       *Series    `json:"comparison"`
	IncomeHistogram  *Histogram `json:"income_histogram"`
	ExpenseHistogram *Histogram `json:"expense_histogram"`
	Heatmap          *Grid      `json:"heatmap"`
}

// FromReport builds every dataset the report has data for.
func FromReport(r *report.Report) Set {
	s := Set{Month: r.Period.Key()}
	if r.IncomeByCategory != nil {
		s.IncomePie = newPie("Income by Category", r.IncomeByCategory)
	}
	if r.ExpenseByCategory != nil {
		s.ExpensePie = newPie("Expenses by Category", r.ExpenseByCategory)
	}
	if r.Trend != nil {
		s.Trend = newTrend(r.Trend)
	}
	if r.Comparison != nil {
		s.Comparison = &Series{
			Title:   "Income vs Expenses by Category",
			Labels:  r.Comparison.Categories,
			Income:  toFloats(r.Comparison.Income),
			Expense: toFloats(r.Comparison.Expense),
		}
	}
	if r.IncomeAmounts != nil {
		s.IncomeHistogram = NewHistogram("Income Distribution", toFloats(r.IncomeAmounts), DefaultBins)
	}
	if r.ExpenseAmounts != nil {
		s.ExpenseHistogram = NewHistogram("Expense Distribution", toFloats(r.ExpenseAmounts), DefaultBins)
	}
	if r.Heatmap != nil {
		s.Heatmap = newGrid(*r.Heatmap)
	}
	return s
}

func newPie(title string, totals aggregate.CategoryTotals) *Pie {
	p := &Pie{Title: title}
	for _, e := range totals.Sorted() {
		p.Labels = append(p.Labels, e.Name)
		p.Values = append(p.Values, e.Amount.InexactFloat64())
	}
	p.Shares = make([]float64, len(p.Values))
	if sum := floats.Sum(p.Values); sum > 0 {
		floats.ScaleTo(p.Shares, 100/sum, p.Values)
	}
	return p
}

func newTrend(series aggregate.MonthlySeries) *Series {
	s := &Series{Title: "Income vs Expenses (Last 6 Months)", Labels: series.Months()}
	for _, p := range series {
		s.Income = append(s.Income, p.Income.InexactFloat64())
		s.Expense = append(s.Expense, p.Expense.InexactFloat64())
	}
	return s
}

func newGrid(m aggregate.Matrix) *Grid {
	g := &Grid{
		Title:   "Category Spending Heatmap",
		Rows:    m.Categories,
		Columns: m.Months,
		Values:  make([][]float64, len(m.Cells)),
	}
	for i, row := range m.Cells {
		g.Values[i] = toFloats(row)
	}
	return g
}

func toFloats(in []decimal.Decimal) []float64 {
	out := make([]float64, len(in))
	for i, d := range in {
		out[i] = d.InexactFloat64()
	}
	return out
}
