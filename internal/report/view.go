package report

import (
	"time"

	"github.com/shopspring/decimal"

	"finsage/internal/aggregate"
	"finsage/internal/core"
)

// dateLayout is the wire format of a transaction date.
const dateLayout = "2006-01-02"

// TransactionView is the JSON shape of one transaction.
type TransactionView struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Category  string    `json:"category"`
	Amount    string    `json:"amount"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionView(tx core.Transaction) TransactionView {
	return TransactionView{
		ID:        tx.ID,
		Kind:      tx.Kind.String(),
		Category:  tx.Category,
		Amount:    fixed(tx.Amount),
		Date:      tx.Timestamp.Format(dateLayout),
		Timestamp: tx.Timestamp,
	}
}

type CategoryAmountView struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

type MonthTotalsView struct {
	Month   string `json:"month"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

type ComparisonView struct {
	Categories []string `json:"categories"`
	Income     []string `json:"income"`
	Expense    []string `json:"expense"`
}

type HeatmapView struct {
	Categories []string   `json:"categories"`
	Months     []string   `json:"months"`
	Cells      [][]string `json:"cells"`
}

// View is the JSON shape of a Report. Amounts are fixed two-place strings
// and absent aggregates encode as null.
type View struct {
	Month             string               `json:"month"`
	TotalIncome       string               `json:"total_income"`
	TotalExpense      string               `json:"total_expense"`
	Net               string               `json:"net"`
	IncomeByCategory  []CategoryAmountView `json:"income_by_category"`
	ExpenseByCategory []CategoryAmountView `json:"expense_by_category"`
	Trend             []MonthTotalsView    `json:"trend"`
	Comparison        *ComparisonView      `json:"comparison"`
	IncomeAmounts     []string             `json:"income_amounts"`
	ExpenseAmounts    []string             `json:"expense_amounts"`
	Heatmap           *HeatmapView         `json:"heatmap"`
}

func (r *Report) View() View {
	v := View{
		Month:             r.Period.Key(),
		TotalIncome:       fixed(r.TotalIncome),
		TotalExpense:      fixed(r.TotalExpense),
		Net:               fixed(r.Net),
		IncomeByCategory:  categoryViews(r.IncomeByCategory),
		ExpenseByCategory: categoryViews(r.ExpenseByCategory),
		IncomeAmounts:     formatAll(r.IncomeAmounts),
		ExpenseAmounts:    formatAll(r.ExpenseAmounts),
	}
	for _, p := range r.Trend {
		v.Trend = append(v.Trend, MonthTotalsView{
			Month:   p.Month,
			Income:  fixed(p.Income),
			Expense: fixed(p.Expense),
		})
	}
	if r.Comparison != nil {
		v.Comparison = &ComparisonView{
			Categories: r.Comparison.Categories,
			Income:     formatAll(r.Comparison.Income),
			Expense:    formatAll(r.Comparison.Expense),
		}
	}
	if r.Heatmap != nil {
		cells := make([][]string, len(r.Heatmap.Cells))
		for i, row := range r.Heatmap.Cells {
			cells[i] = formatAll(row)
		}
		v.Heatmap = &HeatmapView{
			Categories: r.Heatmap.Categories,
			Months:     r.Heatmap.Months,
			Cells:      cells,
		}
	}
	return v
}

// DashboardView is the JSON shape of a Dashboard.
type DashboardView struct {
	Month           string            `json:"month"`
	TotalIncome     string            `json:"total_income"`
	TotalExpense    string            `json:"total_expense"`
	Net             string            `json:"net"`
	Incomes         []TransactionView `json:"incomes"`
	Expenses        []TransactionView `json:"expenses"`
	AvailableMonths []string          `json:"available_months"`
}

func (d *Dashboard) View() DashboardView {
	return DashboardView{
		Month:           d.Period.Key(),
		TotalIncome:     fixed(d.TotalIncome),
		TotalExpense:    fixed(d.TotalExpense),
		Net:             fixed(d.Net),
		Incomes:         transactionViews(d.Incomes),
		Expenses:        transactionViews(d.Expenses),
		AvailableMonths: d.AvailableMonths,
	}
}

func transactionViews(txs []core.Transaction) []TransactionView {
	out := make([]TransactionView, len(txs))
	for i, tx := range txs {
		out[i] = NewTransactionView(tx)
	}
	return out
}

func categoryViews(m aggregate.CategoryTotals) []CategoryAmountView {
	if m == nil {
		return nil
	}
	var out []CategoryAmountView
	for _, e := range m.Sorted() {
		out = append(out, CategoryAmountView{Category: e.Name, Amount: fixed(e.Amount)})
	}
	return out
}

func fixed(d decimal.Decimal) string {
	return d.StringFixed(core.AmountPlaces)
}

func formatAll(ds []decimal.Decimal) []string {
	if ds == nil {
		return nil
	}
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = fixed(d)
	}
	return out
}
