// Package aggregate reduces transaction collections into the grouped sums that
// feed every chart and dashboard total.
//
// All functions are pure: they never mutate their inputs, never fail, and
// return freshly allocated empty structures for empty input. Amounts are
// summed as exact decimals; conversion to float happens only in package chart.
package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"finsage/internal/core"
)

// CategoryTotals maps a category name to the summed amount of one kind.
type CategoryTotals map[string]decimal.Decimal

// Categories returns the category names in ascending order.
func (c CategoryTotals) Categories() []string {
	return sortedKeys(c)
}

// Total returns the exact sum of all categories.
func (c CategoryTotals) Total() decimal.Decimal {
	total := decimal.Zero
	for _, name := range c.Categories() {
		total = total.Add(c[name])
	}
	return total
}

// Get returns the amount for name, zero when absent.
func (c CategoryTotals) Get(name string) decimal.Decimal {
	if v, ok := c[name]; ok {
		return v
	}
	return decimal.Zero
}

// CategoryAmount is one entry of an ordered category listing.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// Sorted returns the entries ordered by category name.
func (c CategoryTotals) Sorted() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(c))
	for _, name := range c.Categories() {
		out = append(out, CategoryAmount{Name: name, Amount: c[name]})
	}
	return out
}

// SumByCategory sums amounts of kind inside period, grouped by category.
// Categories without matching transactions are absent from the result.
func SumByCategory(txs []core.Transaction, kind core.Kind, period core.Period) CategoryTotals {
	out := CategoryTotals{}
	for _, tx := range txs {
		if tx.Kind != kind || !period.Contains(tx.Timestamp) {
			continue
		}
		out[tx.Category] = out.Get(tx.Category).Add(tx.Amount)
	}
	return out
}

// Total sums amounts of kind inside period.
func Total(txs []core.Transaction, kind core.Kind, period core.Period) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Kind == kind && period.Contains(tx.Timestamp) {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// SumByCategoryAllTime sums every transaction by category, one map per kind.
func SumByCategoryAllTime(txs []core.Transaction) (income, expense CategoryTotals) {
	income, expense = CategoryTotals{}, CategoryTotals{}
	for _, tx := range txs {
		switch tx.Kind {
		case core.Income:
			income[tx.Category] = income.Get(tx.Category).Add(tx.Amount)
		case core.Expense:
			expense[tx.Category] = expense.Get(tx.Category).Add(tx.Amount)
		}
	}
	return income, expense
}

// CategoryComparison lines up income and expense totals on a shared category axis.
// Income[i] and Expense[i] belong to Categories[i].
type CategoryComparison struct {
	Categories []string
	Income     []decimal.Decimal
	Expense    []decimal.Decimal
}

// IsEmpty reports whether there is no category to compare.
func (c CategoryComparison) IsEmpty() bool {
	return len(c.Categories) == 0
}

// Compare builds the comparison over the union of both category sets.
func Compare(income, expense CategoryTotals) CategoryComparison {
	categories := unionKeys(income, expense)
	out := CategoryComparison{
		Categories: categories,
		Income:     make([]decimal.Decimal, len(categories)),
		Expense:    make([]decimal.Decimal, len(categories)),
	}
	for i, name := range categories {
		out.Income[i] = income.Get(name)
		out.Expense[i] = expense.Get(name)
	}
	return out
}

// Distribution returns the raw amounts of kind inside period in ascending order.
// Binning is left to the renderer.
func Distribution(txs []core.Transaction, kind core.Kind, period core.Period) []decimal.Decimal {
	out := []decimal.Decimal{}
	for _, tx := range txs {
		if tx.Kind == kind && period.Contains(tx.Timestamp) {
			out = append(out, tx.Amount)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LessThan(out[j]) })
	return out
}

// Filter returns the transactions of kind inside period, newest first.
func Filter(txs []core.Transaction, kind core.Kind, period core.Period) []core.Transaction {
	out := []core.Transaction{}
	for _, tx := range txs {
		if tx.Kind == kind && period.Contains(tx.Timestamp) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func unionKeys[V any](maps ...map[string]V) []string {
	seen := map[string]struct{}{}
	for _, m := range maps {
		for k := range m {
			seen[k] = struct{}{}
		}
	}
	return sortedKeys(seen)
}
