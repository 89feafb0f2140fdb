package aggregate

import (
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsage/internal/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func tx(kind core.Kind, category, amount string, ts time.Time) core.Transaction {
	return core.Transaction{
		OwnerID:   "u1",
		Kind:      kind,
		Category:  category,
		Amount:    decimal.RequireFromString(amount),
		Timestamp: ts,
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func feb2024() core.Period {
	return core.ResolvePeriod("2024-02", day(2024, time.June, 1))
}

func TestSumByCategory_SameCategoryAccumulates(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Expense, "Food", "100", day(2024, time.February, 5)),
		tx(core.Expense, "Food", "50", day(2024, time.February, 20)),
	}

	got := SumByCategory(txs, core.Expense, feb2024())

	require.Len(t, got, 1)
	assertDecimal(t, "150", got["Food"])
}

func TestSumByCategory_FiltersKindAndPeriod(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Expense, "Food", "10.10", day(2024, time.February, 1)),
		tx(core.Expense, "Rent", "900", day(2024, time.February, 3)),
		tx(core.Income, "Salary", "5000", day(2024, time.February, 3)),
		tx(core.Expense, "Food", "99", day(2024, time.March, 1)),
		tx(core.Expense, "Food", "77", day(2024, time.January, 31)),
	}

	got := SumByCategory(txs, core.Expense, feb2024())

	assert.Equal(t, []string{"Food", "Rent"}, got.Categories())
	assertDecimal(t, "10.10", got["Food"])
	assertDecimal(t, "900", got["Rent"])
	assertDecimal(t, "910.10", got.Total())
}

func TestSumByCategory_HalfOpenBoundary(t *testing.T) {
	p := feb2024()
	txs := []core.Transaction{
		tx(core.Expense, "AtStart", "1", p.Start),
		tx(core.Expense, "AtEnd", "1", p.End),
		tx(core.Expense, "JustBeforeEnd", "1", p.End.Add(-time.Nanosecond)),
	}

	got := SumByCategory(txs, core.Expense, p)

	assert.Equal(t, []string{"AtStart", "JustBeforeEnd"}, got.Categories())
}

func TestSumByCategory_ExactDecimalSum(t *testing.T) {
	var txs []core.Transaction
	for i := 0; i < 10; i++ {
		txs = append(txs, tx(core.Expense, "Coffee", "0.10", day(2024, time.February, 1+i)))
	}

	got := SumByCategory(txs, core.Expense, feb2024())

	assertDecimal(t, "1.00", got["Coffee"])
}

func TestSumByCategory_TotalMatchesDirectSum(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	categories := []string{"Food", "Rent", "Travel", "Salary"}
	var txs []core.Transaction
	for i := 0; i < 500; i++ {
		kind := core.Income
		if rng.Intn(2) == 0 {
			kind = core.Expense
		}
		amount := decimal.New(int64(rng.Intn(1_000_000)), -2)
		ts := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).
			Add(time.Duration(rng.Intn(90*24)) * time.Hour)
		txs = append(txs, core.Transaction{
			Kind:      kind,
			Category:  categories[rng.Intn(len(categories))],
			Amount:    amount,
			Timestamp: ts,
		})
	}

	for _, kind := range core.Kinds() {
		p := feb2024()
		want := decimal.Zero
		for _, x := range txs {
			if x.Kind == kind && p.Contains(x.Timestamp) {
				want = want.Add(x.Amount)
			}
		}
		assert.True(t, want.Equal(SumByCategory(txs, kind, p).Total()), kind)
		assert.True(t, want.Equal(Total(txs, kind, p)), kind)
	}
}

func TestEmptyInput(t *testing.T) {
	now := day(2024, time.March, 15)
	p := core.MonthOf(now)

	assert.Empty(t, SumByCategory(nil, core.Income, p))
	assert.NotNil(t, SumByCategory(nil, core.Income, p))
	assert.Empty(t, SumByMonth(nil, TrendMonths, now))
	income, expense := SumByCategoryAllTime(nil)
	assert.Empty(t, income)
	assert.Empty(t, expense)
	assert.True(t, Compare(income, expense).IsEmpty())
	assert.True(t, BuildHeatmapMatrix(nil, TrendMonths, now).IsEmpty())
	assert.Empty(t, Distribution(nil, core.Expense, p))
	assert.True(t, Total(nil, core.Expense, p).IsZero())
	assert.Equal(t, []string{"2024-03"}, AvailableMonths(nil, now))
}

func TestSumByCategoryAllTime_AndCompare(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Income, "Salary", "5000", day(2020, time.January, 1)),
		tx(core.Income, "Salary", "5000", day(2024, time.January, 1)),
		tx(core.Income, "Business", "700", day(2023, time.May, 1)),
		tx(core.Expense, "Rent", "1200", day(2022, time.July, 1)),
		tx(core.Expense, "Business", "300", day(2023, time.May, 2)),
	}

	income, expense := SumByCategoryAllTime(txs)
	assertDecimal(t, "10000", income["Salary"])
	assertDecimal(t, "700", income["Business"])
	assertDecimal(t, "1200", expense["Rent"])

	cmp := Compare(income, expense)
	assert.Equal(t, []string{"Business", "Rent", "Salary"}, cmp.Categories)
	require.Len(t, cmp.Income, 3)
	require.Len(t, cmp.Expense, 3)
	assertDecimal(t, "700", cmp.Income[0])
	assertDecimal(t, "300", cmp.Expense[0])
	assertDecimal(t, "0", cmp.Income[1])
	assertDecimal(t, "1200", cmp.Expense[1])
	assertDecimal(t, "10000", cmp.Income[2])
	assertDecimal(t, "0", cmp.Expense[2])
}

func TestDistribution_SortedAscending(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Expense, "A", "30", day(2024, time.February, 3)),
		tx(core.Expense, "B", "10", day(2024, time.February, 1)),
		tx(core.Expense, "C", "20", day(2024, time.February, 2)),
		tx(core.Income, "D", "5", day(2024, time.February, 2)),
		tx(core.Expense, "E", "1", day(2024, time.March, 2)),
	}

	got := Distribution(txs, core.Expense, feb2024())

	require.Len(t, got, 3)
	assertDecimal(t, "10", got[0])
	assertDecimal(t, "20", got[1])
	assertDecimal(t, "30", got[2])
}

func TestFilter_NewestFirst(t *testing.T) {
	a := tx(core.Income, "A", "1", day(2024, time.February, 3))
	a.ID = 1
	b := tx(core.Income, "B", "1", day(2024, time.February, 10))
	b.ID = 2
	c := tx(core.Income, "C", "1", day(2024, time.February, 3))
	c.ID = 3

	got := Filter([]core.Transaction{a, b, c}, core.Income, feb2024())

	require.Len(t, got, 3)
	assert.Equal(t, []int64{2, 3, 1}, []int64{got[0].ID, got[1].ID, got[2].ID})
}

func TestAggregatorsDoNotMutateInput(t *testing.T) {
	now := day(2024, time.March, 15)
	txs := []core.Transaction{
		tx(core.Expense, "Zeta", "3", day(2024, time.March, 3)),
		tx(core.Income, "Alpha", "2", day(2024, time.January, 3)),
		tx(core.Expense, "Mid", "1", day(2024, time.March, 1)),
	}
	snapshot := slices.Clone(txs)
	p := core.MonthOf(now)

	first := SumByMonth(txs, TrendMonths, now)
	_ = SumByCategory(txs, core.Expense, p)
	_ = Distribution(txs, core.Expense, p)
	_ = Filter(txs, core.Expense, p)
	firstMatrix := BuildHeatmapMatrix(txs, TrendMonths, now)

	assert.Equal(t, snapshot, txs)
	assert.Equal(t, first, SumByMonth(txs, TrendMonths, now))
	assert.Equal(t, firstMatrix, BuildHeatmapMatrix(txs, TrendMonths, now))
}
