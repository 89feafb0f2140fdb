package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"finsage/internal/aggregate"
	"finsage/internal/core"
	"finsage/internal/ledger"
)

var (
	SampleIncomeCategories = []string{
		"Salary", "Freelance", "Investment", "Bonus", "Rental Income",
		"Side Business", "Consulting", "Online Sales", "Commission",
	}
	SampleExpenseCategories = []string{
		"Food & Dining", "Transportation", "Housing", "Utilities", "Entertainment",
		"Healthcare", "Shopping", "Education", "Travel", "Insurance",
		"Groceries", "Restaurants", "Gas", "Public Transport", "Rent",
		"Electricity", "Internet", "Phone", "Movies", "Gym",
	}
)

// SeedResult summarises a seeding run.
type SeedResult struct {
	Incomes      int
	Expenses     int
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	FirstMonth   string
	LastMonth    string
}

// Seeder generates sample transactions for demos.
type Seeder struct {
	reader ledger.Reader
	writer ledger.Writer
	rng    *rand.Rand
}

func NewSeeder(reader ledger.Reader, writer ledger.Writer, rng *rand.Rand) *Seeder {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Seeder{reader: reader, writer: writer, rng: rng}
}

// Generate builds 2-5 incomes and 8-15 expenses for every calendar month of the
// trailing window ending at now. Days fall on 1-28 at midnight in now's location.
func (s *Seeder) Generate(owner string, windowMonths int, now time.Time) []core.Transaction {
	var out []core.Transaction
	for _, month := range aggregate.CalendarMonths(windowMonths, now) {
		for i, n := 0, 2+s.rng.Intn(4); i < n; i++ {
			out = append(out, s.sample(owner, core.Income, SampleIncomeCategories, 1000, 15000, month))
		}
		for i, n := 0, 8+s.rng.Intn(8); i < n; i++ {
			out = append(out, s.sample(owner, core.Expense, SampleExpenseCategories, 50, 2000, month))
		}
	}
	return out
}

func (s *Seeder) sample(owner string, kind core.Kind, categories []string, lo, hi float64, month core.Period) core.Transaction {
	amount := decimal.NewFromFloat(lo + s.rng.Float64()*(hi-lo)).Round(core.AmountPlaces)
	day := 1 + s.rng.Intn(28)
	return core.Transaction{
		OwnerID:   owner,
		Kind:      kind,
		Category:  categories[s.rng.Intn(len(categories))],
		Amount:    amount,
		Timestamp: month.Start.AddDate(0, 0, day-1),
	}
}

// Seed clears the owner's existing data when reset is set, then stores a fresh sample.
func (s *Seeder) Seed(ctx context.Context, owner string, windowMonths int, now time.Time, reset bool) (SeedResult, error) {
	if reset {
		if err := s.clear(ctx, owner); err != nil {
			return SeedResult{}, err
		}
	}

	txs := s.Generate(owner, windowMonths, now)
	if batch, ok := s.writer.(ledger.BatchAppender); ok {
		if _, err := batch.AppendBatch(ctx, txs); err != nil {
			return SeedResult{}, fmt.Errorf("append sample batch: %w", err)
		}
	} else {
		for _, tx := range txs {
			if _, err := s.writer.Append(ctx, tx); err != nil {
				return SeedResult{}, fmt.Errorf("append sample: %w", err)
			}
		}
	}

	res := SeedResult{TotalIncome: decimal.Zero, TotalExpense: decimal.Zero}
	for _, tx := range txs {
		switch tx.Kind {
		case core.Income:
			res.Incomes++
			res.TotalIncome = res.TotalIncome.Add(tx.Amount)
		case core.Expense:
			res.Expenses++
			res.TotalExpense = res.TotalExpense.Add(tx.Amount)
		}
	}
	months := aggregate.CalendarMonths(windowMonths, now)
	res.FirstMonth, res.LastMonth = months[0].Key(), months[len(months)-1].Key()
	return res, nil
}

func (s *Seeder) clear(ctx context.Context, owner string) error {
	for _, kind := range core.Kinds() {
		existing, err := s.reader.QueryAll(ctx, owner, kind)
		if err != nil {
			return fmt.Errorf("list existing %s: %w", kind, err)
		}
		for _, tx := range existing {
			if err := s.writer.Delete(ctx, owner, kind, tx.ID); err != nil {
				return fmt.Errorf("clear %s %d: %w", kind, tx.ID, err)
			}
		}
	}
	return nil
}
