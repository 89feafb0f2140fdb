package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finsage/internal/core"
	"finsage/internal/ledger"
)

func sample(owner string, kind core.Kind, category string, ts time.Time) core.Transaction {
	return core.Transaction{
		OwnerID:   owner,
		Kind:      kind,
		Category:  category,
		Amount:    decimal.RequireFromString("12.50"),
		Timestamp: ts,
	}
}

func TestMemoryStoreAppendAndGet(t *testing.T) {
	s := New()
	ctx := context.Background()
	ts := time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC)

	first, err := s.Append(ctx, sample("u1", core.Expense, "Food", ts))
	if err != nil || first.ID != 1 {
		t.Fatalf("unexpected append: tx=%+v err=%v", first, err)
	}
	second, err := s.Append(ctx, sample("u1", core.Income, "Salary", ts))
	if err != nil || second.ID != 2 {
		t.Fatalf("unexpected append: tx=%+v err=%v", second, err)
	}

	got, err := s.Get(ctx, "u1", core.Expense, first.ID)
	if err != nil || got.Category != "Food" {
		t.Fatalf("unexpected get: tx=%+v err=%v", got, err)
	}
	if _, err := s.Get(ctx, "u1", core.Income, first.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong kind, got %v", err)
	}
	if _, err := s.Get(ctx, "u2", core.Expense, first.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other owner, got %v", err)
	}
}

func TestMemoryStoreAppendValidates(t *testing.T) {
	s := New()
	tx := sample("u1", core.Expense, "", time.Now())
	if _, err := s.Append(context.Background(), tx); !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
}

func TestMemoryStoreUpdateAndDelete(t *testing.T) {
	s := New()
	ctx := context.Background()
	tx, _ := s.Append(ctx, sample("u1", core.Expense, "Food", time.Now()))

	tx.Category = "Groceries"
	if _, err := s.Update(ctx, tx); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.Get(ctx, "u1", core.Expense, tx.ID)
	if got.Category != "Groceries" {
		t.Fatalf("update not applied: %+v", got)
	}

	tx.ID = 99
	if _, err := s.Update(ctx, tx); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "u1", core.Expense, got.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "u1", core.Expense, got.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMemoryStoreQueryRangeHalfOpen(t *testing.T) {
	s := New()
	ctx := context.Background()
	start := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	s.Seed(
		sample("u1", core.Expense, "AtStart", start),
		sample("u1", core.Expense, "AtEnd", end),
		sample("u1", core.Expense, "Middle", start.AddDate(0, 0, 10)),
		sample("u1", core.Income, "OtherKind", start.AddDate(0, 0, 10)),
		sample("u2", core.Expense, "OtherOwner", start.AddDate(0, 0, 10)),
	)

	got, err := s.QueryRange(ctx, "u1", core.Expense, start, end)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 || got[0].Category != "AtStart" || got[1].Category != "Middle" {
		t.Fatalf("unexpected range result: %+v", got)
	}

	all, _ := s.QueryAll(ctx, "u1", core.Expense)
	if len(all) != 3 {
		t.Fatalf("expected 3 expenses for u1, got %d", len(all))
	}
}

func TestMemoryStoreQueryReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Seed(sample("u1", core.Income, "Salary", time.Now()))

	got, _ := s.QueryAll(ctx, "u1", core.Income)
	got[0].Category = "changed"

	again, _ := s.QueryAll(ctx, "u1", core.Income)
	if again[0].Category != "Salary" {
		t.Fatalf("store mutated through query result: %+v", again[0])
	}
}

func TestMemoryStoreConcurrentAppend(t *testing.T) {
	s := New()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Append(ctx, sample("u1", core.Expense, "Food", time.Now()))
		}()
	}
	wg.Wait()

	all, _ := s.QueryAll(ctx, "u1", core.Expense)
	if len(all) != 50 {
		t.Fatalf("expected 50 rows, got %d", len(all))
	}
	seen := map[int64]bool{}
	for _, tx := range all {
		if seen[tx.ID] {
			t.Fatalf("duplicate id %d", tx.ID)
		}
		seen[tx.ID] = true
	}
}
