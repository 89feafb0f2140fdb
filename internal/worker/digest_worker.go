package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"finsage/internal/amqp"
	"finsage/internal/cache"
	"finsage/internal/core"
	"finsage/internal/report"
)

// ReportBuilder is satisfied by *report.Service.
type ReportBuilder interface {
	Report(ctx context.Context, owner, monthToken string) (*report.Report, error)
}

// Digest is the month summary recomputed after every change to an owner's ledger.
type Digest struct {
	OwnerID       string
	Month         string
	TotalIncome   decimal.Decimal
	TotalExpense  decimal.Decimal
	Net           decimal.Decimal
	TopExpense    string // largest expense category, empty when there are no expenses
	TopExpenseSum decimal.Decimal
	Entries       int
	BuiltAt       time.Time
}

const (
	// DigestCacheSize bounds the number of owner and month digests kept in memory.
	DigestCacheSize = 4096
	// DigestTTL is how long an untouched digest is served.
	DigestTTL = 24 * time.Hour
)

// DigestWorker consumes transaction events and keeps the latest digest per owner and month.
type DigestWorker struct {
	reports ReportBuilder
	now     func() time.Time
	digests *cache.LRU[Digest]
}

var _ cache.Cleaner = (*DigestWorker)(nil)

func NewDigestWorker(reports ReportBuilder) *DigestWorker {
	return &DigestWorker{
		reports: reports,
		now:     time.Now,
		digests: cache.NewLRU[Digest](DigestCacheSize, DigestTTL),
	}
}

// HandleEvent processes a single transaction event from AMQP.
// Store failures are returned so the delivery is requeued; malformed events are dropped.
func (w *DigestWorker) HandleEvent(ctx context.Context, msg *amqp.TransactionEvent) error {
	if _, err := core.ParseKind(msg.Kind); err != nil {
		return fmt.Errorf("event %d kind %q: %w", msg.ID, msg.Kind, amqp.ErrDrop)
	}
	if _, err := core.ParsePeriod(msg.Month, time.UTC); err != nil {
		return fmt.Errorf("event %d month %q: %w", msg.ID, msg.Month, amqp.ErrDrop)
	}

	slog.InfoContext(ctx, "Processing transaction event",
		"action", msg.Action,
		"id", msg.ID,
		"owner_id", msg.OwnerID,
		"month", msg.Month)

	_, err := w.Refresh(ctx, msg.OwnerID, msg.Month)
	return err
}

// Refresh rebuilds the digest for owner and month.
func (w *DigestWorker) Refresh(ctx context.Context, owner, month string) (Digest, error) {
	r, err := w.reports.Report(ctx, owner, month)
	if err != nil {
		return Digest{}, fmt.Errorf("build report for %s %s: %w", owner, month, err)
	}

	d := Digest{
		OwnerID:       owner,
		Month:         r.Period.Key(),
		TotalIncome:   r.TotalIncome,
		TotalExpense:  r.TotalExpense,
		Net:           r.Net,
		TopExpenseSum: decimal.Zero,
		Entries:       len(r.IncomeAmounts) + len(r.ExpenseAmounts),
		BuiltAt:       w.now(),
	}
	for _, e := range r.ExpenseByCategory.Sorted() {
		if e.Amount.GreaterThan(d.TopExpenseSum) {
			d.TopExpense, d.TopExpenseSum = e.Name, e.Amount
		}
	}

	w.digests.Set(digestKey(owner, d.Month), d)

	slog.InfoContext(ctx, "Digest updated",
		"owner_id", owner,
		"month", d.Month,
		"income", core.FormatAmount(d.TotalIncome),
		"expense", core.FormatAmount(d.TotalExpense),
		"net", core.FormatAmount(d.Net),
		"top_expense", d.TopExpense,
		"entries", d.Entries)

	return d, nil
}

// RefreshAll rebuilds the current-month digest of every owner, continuing past failures.
func (w *DigestWorker) RefreshAll(ctx context.Context, owners []string) error {
	var failed int
	for _, owner := range owners {
		if _, err := w.Refresh(ctx, owner, ""); err != nil {
			failed++
			slog.ErrorContext(ctx, "Startup digest failed", "owner_id", owner, "error", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d startup digests failed", failed, len(owners))
	}
	return nil
}

// Latest returns the last digest built for owner and month, if it has not expired.
func (w *DigestWorker) Latest(owner, month string) (Digest, bool) {
	return w.digests.Get(digestKey(owner, month))
}

// CleanExpired drops digests past DigestTTL.
func (w *DigestWorker) CleanExpired() int {
	return w.digests.CleanExpired()
}

func digestKey(owner, month string) string {
	return owner + "|" + month
}
