package backend

import (
	"context"
	"fmt"
	"time"

	"finsage/internal/ledger"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult is an opened transaction store with what callers need to run it.
type BackendResult struct {
	Store ledger.Store
	// Pinger is nil when the store has no connectivity check.
	Pinger ledger.Pinger
	// Mutable is false for stores that only append (updates and deletes fail with ledger.ErrReadOnly).
	Mutable bool
	Cleanup CleanupFunc
}

func newResult(store ledger.Store, mutable bool, cleanup CleanupFunc) *BackendResult {
	pinger, _ := store.(ledger.Pinger)
	return &BackendResult{Store: store, Pinger: pinger, Mutable: mutable, Cleanup: cleanup}
}

// Close runs the cleanup function when there is one.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory opens stores from configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config selects and parameterizes one backend.
type Config struct {
	Type BackendType

	SQLiteDBPath string

	GoogleSpreadsheetID string
	GoogleIncomeSheet   string
	GoogleExpenseSheet  string

	// Location buckets sheet dates that carry no zone
	Location *time.Location
}

type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SheetsBackend BackendType = "sheets"
	SQLiteBackend BackendType = "sqlite"
)

// Types lists every supported backend.
var Types = []BackendType{MemoryBackend, SheetsBackend, SQLiteBackend}

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	for _, t := range Types {
		if bt == t {
			return true
		}
	}
	return false
}

// ParseType maps a DATA_BACKEND value to a BackendType.
func ParseType(s string) (BackendType, error) {
	bt := BackendType(s)
	if !bt.IsValid() {
		return "", fmt.Errorf("unknown backend %q: must be one of %v", s, Types)
	}
	return bt, nil
}
