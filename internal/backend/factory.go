package backend

import (
	"context"
	"fmt"

	"finsage/internal/ledger/google"
	"finsage/internal/ledger/memory"
	"finsage/internal/log"
	"finsage/internal/storage"
)

// DefaultFactory opens the memory, SQLite and Google Sheets stores.
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend validates config and opens the selected store.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", log.FieldBackend, config.Type, "db_path", config.SQLiteDBPath)

	return newResult(repo, true, repo.Close), nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := google.New(ctx, google.Config{
		SpreadsheetID: config.GoogleSpreadsheetID,
		IncomeSheet:   config.GoogleIncomeSheet,
		ExpenseSheet:  config.GoogleExpenseSheet,
		Location:      config.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend",
		log.FieldBackend, config.Type,
		"income_sheet", config.GoogleIncomeSheet,
		"expense_sheet", config.GoogleExpenseSheet)

	return newResult(cli, false, nil), nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	f.logger.Info("Initialized memory backend", log.FieldBackend, MemoryBackend)
	return newResult(memory.New(), true, nil), nil
}
