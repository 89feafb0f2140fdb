package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finsage/internal/core"
	"finsage/internal/ledger"
)

// Config selects the spreadsheet and the two tabs holding incomes and expenses.
// Rows are laid out as Date | Category | Amount | Owner.
type Config struct {
	SpreadsheetID string
	IncomeSheet   string
	ExpenseSheet  string
	Location      *time.Location
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	incomeSheet   string
	expenseSheet  string
	loc           *time.Location
}

// Ensure interface conformance
var (
	_ ledger.Store  = (*Client)(nil)
	_ ledger.Pinger = (*Client)(nil)
)

// New creates a Sheets-backed ledger using service account credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(svc, cfg), nil
}

func newClient(svc *gsheet.Service, cfg Config) *Client {
	income := strings.TrimSpace(cfg.IncomeSheet)
	if income == "" {
		income = "Incomes"
	}
	expense := strings.TrimSpace(cfg.ExpenseSheet)
	if expense == "" {
		expense = "Expenses"
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		incomeSheet:   income,
		expenseSheet:  expense,
		loc:           loc,
	}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) sheetFor(kind core.Kind) (string, error) {
	switch kind {
	case core.Income:
		return c.incomeSheet, nil
	case core.Expense:
		return c.expenseSheet, nil
	default:
		return "", core.ErrInvalidKind
	}
}

func (c *Client) readRows(ctx context.Context, kind core.Kind) ([]core.Transaction, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	sheet, err := c.sheetFor(kind)
	if err != nil {
		return nil, err
	}
	rng := fmt.Sprintf("%s!A:D", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseRows(resp.Values, kind, c.loc), nil
}

func (c *Client) QueryAll(ctx context.Context, owner string, kind core.Kind) ([]core.Transaction, error) {
	rows, err := c.readRows(ctx, kind)
	if err != nil {
		return nil, err
	}
	return filterOwner(rows, owner, time.Time{}, time.Time{}), nil
}

func (c *Client) QueryRange(ctx context.Context, owner string, kind core.Kind, start, end time.Time) ([]core.Transaction, error) {
	rows, err := c.readRows(ctx, kind)
	if err != nil {
		return nil, err
	}
	return filterOwner(rows, owner, start, end), nil
}

func (c *Client) Get(ctx context.Context, owner string, kind core.Kind, id int64) (core.Transaction, error) {
	rows, err := c.readRows(ctx, kind)
	if err != nil {
		return core.Transaction{}, err
	}
	for _, tx := range rows {
		if tx.ID == id && tx.OwnerID == owner {
			return tx, nil
		}
	}
	return core.Transaction{}, ledger.ErrNotFound
}

// Append adds a row at the bottom of the kind's tab. The row number becomes the ID.
func (c *Client) Append(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return core.Transaction{}, errors.New("sheets service not initialized")
	}
	sheet, err := c.sheetFor(tx.Kind)
	if err != nil {
		return core.Transaction{}, err
	}
	rng := fmt.Sprintf("%s!A:D", sheet)
	vr := &gsheet.ValueRange{Values: [][]any{formatRow(tx, c.loc)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("append to sheet %s: %w", sheet, err)
	}
	if resp.Updates != nil {
		if row, ok := rowFromRange(resp.Updates.UpdatedRange); ok {
			tx.ID = row
		}
	}
	return tx, nil
}

// Update is not supported: row numbers shift when rows are edited by hand.
func (c *Client) Update(context.Context, core.Transaction) (core.Transaction, error) {
	return core.Transaction{}, fmt.Errorf("update sheet row: %w", ledger.ErrReadOnly)
}

// Delete is not supported for the same reason as Update.
func (c *Client) Delete(context.Context, string, core.Kind, int64) error {
	return fmt.Errorf("delete sheet row: %w", ledger.ErrReadOnly)
}

// Ping reads the spreadsheet metadata.
func (c *Client) Ping(ctx context.Context) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	_, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	return nil
}
