package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// MaxCategoryLength mirrors the column width used by the stores.
const MaxCategoryLength = 200

type (
	// Kind is the transaction class.
	Kind string

	// Transaction is a single dated income or expense record.
	Transaction struct {
		ID        int64
		OwnerID   string
		Category  string
		Amount    decimal.Decimal
		Timestamp time.Time
		Kind      Kind
	}
)

var (
	ErrInvalidKind     = errors.New("invalid transaction kind")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyCategory   = errors.New("empty category")
	ErrCategoryTooLong = errors.New("category too long (max 200 characters)")
	ErrEmptyOwner      = errors.New("empty owner")
	ErrZeroTimestamp   = errors.New("timestamp cannot be zero")
)

// IsValidation reports whether err comes from transaction or amount validation.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidKind, ErrInvalidAmount, ErrEmptyCategory,
		ErrCategoryTooLong, ErrEmptyOwner, ErrZeroTimestamp,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Kinds returns both transaction kinds in display order.
func Kinds() []Kind {
	return []Kind{Income, Expense}
}

// ParseKind accepts the singular or plural form ("income", "incomes", "expense", "expenses").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "incomes":
		return Income, nil
	case "expense", "expenses":
		return Expense, nil
	default:
		return "", ErrInvalidKind
	}
}

func (k Kind) String() string {
	return string(k)
}

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

// Validate checks a transaction before it is written to a store.
// Amounts must be strictly positive on write; the aggregation engine itself accepts zero.
func (t Transaction) Validate() error {
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.OwnerID) == "" {
		return ErrEmptyOwner
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Category) > MaxCategoryLength {
		return ErrCategoryTooLong
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if t.Timestamp.IsZero() {
		return ErrZeroTimestamp
	}
	return nil
}

// MonthKey returns the YYYY-MM bucket of the timestamp in loc.
func (t Transaction) MonthKey(loc *time.Location) string {
	return t.Timestamp.In(loc).Format(MonthLayout)
}
