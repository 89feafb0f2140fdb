package google

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finsage/internal/core"
)

const dateLayout = "2006-01-02"

// parseRows converts a values matrix (as returned by the Sheets API) into
// transactions. Row i of the matrix is sheet row i+1 and becomes the ID.
// Header rows and rows with an unreadable date or amount are skipped.
func parseRows(values [][]interface{}, kind core.Kind, loc *time.Location) []core.Transaction {
	var out []core.Transaction
	for i, row := range values {
		cols := toStrings(row)
		if len(cols) < 4 {
			continue
		}
		ts, err := time.ParseInLocation(dateLayout, cols[0], loc)
		if err != nil {
			continue
		}
		amount, ok := parseAmountCell(row[2])
		if !ok {
			continue
		}
		category := cols[1]
		owner := cols[3]
		if category == "" || owner == "" {
			continue
		}
		out = append(out, core.Transaction{
			ID:        int64(i + 1),
			OwnerID:   owner,
			Category:  category,
			Amount:    amount,
			Timestamp: ts,
			Kind:      kind,
		})
	}
	return out
}

// parseAmountCell accepts numeric cells and strings with a dot or comma separator.
func parseAmountCell(v interface{}) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case float64:
		if x < 0 {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(x).Round(core.AmountPlaces), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
		if err != nil || d.IsNegative() {
			return decimal.Zero, false
		}
		return d.Round(core.AmountPlaces), true
	default:
		return decimal.Zero, false
	}
}

func formatRow(tx core.Transaction, loc *time.Location) []any {
	return []any{
		tx.Timestamp.In(loc).Format(dateLayout),
		tx.Category,
		tx.Amount.StringFixed(core.AmountPlaces),
		tx.OwnerID,
	}
}

// filterOwner keeps the owner's rows, limited to [start, end) when end is set,
// ordered by date then row.
func filterOwner(rows []core.Transaction, owner string, start, end time.Time) []core.Transaction {
	out := make([]core.Transaction, 0)
	for _, tx := range rows {
		if tx.OwnerID != owner {
			continue
		}
		if !end.IsZero() && (tx.Timestamp.Before(start) || !tx.Timestamp.Before(end)) {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// rowFromRange extracts the first row number from an A1 range like "Incomes!A7:D7".
func rowFromRange(a1 string) (int64, bool) {
	if i := strings.LastIndex(a1, "!"); i >= 0 {
		a1 = a1[i+1:]
	}
	if i := strings.Index(a1, ":"); i >= 0 {
		a1 = a1[:i]
	}
	digits := strings.TrimLeftFunc(a1, func(r rune) bool { return r < '0' || r > '9' })
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
