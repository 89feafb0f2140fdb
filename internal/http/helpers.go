package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"finsage/internal/core"
)

// OwnerHeader carries the authenticated owner id set by the fronting proxy.
const OwnerHeader = "X-User-ID"

// dateLayout is the accepted request date format.
const dateLayout = "2006-01-02"

var (
	errInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	errInvalidID   = errors.New("invalid transaction id")
)

type ownerKey struct{}

// requireOwner rejects requests without an owner and stores it in the context.
func requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := sanitizeInput(r.Header.Get(OwnerHeader))
		if owner == "" {
			UnauthorizedError("missing " + OwnerHeader + " header").Write(w)
			return
		}
		ctx := context.WithValue(r.Context(), ownerKey{}, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ownerFrom returns the owner stored by requireOwner.
func ownerFrom(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey{}).(string)
	return owner
}

// kindParam maps the plural path segment to a kind. Only "incomes" and "expenses" are routes.
func kindParam(r *http.Request) (core.Kind, bool) {
	switch chi.URLParam(r, "kind") {
	case "incomes":
		return core.Income, true
	case "expenses":
		return core.Expense, true
	default:
		return "", false
	}
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errInvalidID
	}
	return id, nil
}

// parseDate parses a date string in YYYY-MM-DD format as midnight in loc.
func parseDate(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, dateStr, loc)
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	return t, nil
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}
