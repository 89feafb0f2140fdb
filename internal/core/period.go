package core

import (
	"errors"
	"time"
)

// MonthLayout is the month token format accepted from users and used as bucket key.
const MonthLayout = "2006-01"

var ErrInvalidPeriodToken = errors.New("invalid period token")

// Period is a half-open calendar month [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// MonthOf returns the calendar month containing t, in t's location.
func MonthOf(t time.Time) Period {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	// time.Date normalizes month 13 to January of the following year.
	end := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
	return Period{Start: start, End: end}
}

// ParsePeriod parses a YYYY-MM token into the calendar month it names.
func ParsePeriod(token string, loc *time.Location) (Period, error) {
	if token == "" {
		return Period{}, ErrInvalidPeriodToken
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(MonthLayout, token, loc)
	if err != nil {
		return Period{}, ErrInvalidPeriodToken
	}
	return MonthOf(t), nil
}

// ResolvePeriod returns the month named by token, or the month containing now
// when the token is empty or malformed. It never fails.
func ResolvePeriod(token string, now time.Time) Period {
	p, err := ParsePeriod(token, now.Location())
	if err != nil {
		return MonthOf(now)
	}
	return p
}

// Contains reports whether t falls in [Start, End).
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// Key returns the YYYY-MM label of the period.
func (p Period) Key() string {
	return p.Start.Format(MonthLayout)
}

// Next returns the calendar month following p.
func (p Period) Next() Period {
	return MonthOf(p.End)
}

// IsZero reports whether the period was never set.
func (p Period) IsZero() bool {
	return p.Start.IsZero() && p.End.IsZero()
}
