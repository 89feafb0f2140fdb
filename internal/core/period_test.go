package core

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolvePeriod(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	cases := []struct {
		name       string
		token      string
		now        time.Time
		start, end time.Time
	}{
		{"february", "2024-02", now, day(2024, 2, 1), day(2024, 3, 1)},
		{"december rollover", "2024-12", now, day(2024, 12, 1), day(2025, 1, 1)},
		{"empty falls back to now", "", now, day(2024, 6, 1), day(2024, 7, 1)},
		{"malformed falls back", "2024-13", now, day(2024, 6, 1), day(2024, 7, 1)},
		{"garbage falls back", "last-month", now, day(2024, 6, 1), day(2024, 7, 1)},
		{"trailing text falls back", "2024-02-01", now, day(2024, 6, 1), day(2024, 7, 1)},
		{"fallback in december", "nope", time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC), day(2023, 12, 1), day(2024, 1, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := ResolvePeriod(tc.token, tc.now)
			if !p.Start.Equal(tc.start) || !p.End.Equal(tc.end) {
				t.Fatalf("got [%v, %v), want [%v, %v)", p.Start, p.End, tc.start, tc.end)
			}
		})
	}
}

func TestParsePeriodUsesLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	p, err := ParsePeriod("2024-03", ist)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Start.Location() != ist || p.Start.Day() != 1 || p.Start.Month() != time.March {
		t.Fatalf("unexpected start %v", p.Start)
	}
	if _, err := ParsePeriod("", ist); err != ErrInvalidPeriodToken {
		t.Fatalf("expected ErrInvalidPeriodToken, got %v", err)
	}
}

func TestPeriodContainsIsHalfOpen(t *testing.T) {
	p := ResolvePeriod("2024-02", time.Now().UTC())
	if !p.Contains(p.Start) {
		t.Fatalf("start must be included")
	}
	if p.Contains(p.End) {
		t.Fatalf("end must be excluded")
	}
	if !p.Contains(p.End.Add(-time.Nanosecond)) {
		t.Fatalf("last instant must be included")
	}
	if p.Key() != "2024-02" || p.Next().Key() != "2024-03" {
		t.Fatalf("unexpected keys %s %s", p.Key(), p.Next().Key())
	}
}
