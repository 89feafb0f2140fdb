package report

import (
	"context"
	"time"

	"finsage/internal/core"
	"finsage/internal/ledger"
	"finsage/internal/log"
)

// Service builds reports and dashboards against a store using an injected clock.
type Service struct {
	store  ledger.Reader
	now    func() time.Time
	loc    *time.Location
	logger *log.Logger
}

type Option func(*Service)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone month boundaries are computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(store ledger.Reader, opts ...Option) *Service {
	s := &Service{
		store:  store,
		now:    time.Now,
		loc:    time.UTC,
		logger: log.New(log.DefaultConfig()).WithComponent(log.ComponentReport),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock in its location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// Location is the zone months are bucketed in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Report builds the full report for owner and monthToken.
func (s *Service) Report(ctx context.Context, owner, monthToken string) (*Report, error) {
	now := s.Now()
	s.logFallback(ctx, owner, monthToken, now)
	r, err := Build(ctx, s.store, owner, monthToken, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "Report build failed",
			log.NewFields().WithReport(owner, monthToken).WithOperation(log.OpBuild).WithError(err).ToSlice()...)
		return nil, err
	}
	s.logger.DebugContext(ctx, "Report built",
		log.NewFields().WithReport(owner, r.Period.Key()).WithOperation(log.OpBuild).ToSlice()...)
	return r, nil
}

// Dashboard builds the month overview for owner and monthToken.
func (s *Service) Dashboard(ctx context.Context, owner, monthToken string) (*Dashboard, error) {
	now := s.Now()
	s.logFallback(ctx, owner, monthToken, now)
	d, err := BuildDashboard(ctx, s.store, owner, monthToken, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "Dashboard build failed",
			log.NewFields().WithReport(owner, monthToken).WithOperation(log.OpRead).WithError(err).ToSlice()...)
		return nil, err
	}
	return d, nil
}

func (s *Service) logFallback(ctx context.Context, owner, token string, now time.Time) {
	if token == "" {
		return
	}
	if _, err := core.ParsePeriod(token, now.Location()); err != nil {
		s.logger.WarnContext(ctx, "Invalid month token, using current month",
			log.FieldOwnerID, owner,
			log.FieldMonthToken, token,
			log.FieldPeriod, core.MonthOf(now).Key(),
		)
	}
}
