package log

import (
	"context"
	"log/slog"
	"net/http"
)

type ctxKey struct{}

// NewContext returns a copy of ctx carrying l.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored by NewContext, or one over slog.Default.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// Middleware puts base in every request context, tagged with the request id
// when requestID is set and yields one.
func Middleware(base *Logger, requestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := base
			if requestID != nil {
				if id := requestID(r); id != "" {
					l = l.With(FieldRequestID, id)
				}
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), l)))
		})
	}
}

// HTTPCompleted logs one finished request. 4xx logs at warn, 5xx at error.
func (l *Logger) HTTPCompleted(ctx context.Context, r *http.Request, status int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent()).
		WithHTTPResponse(status, durationMs, status < 400).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)
	l.Logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// TransactionSaved logs a successful create or update.
func (l *Logger) TransactionSaved(ctx context.Context, op, owner, kind string, id int64, category, amount string) {
	fields := NewFields().
		WithTransaction(owner, kind, id, category, amount).
		WithOperation(op).
		WithComponent(ComponentLedger)
	l.Logger.InfoContext(ctx, "Transaction saved", fields.ToSlice()...)
}

// Failure logs err under component and operation, merged into fields.
func (l *Logger) Failure(ctx context.Context, msg string, err error, component, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	fields.WithError(err).WithOperation(operation).WithComponent(component)
	l.Logger.ErrorContext(ctx, msg, fields.ToSlice()...)
}
