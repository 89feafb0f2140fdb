package http

import (
	"errors"
	"net/http"

	"finsage/internal/core"
	"finsage/internal/ledger"
	"finsage/internal/log"
	"finsage/internal/report"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, ok := kindParam(r)
	if !ok {
		NotFoundError("unknown transaction kind").Write(w)
		return
	}

	in, ok := s.readInput(w, r)
	if !ok {
		return
	}

	tx := core.Transaction{
		OwnerID:   ownerFrom(ctx),
		Kind:      kind,
		Timestamp: s.reports.Now(),
	}
	if in.Category != nil {
		tx.Category = *in.Category
	}
	if in.Amount != nil {
		tx.Amount = *in.Amount
	}
	if in.Date != nil {
		tx.Timestamp = *in.Date
	}
	if err := tx.Validate(); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	saved, err := s.transactions.Create(ctx, tx)
	if err != nil {
		s.writeError(w, r, err, log.OpCreate)
		return
	}
	s.appMetrics.created.Add(1)
	log.FromContext(ctx).TransactionSaved(ctx, log.OpCreate, saved.OwnerID, saved.Kind.String(), saved.ID, saved.Category, core.FormatAmount(saved.Amount))

	NewJSONResponse().
		Status(http.StatusCreated).
		JSON(report.NewTransactionView(saved)).
		Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, id, ok := s.target(w, r)
	if !ok {
		return
	}
	tx, err := s.transactions.Get(ctx, ownerFrom(ctx), kind, id)
	if err != nil {
		s.writeError(w, r, err, log.OpRead)
		return
	}
	NewJSONResponse().JSON(report.NewTransactionView(tx)).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, id, ok := s.target(w, r)
	if !ok {
		return
	}
	in, ok := s.readInput(w, r)
	if !ok {
		return
	}
	patch := in.Patch()
	if patch.IsEmpty() {
		UnprocessableEntityError("nothing to update").Write(w)
		return
	}

	saved, err := s.transactions.Update(ctx, ownerFrom(ctx), kind, id, patch)
	if err != nil {
		s.writeError(w, r, err, log.OpUpdate)
		return
	}
	s.appMetrics.updated.Add(1)
	log.FromContext(ctx).TransactionSaved(ctx, log.OpUpdate, saved.OwnerID, saved.Kind.String(), saved.ID, saved.Category, core.FormatAmount(saved.Amount))

	NewJSONResponse().JSON(report.NewTransactionView(saved)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, id, ok := s.target(w, r)
	if !ok {
		return
	}
	if err := s.transactions.Delete(ctx, ownerFrom(ctx), kind, id); err != nil {
		s.writeError(w, r, err, log.OpDelete)
		return
	}
	s.appMetrics.deleted.Add(1)
	log.FromContext(ctx).InfoContext(ctx, "Transaction deleted",
		log.FieldOwnerID, ownerFrom(ctx),
		log.FieldKind, kind,
		log.FieldTransactionID, id)

	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// target resolves the kind and id path parameters, writing the error response on failure.
func (s *Server) target(w http.ResponseWriter, r *http.Request) (core.Kind, int64, bool) {
	kind, ok := kindParam(r)
	if !ok {
		NotFoundError("unknown transaction kind").Write(w)
		return "", 0, false
	}
	id, err := idParam(r)
	if err != nil {
		NotFoundError(err.Error()).Write(w)
		return "", 0, false
	}
	return kind, id, true
}

// readInput parses the request body, writing the error response on failure.
func (s *Server) readInput(w http.ResponseWriter, r *http.Request) (TransactionInput, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return TransactionInput{}, false
	}
	in, err := ParseTransactionInput(p, s.reports.Location())
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return TransactionInput{}, false
	}
	return in, true
}

// writeError maps domain errors to status codes. Unknown failures are treated
// as the store being unavailable.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		NotFoundError("transaction not found").Write(w)
	case core.IsValidation(err):
		UnprocessableEntityError(err.Error()).Write(w)
	case errors.Is(err, ledger.ErrReadOnly):
		NotImplementedError("the configured store does not support this operation").Write(w)
	default:
		ctx := r.Context()
		log.FromContext(ctx).Failure(ctx, "Request failed", err, log.ComponentHTTP, op, nil)
		ServiceUnavailableError(report.ErrStoreUnavailable.Error()).Write(w)
	}
}
