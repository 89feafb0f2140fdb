package http

import (
	"net/http"

	"finsage/internal/chart"
	"finsage/internal/log"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d, err := s.reports.Dashboard(ctx, ownerFrom(ctx), MonthToken(r.URL.Query()))
	if err != nil {
		s.writeError(w, r, err, log.OpRead)
		return
	}
	NewJSONResponse().JSON(d.View()).Write(w)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rep, err := s.reports.Report(ctx, ownerFrom(ctx), MonthToken(r.URL.Query()))
	if err != nil {
		s.writeError(w, r, err, log.OpBuild)
		return
	}
	NewJSONResponse().JSON(rep.View()).Write(w)
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rep, err := s.reports.Report(ctx, ownerFrom(ctx), MonthToken(r.URL.Query()))
	if err != nil {
		s.writeError(w, r, err, log.OpBuild)
		return
	}
	NewJSONResponse().JSON(chart.FromReport(rep)).Write(w)
}
