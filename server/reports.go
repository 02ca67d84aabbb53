package server

import (
	"net/http"

	"github.com/etnz/finagle"
	"github.com/etnz/finagle/date"
	"github.com/etnz/finagle/logger"
	"github.com/etnz/finagle/renderer"
	"github.com/etnz/finagle/store"
)

// report returns the full capital gains report of the user, from the cache if
// possible.
func (s *Server) report(w http.ResponseWriter, r *http.Request, u finagle.User) (*finagle.Report, bool) {
	if rep, ok := s.reports.get(u.ID); ok {
		return rep, true
	}
	gen := s.reports.generation(u.ID)
	txs, err := s.store.Transactions(r.Context(), u.ID, store.Filter{})
	if err != nil {
		writeStoreError(w, r, err, "User")
		return nil, false
	}
	rep := finagle.Compute(txs, nil)
	for ticker, qty := range rep.Unmatched {
		logger.FromContext(r.Context()).Warn("Sell without matching buy ignored",
			"userID", u.ID,
			"ticker", ticker,
			"quantity", qty)
	}
	if !s.reports.set(u.ID, gen, rep) {
		logger.FromContext(r.Context()).Debug("Report not cached, transactions changed while computing", "userID", u.ID)
	}
	return rep, true
}

// handleCGTOverview returns the summaries of every financial year, without
// their lot matches.
func (s *Server) handleCGTOverview(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	rep, ok := s.report(w, r, u)
	if !ok {
		return
	}
	s.writeReport(w, r, rep.Overview(), false)
}

// handleCGTDetail returns the summary of one financial year with its lot
// matches.
func (s *Server) handleCGTDetail(w http.ResponseWriter, r *http.Request) {
	u, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	fy, err := date.ParseFinancialYear(r.PathValue("fy"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	rep, ok := s.report(w, r, u)
	if !ok {
		return
	}
	summary, ok := rep.Year(fy)
	if !ok {
		writeError(w, r, http.StatusNotFound, "No data for this financial year")
		return
	}
	s.writeReport(w, r, &finagle.Report{
		FinancialYears: []finagle.FinancialYearSummary{summary},
		Unmatched:      rep.Unmatched,
	}, true)
}

// writeReport writes the report in the format query parameter: json (default),
// md or html.
func (s *Server) writeReport(w http.ResponseWriter, r *http.Request, rep *finagle.Report, detailed bool) {
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, rep)
	case "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(renderer.CGTMarkdown(rep, detailed)))
	case "html":
		page, err := renderer.Page("Capital Gains Tax Report", renderer.CGTMarkdown(rep, detailed))
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(page))
	default:
		writeError(w, r, http.StatusBadRequest, "format must be 'json', 'md' or 'html', got "+format)
	}
}
