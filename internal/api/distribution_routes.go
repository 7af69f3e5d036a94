package api

import (
	"fmt"
	"net/http"

	"github.com/sotoblanco/nftscope/internal/report"
)

func (s *Server) handleDistributionLatest(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	run, err := s.runRepo.GetLatest(r.Context(), source)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch latest distribution")
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "no analysis runs recorded yet")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleDistributionHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 30)
	runs, err := s.runRepo.GetHistory(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch distribution history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(runs),
		"runs":  runs,
	})
}

// handleDistributionReport returns the latest distribution as a plain-text
// chart, suitable for a terminal or a <pre> block.
func (s *Server) handleDistributionReport(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	run, err := s.runRepo.GetLatest(r.Context(), source)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch latest distribution")
		return
	}
	if run == nil || run.Summary == nil {
		writeError(w, http.StatusNotFound, "no distribution available yet")
		return
	}

	title := fmt.Sprintf("Sale price distribution (%s, %s)", run.Source, run.AnalysisDay)

	var body string
	switch r.URL.Query().Get("style") {
	case "waffle":
		body = report.RenderWaffle(run.Summary, title)
	default:
		body = report.RenderHistogram(run.Summary, title)
	}
	body += "\n" + report.RenderSummaryLine(run) + "\n"

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}
