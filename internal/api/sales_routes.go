package api

import "net/http"

func (s *Server) handleSalesByDay(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("date")
	if !validateDate(date) {
		writeError(w, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
		return
	}

	source := r.URL.Query().Get("source")
	sales, err := s.saleRepo.GetByDay(r.Context(), date, source)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch sales")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"day":   date,
		"count": len(sales),
		"sales": sales,
	})
}

func (s *Server) handleAvailableDays(w http.ResponseWriter, r *http.Request) {
	days, err := s.saleRepo.GetAvailableDays(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch available days")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

func (s *Server) handleLatestSale(w http.ResponseWriter, r *http.Request) {
	sale, err := s.saleRepo.GetLatest(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch latest sale")
		return
	}
	if sale == nil {
		writeError(w, http.StatusNotFound, "no sales recorded yet")
		return
	}
	writeJSON(w, http.StatusOK, sale)
}
