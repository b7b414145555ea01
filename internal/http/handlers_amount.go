package http

import (
	"net/http"

	"budget/internal/core"
)

func (s *Server) handleCreateAmount(w http.ResponseWriter, r *http.Request) {
	var req createAmountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	a, err := s.amounts.Create(r.Context(), core.CreateAmountParams{
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Note:       req.Note,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, newAmountResponse(a))
}

func (s *Server) handleListAmounts(w http.ResponseWriter, r *http.Request) {
	categoryID, err := optionalInt64Query(r, "categoryId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	amounts, err := s.amounts.List(r.Context(), categoryID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, newAmountResponses(amounts))
}

func (s *Server) handleGetAmount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	a, err := s.amounts.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, newAmountResponse(a))
}

func (s *Server) handleUpdateAmount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req updateAmountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	a, err := s.amounts.Update(r.Context(), id, core.UpdateAmountParams{
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Note:       req.Note,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, newAmountResponse(a))
}

func (s *Server) handleDeleteAmount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.amounts.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSummary serves GET /api/amounts/summary?startDate=&endDate=.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	start, err := requiredDateQuery(r, "startDate")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	end, err := requiredDateQuery(r, "endDate")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	summary, err := s.amounts.Summary(r.Context(), start, end)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, newSummaryResponse(summary))
}
