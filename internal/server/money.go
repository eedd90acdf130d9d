package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mholloway/tally/internal/models"
	"github.com/mholloway/tally/internal/savings"
)

// handleMoneyStatus reports the month's aggregate. Year and month default to
// the current month.
func (s *Server) handleMoneyStatus(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}

	now := time.Now().UTC()
	year, month := now.Year(), now.Month()
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			s.respondError(w, r, http.StatusBadRequest, "year must be a number", err)
			return
		}
		year = y
	}
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			s.respondError(w, r, http.StatusBadRequest, "month must be 1-12", err)
			return
		}
		month = time.Month(m)
	}

	status, err := s.money.Compute(r.Context(), family.ID, year, month)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to compute money status", err)
		return
	}
	_ = s.writeJSON(w, http.StatusOK, status)
}

type goalWithProjection struct {
	*models.SavingsGoal
	Projection savings.Projection `json:"projection"`
}

func (s *Server) handleListSavings(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	goals, err := s.store.ListGoals(r.Context(), family.ID)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to list goals", err)
		return
	}

	now := time.Now().UTC()
	out := make([]goalWithProjection, 0, len(goals))
	for _, goal := range goals {
		out = append(out, goalWithProjection{
			SavingsGoal: goal,
			Projection:  savings.Compute(goal, now),
		})
	}
	_ = s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSavings(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	var req struct {
		Name          string `json:"name"`
		TargetAmount  int64  `json:"target_amount"`
		CurrentAmount int64  `json:"current_amount"`
		TargetDate    string `json:"target_date"`
	}
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	if req.Name == "" || req.TargetAmount <= 0 {
		s.respondError(w, r, http.StatusBadRequest, "name and a positive target_amount are required", nil)
		return
	}
	targetDate, err := time.Parse("2006-01-02", req.TargetDate)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "target_date must be YYYY-MM-DD", err)
		return
	}

	goal := &models.SavingsGoal{
		FamilyID:      family.ID,
		Name:          req.Name,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: req.CurrentAmount,
		TargetDate:    targetDate,
	}
	if err := s.store.CreateGoal(r.Context(), goal); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to create goal", err)
		return
	}
	_ = s.writeJSON(w, http.StatusCreated, goal)
}

func (s *Server) handleDeleteSavings(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	if err := s.store.DeleteGoal(r.Context(), family.ID, r.PathValue("id")); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to delete goal", err)
		return
	}
	_ = s.writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleContributeSavings(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	if req.Amount <= 0 {
		s.respondError(w, r, http.StatusBadRequest, "amount must be positive", nil)
		return
	}
	goal, err := s.store.Contribute(r.Context(), family.ID, r.PathValue("id"), req.Amount)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to contribute", err)
		return
	}
	_ = s.writeJSON(w, http.StatusOK, goal)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	var req struct {
		MonthlyBudget int64 `json:"monthly_budget"`
	}
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	if req.MonthlyBudget < 0 {
		s.respondError(w, r, http.StatusBadRequest, "monthly_budget cannot be negative", nil)
		return
	}
	if err := s.store.SetMonthlyBudget(r.Context(), family.ID, req.MonthlyBudget); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to update budget", err)
		return
	}
	_ = s.writeJSON(w, http.StatusOK, map[string]any{"status": "success", "monthly_budget": req.MonthlyBudget})
}
