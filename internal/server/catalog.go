package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mholloway/tally/internal/models"
	"github.com/mholloway/tally/internal/money"
)

type categoryRequest struct {
	Name          string   `json:"name"`
	Keywords      []string `json:"keywords"`
	Type          string   `json:"category_type"`
	MonthlyBudget *int64   `json:"monthly_budget"`
	EventID       *string  `json:"event_id"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	categories, err := s.store.ListCategories(r.Context(), family.ID)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to list categories", err)
		return
	}
	_ = s.writeJSON(w, http.StatusOK, categories)
}

// handleCreateCategory creates a category and immediately re-runs the
// matcher so existing transactions pick up the new keywords.
func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	var req categoryRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}

	category := &models.MerchantCategory{
		FamilyID:      family.ID,
		Name:          req.Name,
		Keywords:      req.Keywords,
		Type:          models.CategoryType(req.Type),
		MonthlyBudget: req.MonthlyBudget,
		EventID:       req.EventID,
	}
	if err := category.Validate(); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	if err := s.store.CreateCategory(r.Context(), category); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to create category", err)
		return
	}

	match := s.runAutoMatch(r.Context(), family.ID)
	_ = s.writeJSON(w, http.StatusCreated, map[string]any{
		"category": category,
		"matched":  match.Matched,
	})
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	existing, err := s.store.GetCategory(r.Context(), family.ID, r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, http.StatusNotFound, "category not found", err)
		return
	}

	var req categoryRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	existing.Name = req.Name
	existing.Keywords = req.Keywords
	existing.Type = models.CategoryType(req.Type)
	existing.MonthlyBudget = req.MonthlyBudget
	existing.EventID = req.EventID
	if err := existing.Validate(); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	if err := s.store.UpdateCategory(r.Context(), existing); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to update category", err)
		return
	}

	match := s.runAutoMatch(r.Context(), family.ID)
	_ = s.writeJSON(w, http.StatusOK, map[string]any{
		"category": existing,
		"matched":  match.Matched,
	})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	if err := s.store.DeleteCategory(r.Context(), family.ID, r.PathValue("id")); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to delete category", err)
		return
	}
	_ = s.writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	rules, err := s.store.ListRules(r.Context(), family.ID)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to list rules", err)
		return
	}
	_ = s.writeJSON(w, http.StatusOK, rules)
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	var req struct {
		Keyword string `json:"keyword"`
		EventID string `json:"event_id"`
	}
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	keywords := models.NormalizeKeywords([]string{req.Keyword})
	if len(keywords) == 0 || req.EventID == "" {
		s.respondError(w, r, http.StatusBadRequest, "keyword and event_id are required", nil)
		return
	}

	rule := &models.MerchantRule{
		FamilyID: family.ID,
		Keyword:  keywords[0],
		EventID:  req.EventID,
	}
	if err := s.store.CreateRule(r.Context(), rule); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to create rule", err)
		return
	}

	match := s.runAutoMatch(r.Context(), family.ID)
	_ = s.writeJSON(w, http.StatusCreated, map[string]any{
		"rule":    rule,
		"matched": match.Matched,
	})
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	if err := s.store.DeleteRule(r.Context(), family.ID, r.PathValue("id")); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to delete rule", err)
		return
	}
	_ = s.writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// handleListTransactions returns a month of transactions, defaulting to the
// current month.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}

	now := time.Now().UTC()
	year, monthNum := now.Year(), int(now.Month())
	if v := r.URL.Query().Get("year"); v != "" {
		if year, err = strconv.Atoi(v); err != nil {
			s.respondError(w, r, http.StatusBadRequest, "year must be a number", err)
			return
		}
	}
	if v := r.URL.Query().Get("month"); v != "" {
		if monthNum, err = strconv.Atoi(v); err != nil || monthNum < 1 || monthNum > 12 {
			s.respondError(w, r, http.StatusBadRequest, "month must be 1-12", err)
			return
		}
	}

	start, end := money.MonthRange(year, time.Month(monthNum))
	transactions, err := s.store.ListByDateRange(r.Context(), family.ID, start, end)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to list transactions", err)
		return
	}
	_ = s.writeJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleHideTransaction(w http.ResponseWriter, r *http.Request) {
	s.setTransactionHidden(w, r, true)
}

func (s *Server) handleUnhideTransaction(w http.ResponseWriter, r *http.Request) {
	s.setTransactionHidden(w, r, false)
}

func (s *Server) setTransactionHidden(w http.ResponseWriter, r *http.Request, hidden bool) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	if err := s.store.SetHidden(r.Context(), family.ID, r.PathValue("id"), hidden); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to update transaction", err)
		return
	}
	_ = s.writeJSON(w, http.StatusOK, map[string]any{"status": "success", "is_hidden": hidden})
}

func (s *Server) handleSkipAutoMatch(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	var req struct {
		Skip bool `json:"skip"`
	}
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	if err := s.store.SetSkipAutoMatch(r.Context(), family.ID, r.PathValue("id"), req.Skip); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to update transaction", err)
		return
	}
	_ = s.writeJSON(w, http.StatusOK, map[string]any{"status": "success", "skip_auto_match": req.Skip})
}

func (s *Server) handleListConnections(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	connections, err := s.store.ListConnections(r.Context(), family.ID)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to list connections", err)
		return
	}
	_ = s.writeJSON(w, http.StatusOK, connections)
}

// handleDisconnect removes a connection along with its accounts and their
// transactions.
func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	if err := s.store.Disconnect(r.Context(), family.ID, r.PathValue("id")); err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to disconnect", err)
		return
	}
	_ = s.writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
