package server

import (
	"net/http"
	"time"

	"github.com/mholloway/tally/internal/events"
	"github.com/mholloway/tally/internal/models"
)

type eventRequest struct {
	Title             string  `json:"title"`
	Description       *string `json:"description"`
	Date              string  `json:"event_date"`
	Time              *string `json:"event_time"`
	Type              string  `json:"event_type"`
	EstimatedCost     int64   `json:"estimated_cost"`
	Recurrence        *string `json:"recurrence"`
	RecurrenceEndDate *string `json:"recurrence_end_date"`
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	list, err := s.store.ListEvents(r.Context(), family.ID)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to list events", err)
		return
	}
	_ = s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}

	var req eventRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "event_date must be YYYY-MM-DD", err)
		return
	}

	in := events.CreateInput{
		Title:         req.Title,
		Description:   req.Description,
		Date:          date,
		Time:          req.Time,
		Type:          models.EventType(req.Type),
		EstimatedCost: req.EstimatedCost,
	}
	if in.Type == "" {
		in.Type = models.EventTypeExpense
	}
	if req.Recurrence != nil && *req.Recurrence != "" {
		recurrence := models.Recurrence(*req.Recurrence)
		in.Recurrence = &recurrence
	}
	if req.RecurrenceEndDate != nil && *req.RecurrenceEndDate != "" {
		end, err := time.Parse("2006-01-02", *req.RecurrenceEndDate)
		if err != nil {
			s.respondError(w, r, http.StatusBadRequest, "recurrence_end_date must be YYYY-MM-DD", err)
			return
		}
		in.RecurrenceEndDate = &end
	}

	event, err := s.events.Create(r.Context(), family.ID, in)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	_ = s.writeJSON(w, http.StatusCreated, event)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}

	var req eventRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	eventType := models.EventType(req.Type)
	if eventType == "" {
		eventType = models.EventTypeExpense
	}

	event, err := s.events.UpdateSeries(r.Context(), family.ID, r.PathValue("id"), events.EventUpdate{
		Title:         req.Title,
		Description:   req.Description,
		Time:          req.Time,
		Type:          eventType,
		EstimatedCost: req.EstimatedCost,
	})
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	_ = s.writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleCompleteEvent(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	var req struct {
		ActualCost int64 `json:"actual_cost"`
	}
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	event, err := s.events.Complete(r.Context(), family.ID, r.PathValue("id"), req.ActualCost)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	_ = s.writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleCompleteCalendarEvent(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	event, err := s.events.CompleteCalendar(r.Context(), family.ID, r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	_ = s.writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleCancelEvent(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	event, err := s.events.Cancel(r.Context(), family.ID, r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	_ = s.writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleReopenEvent(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	event, err := s.events.Reopen(r.Context(), family.ID, r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	_ = s.writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleLinkEvent(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	var req struct {
		TransactionID string `json:"transaction_id"`
	}
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	event, err := s.events.Link(r.Context(), family.ID, req.TransactionID, r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	_ = s.writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleUnlinkEvent(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	event, err := s.events.Unlink(r.Context(), family.ID, r.PathValue("id"))
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	_ = s.writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleEventFromTransaction(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	var req struct {
		TransactionID string `json:"transaction_id"`
	}
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	event, err := s.events.CreateFromTransaction(r.Context(), family.ID, req.TransactionID)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	_ = s.writeJSON(w, http.StatusCreated, event)
}
