// Package server exposes the HTTP API: imports, auto-matching, money
// status, events, categories, and savings goals.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mholloway/tally/internal/automatch"
	"github.com/mholloway/tally/internal/config"
	"github.com/mholloway/tally/internal/events"
	"github.com/mholloway/tally/internal/ingest"
	"github.com/mholloway/tally/internal/models"
	"github.com/mholloway/tally/internal/money"
	"github.com/mholloway/tally/internal/notify"
	"github.com/mholloway/tally/internal/sheets"
)

// Store is the direct persistence surface the handlers use, beyond what the
// domain services already wrap. *repository.Store satisfies it.
type Store interface {
	GetByID(ctx context.Context, familyID string) (*models.Family, error)
	FirstFamily(ctx context.Context) (*models.Family, error)
	SetMonthlyBudget(ctx context.Context, familyID string, budget int64) error

	ListConnections(ctx context.Context, familyID string) ([]*models.BankConnection, error)
	Disconnect(ctx context.Context, familyID, connectionID string) error

	ListByDateRange(ctx context.Context, familyID string, start, end time.Time) ([]*models.Transaction, error)
	SetHidden(ctx context.Context, familyID, transactionID string, hidden bool) error
	SetSkipAutoMatch(ctx context.Context, familyID, transactionID string, skip bool) error

	ListEvents(ctx context.Context, familyID string) ([]*models.Event, error)

	CreateCategory(ctx context.Context, category *models.MerchantCategory) error
	UpdateCategory(ctx context.Context, category *models.MerchantCategory) error
	DeleteCategory(ctx context.Context, familyID, categoryID string) error
	GetCategory(ctx context.Context, familyID, categoryID string) (*models.MerchantCategory, error)
	ListCategories(ctx context.Context, familyID string) ([]*models.MerchantCategory, error)

	CreateRule(ctx context.Context, rule *models.MerchantRule) error
	DeleteRule(ctx context.Context, familyID, ruleID string) error
	ListRules(ctx context.Context, familyID string) ([]*models.MerchantRule, error)

	CreateGoal(ctx context.Context, goal *models.SavingsGoal) error
	ListGoals(ctx context.Context, familyID string) ([]*models.SavingsGoal, error)
	DeleteGoal(ctx context.Context, familyID, goalID string) error
	Contribute(ctx context.Context, familyID, goalID string, amount int64) (*models.SavingsGoal, error)
}

type Server struct {
	config   *config.Config
	logger   *log.Logger
	mux      *http.ServeMux
	store    Store
	importer *ingest.Importer
	matcher  *automatch.Matcher
	money    *money.Aggregator
	events   *events.Service
	sheets   *sheets.Client
	notifier *notify.Notifier
}

func New(cfg *config.Config, logger *log.Logger, store Store, importer *ingest.Importer,
	matcher *automatch.Matcher, aggregator *money.Aggregator, eventSvc *events.Service,
	sheetClient *sheets.Client, notifier *notify.Notifier) *Server {
	s := &Server{
		config:   cfg,
		logger:   logger,
		mux:      http.NewServeMux(),
		store:    store,
		importer: importer,
		matcher:  matcher,
		money:    aggregator,
		events:   eventSvc,
		sheets:   sheetClient,
		notifier: notifier,
	}
	s.setupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("POST /api/import/csv", s.withLogging(s.handleImportCSV))
	s.mux.HandleFunc("GET /api/import/webhook", s.withLogging(s.handleWebhookHealth))
	s.mux.HandleFunc("POST /api/import/webhook", s.withLogging(s.handleImportWebhook))
	s.mux.HandleFunc("POST /api/import/sheet", s.withLogging(s.handleImportSheet))

	s.mux.HandleFunc("POST /api/automatch", s.withLogging(s.handleAutoMatch))
	s.mux.HandleFunc("GET /api/money-status", s.withLogging(s.handleMoneyStatus))

	s.mux.HandleFunc("GET /api/events", s.withLogging(s.handleListEvents))
	s.mux.HandleFunc("POST /api/events", s.withLogging(s.handleCreateEvent))
	s.mux.HandleFunc("PUT /api/events/{id}", s.withLogging(s.handleUpdateEvent))
	s.mux.HandleFunc("POST /api/events/{id}/complete", s.withLogging(s.handleCompleteEvent))
	s.mux.HandleFunc("POST /api/events/{id}/complete-calendar", s.withLogging(s.handleCompleteCalendarEvent))
	s.mux.HandleFunc("POST /api/events/{id}/cancel", s.withLogging(s.handleCancelEvent))
	s.mux.HandleFunc("POST /api/events/{id}/reopen", s.withLogging(s.handleReopenEvent))
	s.mux.HandleFunc("POST /api/events/{id}/link", s.withLogging(s.handleLinkEvent))
	s.mux.HandleFunc("POST /api/events/{id}/unlink", s.withLogging(s.handleUnlinkEvent))
	s.mux.HandleFunc("POST /api/events/from-transaction", s.withLogging(s.handleEventFromTransaction))

	s.mux.HandleFunc("GET /api/categories", s.withLogging(s.handleListCategories))
	s.mux.HandleFunc("POST /api/categories", s.withLogging(s.handleCreateCategory))
	s.mux.HandleFunc("PUT /api/categories/{id}", s.withLogging(s.handleUpdateCategory))
	s.mux.HandleFunc("DELETE /api/categories/{id}", s.withLogging(s.handleDeleteCategory))
	s.mux.HandleFunc("GET /api/rules", s.withLogging(s.handleListRules))
	s.mux.HandleFunc("POST /api/rules", s.withLogging(s.handleCreateRule))
	s.mux.HandleFunc("DELETE /api/rules/{id}", s.withLogging(s.handleDeleteRule))

	s.mux.HandleFunc("GET /api/transactions", s.withLogging(s.handleListTransactions))
	s.mux.HandleFunc("POST /api/transactions/{id}/hide", s.withLogging(s.handleHideTransaction))
	s.mux.HandleFunc("POST /api/transactions/{id}/unhide", s.withLogging(s.handleUnhideTransaction))
	s.mux.HandleFunc("POST /api/transactions/{id}/skip-automatch", s.withLogging(s.handleSkipAutoMatch))

	s.mux.HandleFunc("GET /api/connections", s.withLogging(s.handleListConnections))
	s.mux.HandleFunc("DELETE /api/connections/{id}", s.withLogging(s.handleDisconnect))

	s.mux.HandleFunc("GET /api/savings", s.withLogging(s.handleListSavings))
	s.mux.HandleFunc("POST /api/savings", s.withLogging(s.handleCreateSavings))
	s.mux.HandleFunc("DELETE /api/savings/{id}", s.withLogging(s.handleDeleteSavings))
	s.mux.HandleFunc("POST /api/savings/{id}/contribute", s.withLogging(s.handleContributeSavings))

	s.mux.HandleFunc("PUT /api/family/budget", s.withLogging(s.handleSetBudget))
}

// resolveFamily picks the family for a request: the X-Family-ID header when
// present, otherwise the oldest family. Integrations like email relays
// cannot set custom headers, hence the fallback.
func (s *Server) resolveFamily(r *http.Request) (*models.Family, error) {
	if id := r.Header.Get("X-Family-ID"); id != "" {
		return s.store.GetByID(r.Context(), id)
	}
	return s.store.FirstFamily(r.Context())
}

// runAutoMatch runs the matcher and pushes a notification. Match failures
// after a successful import are reported, not fatal.
func (s *Server) runAutoMatch(ctx context.Context, familyID string) *automatch.Result {
	result, err := s.matcher.Run(ctx, familyID)
	if err != nil {
		s.logger.Warn("auto-match run failed", "family", familyID, "err", err)
		return &automatch.Result{}
	}
	s.notifier.MatchSummary(result.Matched)
	return result
}

func (s *Server) decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	return nil
}

// writeJSON encodes v as JSON with the given status and writes headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// respondError logs the error and returns a minimal JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "method", r.Method, "path", r.URL.Path)
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "method", r.Method, "path", r.URL.Path)
	}
	_ = s.writeJSON(w, status, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// withLogging wraps a handler to log request start/end and recover panics.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
				s.respondError(w, r, http.StatusInternalServerError, "internal server error", fmt.Errorf("panic: %v", rec))
			}
		}()
		next(w, r)
	}
}
