package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mholloway/tally/internal/ingest"
	"github.com/mholloway/tally/internal/parse"
	"github.com/mholloway/tally/internal/sheets"
)

const maxUploadBytes = 10 << 20

func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "expected multipart form with a 'file' field", err)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "missing 'file' field", err)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to read upload", err)
		return
	}

	parsed, err := parse.BankCSV(string(content))
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}

	result, err := s.importer.Import(r.Context(), family.ID, ingest.SourceCSV, parsed.Transactions, parsed.Errors)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "import failed", err)
		return
	}
	s.notifier.ImportSummary(ingest.SourceCSV.DisplayName(), result.Imported, result.Skipped)
	match := s.runAutoMatch(r.Context(), family.ID)

	_ = s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"result":  result,
		"matched": match.Matched,
	})
}

// handleWebhookHealth lets relay services verify the endpoint without
// posting a transaction.
func (s *Server) handleWebhookHealth(w http.ResponseWriter, r *http.Request) {
	_ = s.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"configured": s.config.ImportAPIKey != "",
		"time":       time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleImportWebhook(w http.ResponseWriter, r *http.Request) {
	if !s.authorizeWebhook(r) {
		s.respondError(w, r, http.StatusUnauthorized, "invalid or missing api key", nil)
		return
	}

	data, err := decodePayload(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "unreadable payload", err)
		return
	}
	payload, err := parse.ResolveWebhook(data)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}
	tx, err := payload.Normalize()
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}

	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}

	result, err := s.importer.Import(r.Context(), family.ID, ingest.SourceEmail, []parse.ParsedTransaction{*tx}, nil)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "import failed", err)
		return
	}
	s.notifier.ImportSummary(ingest.SourceEmail.DisplayName(), result.Imported, result.Skipped)
	match := s.runAutoMatch(r.Context(), family.ID)

	_ = s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"result":  result,
		"matched": match.Matched,
	})
}

func (s *Server) handleImportSheet(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}

	content, err := s.sheets.FetchCSV(r.Context(), s.config.SheetID)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, sheets.ErrSheetIDRequired) {
			status = http.StatusConflict
		}
		s.respondError(w, r, status, err.Error(), err)
		return
	}

	rows, err := parse.SheetCSV(content)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), err)
		return
	}

	result, err := s.importer.Import(r.Context(), family.ID, ingest.SourceSheet, rows, nil)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "import failed", err)
		return
	}
	s.notifier.ImportSummary(ingest.SourceSheet.DisplayName(), result.Imported, result.Skipped)
	match := s.runAutoMatch(r.Context(), family.ID)

	_ = s.writeJSON(w, http.StatusOK, map[string]any{
		"status":       "success",
		"result":       result,
		"matched":      match.Matched,
		"matchDetails": match.Details,
	})
}

func (s *Server) handleAutoMatch(w http.ResponseWriter, r *http.Request) {
	family, err := s.resolveFamily(r)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "family not found", err)
		return
	}
	result, err := s.matcher.Run(r.Context(), family.ID)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "auto-match failed", err)
		return
	}
	s.notifier.MatchSummary(result.Matched)
	_ = s.writeJSON(w, http.StatusOK, result)
}

// authorizeWebhook checks the shared import key. An unconfigured key rejects
// everything rather than letting unauthenticated writes through.
func (s *Server) authorizeWebhook(r *http.Request) bool {
	if s.config.ImportAPIKey == "" {
		return false
	}
	if key := r.Header.Get("X-API-Key"); key == s.config.ImportAPIKey {
		return true
	}
	const prefix = "Bearer "
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, prefix) && auth[len(prefix):] == s.config.ImportAPIKey
}

// decodePayload reads the webhook body as JSON or, for relay services that
// post forms, as urlencoded fields.
func decodePayload(r *http.Request) (map[string]any, error) {
	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.Contains(contentType, "multipart/form-data"):
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, err
		}
	case strings.Contains(contentType, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
	default:
		var data map[string]any
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			return nil, err
		}
		return data, nil
	}

	data := make(map[string]any, len(r.Form))
	for key, values := range r.Form {
		if len(values) > 0 {
			data[key] = values[0]
		}
	}
	return data, nil
}
