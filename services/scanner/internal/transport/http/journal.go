package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/domain"
)

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 500
)

// JournalReader is the read side of the scan journal.
type JournalReader interface {
	ListRecent(ctx context.Context, limit int) ([]domain.JournalEntry, error)
	ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.JournalEntry, error)
}

// HandleListScans returns the audit-trail listing handler.
func HandleListScans(repo JournalReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		limit := defaultJournalLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 || parsed > maxJournalLimit {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "limit must be a positive integer up to 500")
				return
			}
			limit = parsed
		}

		var (
			entries []domain.JournalEntry
			err     error
		)
		if sessionID := r.URL.Query().Get("session_id"); sessionID != "" {
			entries, err = repo.ListBySession(r.Context(), sessionID, limit)
		} else {
			entries, err = repo.ListRecent(r.Context(), limit)
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		resp := make([]journalEntryResponse, 0, len(entries))
		for _, e := range entries {
			resp = append(resp, journalEntryResponse{
				ID:             e.ID,
				SessionID:      e.SessionID,
				Kind:           string(e.Kind),
				CredentialType: string(e.CredentialType),
				Value:          e.Value,
				Accepted:       e.Accepted,
				Message:        e.Message,
				AgendaID:       e.AgendaID,
				CreatedAt:      e.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type journalEntryResponse struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id"`
	Kind           string    `json:"kind"`
	CredentialType string    `json:"credential_type,omitempty"`
	Value          string    `json:"value,omitempty"`
	Accepted       bool      `json:"accepted"`
	Message        string    `json:"message,omitempty"`
	AgendaID       string    `json:"agenda_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
