package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/app"
	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/clock"
	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/domain"
)

type checkinRequest struct {
	AgendaID string `json:"agenda_id"`
}

// handleCheckin records attendance for the session's current outcome,
// event-level when agenda_id is absent. Upstream failure messages pass
// through untouched: the server's wording beats anything synthesized here.
func handleCheckin(w http.ResponseWriter, r *http.Request, s *app.Session, clk clock.Clock) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	var req checkinRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	outcome, err := s.CheckIn(r.Context(), req.AgendaID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOutcomeNotValid):
			writeError(w, http.StatusConflict, codeNoValidOutcome, "no valid outcome to check in")
		case errors.Is(err, domain.ErrCheckinInProgress):
			writeError(w, http.StatusConflict, codeCheckinInProgress, err.Error())
		case errors.Is(err, domain.ErrMissingIdentity):
			writeError(w, http.StatusBadRequest, codeMissingIdentity, err.Error())
		case errors.Is(err, domain.ErrPaymentRequired):
			writeError(w, http.StatusPaymentRequired, codePaymentRequired, err.Error())
		default:
			writeError(w, http.StatusBadGateway, codeCheckinFailed, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, toOutcomeResponse(outcome, clk.Now()))
}
