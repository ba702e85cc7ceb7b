package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/app"
	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/clock"
	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/domain"
)

type scanRequest struct {
	Payload string `json:"payload"`
}

// handleScan validates a decoded (or pasted) payload against the identity
// service. An invalid code is still a 200: the outcome carries the failure
// message for the operator.
func handleScan(w http.ResponseWriter, r *http.Request, s *app.Session, clk clock.Clock) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	var req scanRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	outcome, err := s.Scan(r.Context(), req.Payload)
	if err != nil {
		writeScanError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOutcomeResponse(outcome, clk.Now()))
}

type manualRequest struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

func handleManual(w http.ResponseWriter, r *http.Request, s *app.Session, clk clock.Clock) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		return
	}

	var req manualRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	typ := domain.CredentialType(req.Type)
	if typ != domain.CredentialEventCheckin && typ != domain.CredentialMembership {
		writeError(w, http.StatusBadRequest, codeInvalidInputType, "type must be EVENT_CHECKIN or MEMBERSHIP_VERIFICATION")
		return
	}

	outcome, err := s.Manual(r.Context(), req.Value, typ)
	if err != nil {
		writeScanError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOutcomeResponse(outcome, clk.Now()))
}

func writeScanError(w http.ResponseWriter, err error) {
	switch {
	case isParseError(err):
		writeError(w, http.StatusBadRequest, codeInvalidCodeFormat, "invalid code format")
	case errors.Is(err, domain.ErrValidationSuperseded):
		writeError(w, http.StatusConflict, codeValidationSupersede, "superseded by a newer scan")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
