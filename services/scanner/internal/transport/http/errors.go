package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeMethodNotAllowed    = "method_not_allowed"
	codeNotFound            = "not_found"
	codeInvalidRequestBody  = "invalid_request_body"
	codeInvalidCodeFormat   = "invalid_code_format"
	codeInvalidInputType    = "invalid_input_type"
	codeSessionNotFound     = "session_not_found"
	codeValidationSupersede = "validation_superseded"
	codeNoValidOutcome      = "no_valid_outcome"
	codeCheckinInProgress   = "checkin_in_progress"
	codeMissingIdentity     = "missing_identity_fields"
	codePaymentRequired     = "payment_required"
	codeNoCaptureDevice     = "no_capture_device"
	codeCaptureFailed       = "capture_failed"
	codeCheckinFailed       = "checkin_failed"
	codeForbidden           = "forbidden"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
