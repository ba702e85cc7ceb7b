package domain

import "errors"

var (
	ErrEmptyPayload         = errors.New("empty payload")
	ErrUnrecognizedPayload  = errors.New("unrecognized payload")
	ErrAmbiguousPayload     = errors.New("ambiguous payload")
	ErrInvalidToken         = errors.New("invalid event token")
	ErrOutcomeNotValid      = errors.New("outcome is not valid for check-in")
	ErrMissingIdentity      = errors.New("missing identity fields")
	ErrPaymentRequired      = errors.New("payment required before check-in")
	ErrCheckinInProgress    = errors.New("check-in already in progress")
	ErrValidationSuperseded = errors.New("validation superseded")
	ErrSessionNotFound      = errors.New("session not found")
)
