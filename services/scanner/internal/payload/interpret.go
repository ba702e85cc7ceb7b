// Package payload turns raw scanner or manual input into a typed credential.
// Interpretation is pure and synchronous: no I/O happens here, so every
// shape of input is unit-testable without a camera or a network.
package payload

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/domain"
)

var tokenPattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// structured is the loose wire shape a QR payload may carry. membership_code
// is a legacy alias for membership_id.
type structured struct {
	Type           string `json:"type"`
	Token          string `json:"token"`
	MembershipID   string `json:"membership_id"`
	MembershipCode string `json:"membership_code"`
}

// Interpret parses a raw scan string into a credential. Input that does not
// parse as a JSON object is treated as a bare event token. Structured input
// without an explicit type has its type inferred from field presence; a
// payload carrying both a token and a membership id with no type is rejected
// as ambiguous rather than guessing a precedence.
func Interpret(raw string) (domain.Credential, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.Credential{}, domain.ErrEmptyPayload
	}

	var s structured
	if err := json.Unmarshal([]byte(trimmed), &s); err != nil || !strings.HasPrefix(trimmed, "{") {
		return bareToken(trimmed)
	}

	if s.MembershipID == "" {
		s.MembershipID = strings.TrimSpace(s.MembershipCode)
	} else {
		s.MembershipID = strings.TrimSpace(s.MembershipID)
	}
	s.Token = strings.ToUpper(strings.TrimSpace(s.Token))

	switch s.Type {
	case string(domain.CredentialEventCheckin):
		return eventToken(s.Token)
	case string(domain.CredentialMembership):
		return membership(s.MembershipID)
	case "":
		// Infer from field presence.
		switch {
		case s.Token != "" && s.MembershipID != "":
			return domain.Credential{}, domain.ErrAmbiguousPayload
		case s.Token != "":
			return eventToken(s.Token)
		case s.MembershipID != "":
			return membership(s.MembershipID)
		default:
			return domain.Credential{}, domain.ErrUnrecognizedPayload
		}
	default:
		return domain.Credential{}, domain.ErrUnrecognizedPayload
	}
}

// InterpretManual parses manual-entry input where the operator has chosen
// the credential type explicitly.
func InterpretManual(raw string, typ domain.CredentialType) (domain.Credential, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.Credential{}, domain.ErrEmptyPayload
	}
	switch typ {
	case domain.CredentialEventCheckin:
		return eventToken(strings.ToUpper(trimmed))
	case domain.CredentialMembership:
		return membership(trimmed)
	default:
		return domain.Credential{}, domain.ErrUnrecognizedPayload
	}
}

func bareToken(trimmed string) (domain.Credential, error) {
	return eventToken(strings.ToUpper(trimmed))
}

func eventToken(token string) (domain.Credential, error) {
	if token == "" {
		return domain.Credential{}, domain.ErrUnrecognizedPayload
	}
	if !tokenPattern.MatchString(token) {
		return domain.Credential{}, domain.ErrInvalidToken
	}
	return domain.Credential{Type: domain.CredentialEventCheckin, Token: token}, nil
}

func membership(id string) (domain.Credential, error) {
	if id == "" {
		return domain.Credential{}, domain.ErrUnrecognizedPayload
	}
	return domain.Credential{Type: domain.CredentialMembership, MembershipID: id}, nil
}
