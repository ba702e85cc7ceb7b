package app

import (
	"context"
	"log"

	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/clock"
	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/domain"
	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/identity"
)

// Validator is the slice of the identity client the engine needs.
type Validator interface {
	Validate(ctx context.Context, cred domain.Credential) domain.ValidationOutcome
	CheckIn(ctx context.Context, req identity.CheckinRequest) (identity.CheckinAck, error)
}

// CheckinService coordinates one check-in: local preconditions, the upstream
// call, and the merge of the acknowledgement back into the outcome. The
// server owns the idempotency guarantee; this service's job is to never
// present a duplicate-attendance response as a failure and to never mutate
// the outcome when the call fails.
type CheckinService struct {
	client Validator
	clock  clock.Clock
	logger *log.Logger
}

type CheckinServiceOption func(*CheckinService)

func WithCheckinLogger(logger *log.Logger) CheckinServiceOption {
	return func(s *CheckinService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewCheckinService(client Validator, clk clock.Clock, opts ...CheckinServiceOption) *CheckinService {
	s := &CheckinService{
		client: client,
		clock:  clk,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckIn records attendance for the event as a whole (empty agendaID) or
// one agenda slot. On success the returned outcome carries the merged
// check-in facts; on failure the input outcome is returned unchanged
// alongside the error.
func (s *CheckinService) CheckIn(ctx context.Context, outcome domain.ValidationOutcome, agendaID string) (domain.ValidationOutcome, error) {
	if !outcome.Valid {
		return outcome, domain.ErrOutcomeNotValid
	}
	if err := requiredIdentity(outcome); err != nil {
		return outcome, err
	}
	// Admission control for paid events; the server enforces this too.
	if outcome.Event.Paid && outcome.AmountPaid <= 0 {
		return outcome, domain.ErrPaymentRequired
	}

	req := identity.CheckinRequest{
		Type:     outcome.SubjectType,
		AgendaID: agendaID,
		EventID:  outcome.Event.ID,
	}
	switch outcome.SubjectType {
	case domain.CredentialEventCheckin:
		req.Token = outcome.Token
	case domain.CredentialMembership:
		req.MembershipID = outcome.MembershipID
	}

	if _, err := s.client.CheckIn(ctx, req); err != nil {
		return outcome, err
	}

	base := outcome
	if outcome.SubjectType == domain.CredentialEventCheckin {
		// Best-effort snapshot refresh: the check-in already succeeded, so a
		// failed refresh falls back to locally known facts.
		refreshed := s.client.Validate(ctx, domain.Credential{
			Type:  domain.CredentialEventCheckin,
			Token: outcome.Token,
		})
		if refreshed.Valid && refreshed.Event != nil {
			base = refreshed
			for _, id := range outcome.AgendaCheckedIn {
				if !base.HasAgenda(id) {
					base.AgendaCheckedIn = append(base.AgendaCheckedIn, id)
				}
			}
		} else {
			s.logger.Printf("WARN: event refresh after check-in failed: %s", refreshed.ErrorMessage)
		}
	}

	return base.WithCheckin(s.clock.Now(), agendaID), nil
}

func requiredIdentity(outcome domain.ValidationOutcome) error {
	if outcome.Event == nil || outcome.Event.ID == "" {
		return domain.ErrMissingIdentity
	}
	switch outcome.SubjectType {
	case domain.CredentialEventCheckin:
		if outcome.Token == "" {
			return domain.ErrMissingIdentity
		}
	case domain.CredentialMembership:
		if outcome.MembershipID == "" {
			return domain.ErrMissingIdentity
		}
	default:
		return domain.ErrMissingIdentity
	}
	return nil
}
