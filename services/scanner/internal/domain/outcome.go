package domain

import "time"

// ValidationOutcome is the immutable result of one validation call against
// the identity service. Check-in facts (CheckedIn, CheckinTime,
// AgendaCheckedIn) are a client-side cache of server state: they are merged
// in via WithCheckin after an acknowledged check-in, never re-derived from
// stale data.
type ValidationOutcome struct {
	Valid       bool
	SubjectType CredentialType

	Name          string
	Email         string
	Token         string
	MembershipID  string
	PaymentStatus string
	AmountPaid    float64
	ExpiryDate    *time.Time

	Event           *EventSnapshot
	CheckedIn       bool
	CheckinTime     *time.Time
	AgendaCheckedIn []string

	ErrorMessage string
}

// Invalid builds a failed outcome carrying only a displayable message.
func Invalid(msg string) ValidationOutcome {
	return ValidationOutcome{Valid: false, ErrorMessage: msg}
}

// HasAgenda reports whether the agenda slot id is already in the checked-in set.
func (o ValidationOutcome) HasAgenda(id string) bool {
	for _, a := range o.AgendaCheckedIn {
		if a == id {
			return true
		}
	}
	return false
}

// WithCheckin returns a copy of the outcome with an acknowledged check-in
// merged in. The agenda id, when non-empty, is added to AgendaCheckedIn at
// most once, so a repeated merge is a no-op.
func (o ValidationOutcome) WithCheckin(at time.Time, agendaID string) ValidationOutcome {
	merged := o
	merged.CheckedIn = true
	merged.CheckinTime = &at

	merged.AgendaCheckedIn = make([]string, len(o.AgendaCheckedIn))
	copy(merged.AgendaCheckedIn, o.AgendaCheckedIn)
	if agendaID != "" && !o.HasAgenda(agendaID) {
		merged.AgendaCheckedIn = append(merged.AgendaCheckedIn, agendaID)
	}
	return merged
}

// Expired reports whether the subject's expiry date has passed. A missing
// expiry date never counts as expired.
func (o ValidationOutcome) Expired(now time.Time) bool {
	return o.ExpiryDate != nil && o.ExpiryDate.Before(now)
}
