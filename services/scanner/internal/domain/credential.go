package domain

type CredentialType string

const (
	CredentialEventCheckin CredentialType = "EVENT_CHECKIN"
	CredentialMembership   CredentialType = "MEMBERSHIP_VERIFICATION"
)

// Credential is the normalized, typed form of a scanned or manually entered
// code. Exactly one of Token and MembershipID is set, matching Type.
type Credential struct {
	Type         CredentialType
	Token        string
	MembershipID string
}

// CanonicalForm returns the normalized payload value: the token for event
// check-in credentials, the membership id otherwise. Feeding this string
// back through interpretation yields the same credential.
func (c Credential) CanonicalForm() string {
	if c.Type == CredentialEventCheckin {
		return c.Token
	}
	return c.MembershipID
}
