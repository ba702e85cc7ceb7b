package domain

import "time"

type JournalKind string

const (
	JournalScan    JournalKind = "scan"
	JournalCheckin JournalKind = "checkin"
)

// JournalEntry is one audited scan or check-in attempt. The journal is an
// operator-facing audit trail owned by the scanner service; it is not the
// attendance record, which lives upstream.
type JournalEntry struct {
	ID             string
	SessionID      string
	Kind           JournalKind
	CredentialType CredentialType
	Value          string
	Accepted       bool
	Message        string
	AgendaID       string
	CreatedAt      time.Time
}
