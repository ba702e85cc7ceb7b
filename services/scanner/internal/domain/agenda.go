package domain

import "time"

// AgendaStatus is derived at display/check-in time, never stored.
type AgendaStatus struct {
	IsToday     bool
	IsPast      bool
	IsCheckedIn bool
}

// Actionable reports whether a check-in action may be offered for the slot:
// same-day slots only, and only while not yet checked in.
func (s AgendaStatus) Actionable() bool {
	return !s.IsCheckedIn && s.IsToday && !s.IsPast
}

// AgendaStatusFor derives the status of a slot relative to today's date and
// the set of agenda ids already checked in. Dates compare by calendar day.
func AgendaStatusFor(slot AgendaSlot, today time.Time, agendaCheckedIn []string) AgendaStatus {
	status := AgendaStatus{
		IsToday: sameDay(slot.Date, today),
		IsPast:  beforeDay(slot.Date, today),
	}
	for _, id := range agendaCheckedIn {
		if id == slot.ID {
			status.IsCheckedIn = true
			break
		}
	}
	return status
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func beforeDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
