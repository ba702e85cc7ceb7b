package domain

import "time"

// EventSnapshot is a read-only projection of an event as reported by the
// identity service.
type EventSnapshot struct {
	ID       string
	Title    string
	Venue    string
	Capacity int
	Paid     bool
	StartsAt time.Time
	EndsAt   time.Time
	Agendas  []AgendaSlot
}

// AgendaSlot is one dated session within a multi-day event. StartTime and
// EndTime are clock times ("09:30") for display; Date carries the day.
type AgendaSlot struct {
	ID          string
	Title       string
	Description string
	Date        time.Time
	StartTime   string
	EndTime     string
}
