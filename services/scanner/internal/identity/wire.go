package identity

import (
	"time"

	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/domain"
)

type qrValue struct {
	Type         string `json:"type"`
	Token        string `json:"token,omitempty"`
	MembershipID string `json:"membership_id,omitempty"`
}

func qrValueFrom(cred domain.Credential) qrValue {
	return qrValue{
		Type:         string(cred.Type),
		Token:        cred.Token,
		MembershipID: cred.MembershipID,
	}
}

type validateRequest struct {
	QRValue qrValue `json:"qrValue"`
}

type validateEnvelope struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    *outcomeWire `json:"data"`
}

type outcomeWire struct {
	Type            string     `json:"type"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Token           string     `json:"token"`
	MembershipID    string     `json:"membership_id"`
	PaymentStatus   string     `json:"payment_status"`
	Amount          float64    `json:"amount"`
	ExpiryDate      *time.Time `json:"expiry_date"`
	CheckedIn       bool       `json:"checked_in"`
	CheckinTime     *time.Time `json:"checkin_time"`
	AgendaCheckedIn []string   `json:"agenda_checked_in"`
	Event           *eventWire `json:"event"`
}

type eventWire struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Venue    string       `json:"venue"`
	Capacity int          `json:"capacity"`
	Paid     bool         `json:"is_paid"`
	StartsAt time.Time    `json:"starts_at"`
	EndsAt   time.Time    `json:"ends_at"`
	Agendas  []agendaWire `json:"agendas"`
}

type agendaWire struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
}

func (w *outcomeWire) toOutcome(cred domain.Credential) domain.ValidationOutcome {
	subject := domain.CredentialType(w.Type)
	if subject == "" {
		subject = cred.Type
	}

	out := domain.ValidationOutcome{
		Valid:           true,
		SubjectType:     subject,
		Name:            w.Name,
		Email:           w.Email,
		Token:           w.Token,
		MembershipID:    w.MembershipID,
		PaymentStatus:   w.PaymentStatus,
		AmountPaid:      w.Amount,
		ExpiryDate:      w.ExpiryDate,
		CheckedIn:       w.CheckedIn,
		CheckinTime:     w.CheckinTime,
		AgendaCheckedIn: w.AgendaCheckedIn,
	}
	if out.Token == "" {
		out.Token = cred.Token
	}
	if out.MembershipID == "" {
		out.MembershipID = cred.MembershipID
	}
	if w.Event != nil {
		out.Event = w.Event.toSnapshot()
	}
	return out
}

func (w *eventWire) toSnapshot() *domain.EventSnapshot {
	snap := &domain.EventSnapshot{
		ID:       w.ID,
		Title:    w.Title,
		Venue:    w.Venue,
		Capacity: w.Capacity,
		Paid:     w.Paid,
		StartsAt: w.StartsAt,
		EndsAt:   w.EndsAt,
	}
	for _, a := range w.Agendas {
		snap.Agendas = append(snap.Agendas, domain.AgendaSlot{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Date:        a.Date,
			StartTime:   a.StartTime,
			EndTime:     a.EndTime,
		})
	}
	return snap
}

type checkinWire struct {
	Type         string  `json:"type"`
	AgendaID     *string `json:"agenda_id"`
	Token        string  `json:"token,omitempty"`
	EventID      string  `json:"event_id,omitempty"`
	MembershipID string  `json:"membership_id,omitempty"`
}

type checkinEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
