package http

import (
	"time"

	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/app"
	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/domain"
)

type outcomeResponse struct {
	Valid           bool             `json:"valid"`
	SubjectType     string           `json:"subject_type,omitempty"`
	Name            string           `json:"name,omitempty"`
	Email           string           `json:"email,omitempty"`
	Token           string           `json:"token,omitempty"`
	MembershipID    string           `json:"membership_id,omitempty"`
	PaymentStatus   string           `json:"payment_status,omitempty"`
	AmountPaid      float64          `json:"amount_paid,omitempty"`
	ExpiryDate      *time.Time       `json:"expiry_date,omitempty"`
	Expired         bool             `json:"expired,omitempty"`
	Event           *eventResponse   `json:"event,omitempty"`
	CheckedIn       bool             `json:"checked_in"`
	CheckinTime     *time.Time       `json:"checkin_time,omitempty"`
	AgendaCheckedIn []string         `json:"agenda_checked_in,omitempty"`
	ErrorMessage    string           `json:"error_message,omitempty"`
}

type eventResponse struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Venue    string           `json:"venue,omitempty"`
	Capacity int              `json:"capacity,omitempty"`
	Paid     bool             `json:"is_paid"`
	StartsAt time.Time        `json:"starts_at"`
	EndsAt   time.Time        `json:"ends_at"`
	Agendas  []agendaResponse `json:"agendas,omitempty"`
}

type agendaResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	StartTime   string    `json:"start_time,omitempty"`
	EndTime     string    `json:"end_time,omitempty"`
	IsToday     bool      `json:"is_today"`
	IsPast      bool      `json:"is_past"`
	IsCheckedIn bool      `json:"is_checked_in"`
	Actionable  bool      `json:"actionable"`
}

type sessionResponse struct {
	ID           string           `json:"id"`
	Mode         string           `json:"mode"`
	CaptureState string           `json:"capture_state"`
	CaptureError string           `json:"capture_error,omitempty"`
	Outcome      *outcomeResponse `json:"outcome,omitempty"`
}

// toOutcomeResponse projects an outcome for the operator console, deriving
// per-slot agenda status and expiry against the current time.
func toOutcomeResponse(outcome domain.ValidationOutcome, now time.Time) *outcomeResponse {
	resp := &outcomeResponse{
		Valid:           outcome.Valid,
		SubjectType:     string(outcome.SubjectType),
		Name:            outcome.Name,
		Email:           outcome.Email,
		Token:           outcome.Token,
		MembershipID:    outcome.MembershipID,
		PaymentStatus:   outcome.PaymentStatus,
		AmountPaid:      outcome.AmountPaid,
		ExpiryDate:      outcome.ExpiryDate,
		Expired:         outcome.Expired(now),
		CheckedIn:       outcome.CheckedIn,
		CheckinTime:     outcome.CheckinTime,
		AgendaCheckedIn: outcome.AgendaCheckedIn,
		ErrorMessage:    outcome.ErrorMessage,
	}
	if outcome.Event != nil {
		event := &eventResponse{
			ID:       outcome.Event.ID,
			Title:    outcome.Event.Title,
			Venue:    outcome.Event.Venue,
			Capacity: outcome.Event.Capacity,
			Paid:     outcome.Event.Paid,
			StartsAt: outcome.Event.StartsAt,
			EndsAt:   outcome.Event.EndsAt,
		}
		for _, slot := range outcome.Event.Agendas {
			status := domain.AgendaStatusFor(slot, now, outcome.AgendaCheckedIn)
			event.Agendas = append(event.Agendas, agendaResponse{
				ID:          slot.ID,
				Title:       slot.Title,
				Description: slot.Description,
				Date:        slot.Date,
				StartTime:   slot.StartTime,
				EndTime:     slot.EndTime,
				IsToday:     status.IsToday,
				IsPast:      status.IsPast,
				IsCheckedIn: status.IsCheckedIn,
				Actionable:  status.Actionable(),
			})
		}
		resp.Event = event
	}
	return resp
}

func toSessionResponse(s *app.Session, now time.Time) sessionResponse {
	resp := sessionResponse{
		ID:           s.ID(),
		Mode:         string(s.Mode()),
		CaptureState: string(s.CaptureState()),
	}
	if err := s.CaptureErr(); err != nil {
		resp.CaptureError = err.Error()
	}
	if outcome, ok := s.Current(); ok {
		resp.Outcome = toOutcomeResponse(outcome, now)
	}
	return resp
}
