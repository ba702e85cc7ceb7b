package domain

import (
	"testing"
	"time"
)

func TestValidationOutcome_WithCheckin(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

	t.Run("merges agenda id exactly once", func(t *testing.T) {
		outcome := ValidationOutcome{Valid: true, SubjectType: CredentialEventCheckin}

		first := outcome.WithCheckin(now, "agenda-1")
		second := first.WithCheckin(now, "agenda-1")

		if len(second.AgendaCheckedIn) != 1 || second.AgendaCheckedIn[0] != "agenda-1" {
			t.Fatalf("expected [agenda-1], got %v", second.AgendaCheckedIn)
		}
		if !second.CheckedIn || second.CheckinTime == nil || !second.CheckinTime.Equal(now) {
			t.Fatalf("expected checked in at %v, got %+v", now, second)
		}
	})

	t.Run("event-level check-in leaves agenda set alone", func(t *testing.T) {
		outcome := ValidationOutcome{Valid: true, AgendaCheckedIn: []string{"agenda-1"}}
		merged := outcome.WithCheckin(now, "")
		if len(merged.AgendaCheckedIn) != 1 {
			t.Fatalf("expected agenda set unchanged, got %v", merged.AgendaCheckedIn)
		}
	})

	t.Run("original outcome is not mutated", func(t *testing.T) {
		outcome := ValidationOutcome{Valid: true}
		_ = outcome.WithCheckin(now, "agenda-1")
		if outcome.CheckedIn || len(outcome.AgendaCheckedIn) != 0 {
			t.Fatalf("merge mutated the source outcome: %+v", outcome)
		}
	})
}

func TestValidationOutcome_Expired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	past := now.AddDate(-1, 0, 0)
	future := now.AddDate(1, 0, 0)

	if (ValidationOutcome{ExpiryDate: &past}).Expired(now) != true {
		t.Fatalf("expected expired for past expiry")
	}
	if (ValidationOutcome{ExpiryDate: &future}).Expired(now) {
		t.Fatalf("expected not expired for future expiry")
	}
	if (ValidationOutcome{}).Expired(now) {
		t.Fatalf("missing expiry must not count as expired")
	}
}
