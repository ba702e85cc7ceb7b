package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/capture"
	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/clock"
	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/domain"
	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/payload"
)

type InputMode string

const (
	ModeScan   InputMode = "scan"
	ModeManual InputMode = "manual"
)

// JournalRecorder persists audit entries. Journal writes are best-effort:
// failures are logged and never fail the operation being journaled.
type JournalRecorder interface {
	Record(ctx context.Context, entry domain.JournalEntry) error
}

// scanTimeout bounds validation triggered by capture frames, which run
// outside any HTTP request context.
const scanTimeout = 15 * time.Second

// Session is one operator's check-in flow: it sequences interpretation,
// validation and check-in, holds the current outcome, and guarantees that a
// stale validation response never overwrites a newer one. Every validation
// attempt takes a sequence number; a response is applied only while its
// number is still the latest issued.
type Session struct {
	id       string
	checkins *CheckinService
	client   Validator
	capture  *capture.Controller
	journal  JournalRecorder
	clock    clock.Clock
	logger   *log.Logger

	mu          sync.Mutex
	seq         uint64
	mode        InputMode
	outcome     *domain.ValidationOutcome
	checkinBusy bool
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Mode() InputMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches between scan and manual entry. Switching discards the
// current outcome and invalidates any in-flight validation.
func (s *Session) SetMode(mode InputMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode == s.mode {
		return
	}
	s.mode = mode
	s.seq++
	s.outcome = nil
}

// Current returns the session's outcome, if any.
func (s *Session) Current() (domain.ValidationOutcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil {
		return domain.ValidationOutcome{}, false
	}
	return *s.outcome, true
}

// Clear discards the current outcome and invalidates in-flight validation
// and check-in effects.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.outcome = nil
}

// Scan interprets a decoded or pasted payload and validates it. Parse errors
// are local and typed; they never reach the network.
func (s *Session) Scan(ctx context.Context, raw string) (domain.ValidationOutcome, error) {
	cred, err := payload.Interpret(raw)
	if err != nil {
		s.journalScan(ctx, domain.Credential{}, false, err.Error())
		return domain.ValidationOutcome{}, err
	}
	return s.validate(ctx, cred)
}

// Manual validates operator-typed input with an explicitly chosen type.
func (s *Session) Manual(ctx context.Context, raw string, typ domain.CredentialType) (domain.ValidationOutcome, error) {
	cred, err := payload.InterpretManual(raw, typ)
	if err != nil {
		s.journalScan(ctx, domain.Credential{Type: typ}, false, err.Error())
		return domain.ValidationOutcome{}, err
	}
	return s.validate(ctx, cred)
}

func (s *Session) validate(ctx context.Context, cred domain.Credential) (domain.ValidationOutcome, error) {
	s.mu.Lock()
	s.seq++
	attempt := s.seq
	s.mu.Unlock()

	outcome := s.client.Validate(ctx, cred)

	s.mu.Lock()
	if attempt != s.seq {
		s.mu.Unlock()
		return domain.ValidationOutcome{}, domain.ErrValidationSuperseded
	}
	s.outcome = &outcome
	s.mu.Unlock()

	s.journalScan(ctx, cred, outcome.Valid, outcome.ErrorMessage)
	return outcome, nil
}

// CheckIn runs the coordinator against the session's current outcome.
// Concurrent check-ins for the same session are refused rather than queued,
// so interleaved merges cannot corrupt the agenda set.
func (s *Session) CheckIn(ctx context.Context, agendaID string) (domain.ValidationOutcome, error) {
	s.mu.Lock()
	if s.outcome == nil {
		s.mu.Unlock()
		return domain.ValidationOutcome{}, domain.ErrOutcomeNotValid
	}
	if s.checkinBusy {
		s.mu.Unlock()
		return domain.ValidationOutcome{}, domain.ErrCheckinInProgress
	}
	s.checkinBusy = true
	outcome := *s.outcome
	attempt := s.seq
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.checkinBusy = false
		s.mu.Unlock()
	}()

	merged, err := s.checkins.CheckIn(ctx, outcome, agendaID)
	if err != nil {
		s.journalCheckin(ctx, outcome, agendaID, false, err.Error())
		return outcome, err
	}

	s.mu.Lock()
	// The operator may have cleared the result while the call was in
	// flight; if so the merge must not resurrect it.
	if attempt == s.seq {
		s.outcome = &merged
	}
	s.mu.Unlock()

	s.journalCheckin(ctx, merged, agendaID, true, "")
	return merged, nil
}

// StartCapture binds the shared capture device to this session and feeds
// decoded payloads through Scan until the capture session ends.
func (s *Session) StartCapture(ctx context.Context) error {
	if s.capture == nil {
		return capture.ErrNoDevice
	}
	payloads, err := s.capture.Start(ctx)
	if err != nil {
		return err
	}

	go func() {
		for raw := range payloads {
			scanCtx, cancel := context.WithTimeout(context.Background(), scanTimeout)
			if _, err := s.Scan(scanCtx, raw); err != nil {
				s.logger.Printf("WARN: session %s: scan %q: %v", s.id, raw, err)
			}
			cancel()
		}
	}()
	return nil
}

// StopCapture releases the capture device. Safe to call when capture never
// started.
func (s *Session) StopCapture() {
	if s.capture != nil {
		s.capture.Stop()
	}
}

// CaptureState reports the capture lifecycle state for this session's
// controller.
func (s *Session) CaptureState() capture.State {
	if s.capture == nil {
		return capture.StateIdle
	}
	return s.capture.State()
}

// CaptureErr returns the cause of the most recent capture failure, if any.
func (s *Session) CaptureErr() error {
	if s.capture == nil {
		return nil
	}
	return s.capture.Err()
}

func (s *Session) journalScan(ctx context.Context, cred domain.Credential, accepted bool, message string) {
	s.record(ctx, domain.JournalEntry{
		Kind:           domain.JournalScan,
		CredentialType: cred.Type,
		Value:          cred.CanonicalForm(),
		Accepted:       accepted,
		Message:        message,
	})
}

func (s *Session) journalCheckin(ctx context.Context, outcome domain.ValidationOutcome, agendaID string, accepted bool, message string) {
	value := outcome.Token
	if outcome.SubjectType == domain.CredentialMembership {
		value = outcome.MembershipID
	}
	s.record(ctx, domain.JournalEntry{
		Kind:           domain.JournalCheckin,
		CredentialType: outcome.SubjectType,
		Value:          value,
		Accepted:       accepted,
		Message:        message,
		AgendaID:       agendaID,
	})
}

func (s *Session) record(ctx context.Context, entry domain.JournalEntry) {
	if s.journal == nil {
		return
	}
	entry.ID = uuid.NewString()
	entry.SessionID = s.id
	entry.CreatedAt = s.clock.Now()
	if err := s.journal.Record(ctx, entry); err != nil {
		s.logger.Printf("WARN: session %s: journal write failed: %v", s.id, err)
	}
}
