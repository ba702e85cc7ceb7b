package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/capture"
	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/clock"
	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/domain"
)

type memJournal struct {
	mu      sync.Mutex
	entries []domain.JournalEntry
}

func (j *memJournal) Record(ctx context.Context, entry domain.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
	return nil
}

func (j *memJournal) all() []domain.JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]domain.JournalEntry, len(j.entries))
	copy(out, j.entries)
	return out
}

func newTestManager(client *fakeClient, opts ...ManagerOption) *Manager {
	clk := clock.NewFixed(time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC))
	svc := NewCheckinService(client, clk)
	return NewManager(client, svc, clk, opts...)
}

func outcomeForToken(name string) func(domain.Credential) domain.ValidationOutcome {
	return func(cred domain.Credential) domain.ValidationOutcome {
		return domain.ValidationOutcome{
			Valid:       true,
			SubjectType: cred.Type,
			Name:        name,
			Token:       cred.Token,
			Event:       &domain.EventSnapshot{ID: "ev-1"},
		}
	}
}

func TestSession_ScanSetsOutcome(t *testing.T) {
	t.Parallel()

	client := &fakeClient{validateFn: outcomeForToken("Ada")}
	s := newTestManager(client).Create()

	got, err := s.Scan(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !got.Valid || got.Token != "ABC123" {
		t.Fatalf("unexpected outcome %+v", got)
	}

	current, ok := s.Current()
	if !ok || current.Token != "ABC123" {
		t.Fatalf("expected outcome held by session, got %+v ok=%v", current, ok)
	}
}

func TestSession_ParseErrorNeverReachesNetwork(t *testing.T) {
	t.Parallel()

	client := &fakeClient{validateFn: outcomeForToken("Ada")}
	s := newTestManager(client).Create()

	if _, err := s.Scan(context.Background(), `{"foo":"bar"}`); !errors.Is(err, domain.ErrUnrecognizedPayload) {
		t.Fatalf("expected ErrUnrecognizedPayload, got %v", err)
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	if len(client.validateCalls) != 0 {
		t.Fatalf("parse error must not trigger validation, got %d calls", len(client.validateCalls))
	}
}

func TestSession_StaleResponseDiscarded(t *testing.T) {
	t.Parallel()

	slowGate := make(chan struct{})
	client := &fakeClient{
		validateFn:   outcomeForToken("subject"),
		validateGate: map[string]chan struct{}{"AAAAA1": slowGate},
	}
	s := newTestManager(client).Create()

	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Scan(context.Background(), "AAAAA1")
		firstErr <- err
	}()

	// Wait for the first attempt to be issued before racing the second.
	deadline := time.Now().Add(time.Second)
	for {
		client.mu.Lock()
		n := len(client.validateCalls)
		client.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("first validate call never issued")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := s.Scan(context.Background(), "BBBBB2"); err != nil {
		t.Fatalf("second scan: %v", err)
	}

	close(slowGate)
	if err := <-firstErr; !errors.Is(err, domain.ErrValidationSuperseded) {
		t.Fatalf("expected ErrValidationSuperseded, got %v", err)
	}

	current, ok := s.Current()
	if !ok || current.Token != "BBBBB2" {
		t.Fatalf("stale response overwrote the newer outcome: %+v", current)
	}
}

func TestSession_ClearInvalidatesInFlightValidation(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	client := &fakeClient{
		validateFn:   outcomeForToken("subject"),
		validateGate: map[string]chan struct{}{"AAAAA1": gate},
	}
	s := newTestManager(client).Create()

	errCh := make(chan error, 1)
	go func() {
		_, err := s.Scan(context.Background(), "AAAAA1")
		errCh <- err
	}()

	deadline := time.Now().Add(time.Second)
	for {
		client.mu.Lock()
		n := len(client.validateCalls)
		client.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("validate call never issued")
		}
		time.Sleep(time.Millisecond)
	}

	s.Clear()
	close(gate)

	if err := <-errCh; !errors.Is(err, domain.ErrValidationSuperseded) {
		t.Fatalf("expected ErrValidationSuperseded, got %v", err)
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("cleared session must hold no outcome")
	}
}

func TestSession_ModeSwitchDiscardsOutcome(t *testing.T) {
	t.Parallel()

	client := &fakeClient{validateFn: outcomeForToken("Ada")}
	s := newTestManager(client).Create()

	if _, err := s.Scan(context.Background(), "abc123"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	s.SetMode(ModeManual)
	if _, ok := s.Current(); ok {
		t.Fatalf("mode switch must discard the outcome")
	}
	if s.Mode() != ModeManual {
		t.Fatalf("expected manual mode")
	}
}

func TestSession_CheckInSingleFlight(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	client := &fakeClient{
		validateFn:  outcomeForToken("Ada"),
		checkinGate: gate,
	}
	s := newTestManager(client).Create()

	if _, err := s.Scan(context.Background(), "abc123"); err != nil {
		t.Fatalf("scan: %v", err)
	}

	firstDone := make(chan error, 1)
	go func() {
		_, err := s.CheckIn(context.Background(), "ag-1")
		firstDone <- err
	}()

	deadline := time.Now().Add(time.Second)
	for {
		client.mu.Lock()
		n := len(client.checkinCalls)
		client.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("first check-in never issued")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := s.CheckIn(context.Background(), "ag-1"); !errors.Is(err, domain.ErrCheckinInProgress) {
		t.Fatalf("expected ErrCheckinInProgress, got %v", err)
	}

	close(gate)
	if err := <-firstDone; err != nil {
		t.Fatalf("first check-in: %v", err)
	}

	current, ok := s.Current()
	if !ok || !current.CheckedIn || !current.HasAgenda("ag-1") {
		t.Fatalf("expected merged outcome, got %+v", current)
	}
}

func TestSession_DoubleClickMergesAgendaOnce(t *testing.T) {
	t.Parallel()

	client := &fakeClient{validateFn: outcomeForToken("Ada")}
	s := newTestManager(client).Create()

	if _, err := s.Scan(context.Background(), "abc123"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if _, err := s.CheckIn(context.Background(), "ag-1"); err != nil {
		t.Fatalf("first check-in: %v", err)
	}
	if _, err := s.CheckIn(context.Background(), "ag-1"); err != nil {
		t.Fatalf("second check-in: %v", err)
	}

	current, _ := s.Current()
	var count int
	for _, id := range current.AgendaCheckedIn {
		if id == "ag-1" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected ag-1 exactly once, got %v", current.AgendaCheckedIn)
	}
}

func TestSession_ClearDuringCheckinDropsMerge(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	client := &fakeClient{
		validateFn:  outcomeForToken("Ada"),
		checkinGate: gate,
	}
	s := newTestManager(client).Create()

	if _, err := s.Scan(context.Background(), "abc123"); err != nil {
		t.Fatalf("scan: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.CheckIn(context.Background(), "")
		done <- err
	}()

	deadline := time.Now().Add(time.Second)
	for {
		client.mu.Lock()
		n := len(client.checkinCalls)
		client.mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("check-in never issued")
		}
		time.Sleep(time.Millisecond)
	}

	s.Clear()
	close(gate)

	if err := <-done; err != nil {
		t.Fatalf("check-in itself still succeeds, got %v", err)
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("merge must not resurrect a cleared outcome")
	}
}

func TestSession_CheckInWithoutOutcome(t *testing.T) {
	t.Parallel()

	s := newTestManager(&fakeClient{}).Create()
	if _, err := s.CheckIn(context.Background(), ""); !errors.Is(err, domain.ErrOutcomeNotValid) {
		t.Fatalf("expected ErrOutcomeNotValid, got %v", err)
	}
}

func TestSession_JournalsScansAndCheckins(t *testing.T) {
	t.Parallel()

	journal := &memJournal{}
	client := &fakeClient{validateFn: outcomeForToken("Ada")}
	s := newTestManager(client, WithJournal(journal)).Create()

	if _, err := s.Scan(context.Background(), "abc123"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if _, err := s.Scan(context.Background(), "not a token"); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := s.CheckIn(context.Background(), "ag-1"); err != nil {
		t.Fatalf("check-in: %v", err)
	}

	entries := journal.all()
	if len(entries) != 3 {
		t.Fatalf("expected 3 journal entries, got %d", len(entries))
	}
	if entries[0].Kind != domain.JournalScan || !entries[0].Accepted || entries[0].Value != "ABC123" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Accepted {
		t.Fatalf("parse failure must journal as rejected: %+v", entries[1])
	}
	if entries[2].Kind != domain.JournalCheckin || entries[2].AgendaID != "ag-1" {
		t.Fatalf("unexpected check-in entry %+v", entries[2])
	}
	for _, e := range entries {
		if e.ID == "" || e.SessionID != s.ID() || e.CreatedAt.IsZero() {
			t.Fatalf("journal entry missing metadata: %+v", e)
		}
	}
}

type feedHandle struct {
	lines chan string
	once  sync.Once
}

func (h *feedHandle) Lines() <-chan string { return h.lines }
func (h *feedHandle) Close() error {
	h.once.Do(func() { close(h.lines) })
	return nil
}

type feedDevice struct {
	handle *feedHandle
}

func (d *feedDevice) Enumerate(ctx context.Context) ([]capture.DeviceInfo, error) {
	return []capture.DeviceInfo{{ID: "dev-0", Facing: capture.FacingEnvironment}}, nil
}

func (d *feedDevice) Open(ctx context.Context, id string) (capture.Handle, error) {
	return d.handle, nil
}

func TestSession_CaptureFeedsScans(t *testing.T) {
	t.Parallel()

	device := &feedDevice{handle: &feedHandle{lines: make(chan string, 4)}}
	ctrl := capture.NewController(device, capture.WithMinInterval(0))

	client := &fakeClient{validateFn: outcomeForToken("Ada")}
	s := newTestManager(client, WithCapture(ctrl)).Create()

	if err := s.StartCapture(context.Background()); err != nil {
		t.Fatalf("start capture: %v", err)
	}
	if s.CaptureState() != capture.StateActive {
		t.Fatalf("expected active capture, got %s", s.CaptureState())
	}

	device.handle.lines <- "abc123"

	deadline := time.Now().Add(time.Second)
	for {
		if current, ok := s.Current(); ok && current.Token == "ABC123" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("captured payload never validated")
		}
		time.Sleep(time.Millisecond)
	}

	s.StopCapture()
	if s.CaptureState() != capture.StateIdle {
		t.Fatalf("expected idle capture after stop, got %s", s.CaptureState())
	}
}

func TestSession_StartCaptureWithoutDevice(t *testing.T) {
	t.Parallel()

	s := newTestManager(&fakeClient{}).Create()
	if err := s.StartCapture(context.Background()); !errors.Is(err, capture.ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice, got %v", err)
	}
}

func TestManager_CreateGetRemove(t *testing.T) {
	t.Parallel()

	m := newTestManager(&fakeClient{})
	s := m.Create()

	got, err := m.Get(s.ID())
	if err != nil || got != s {
		t.Fatalf("expected session back, got %v %v", got, err)
	}

	if err := m.Remove(s.ID()); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := m.Get(s.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := m.Remove(s.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on second remove, got %v", err)
	}
}
