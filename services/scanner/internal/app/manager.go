package app

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/capture"
	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/clock"
	"github.com/devsharmatech/bds-ev-sub000/services/scanner/internal/domain"
)

// Manager creates and looks up scan sessions. All sessions share one
// capture controller, mirroring the single physical device per gateway:
// starting capture from one session stops any other session's capture.
type Manager struct {
	client   Validator
	checkins *CheckinService
	capture  *capture.Controller
	journal  JournalRecorder
	clock    clock.Clock
	logger   *log.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

type ManagerOption func(*Manager)

// WithCapture wires the shared capture controller. Without it sessions are
// manual-entry only.
func WithCapture(ctrl *capture.Controller) ManagerOption {
	return func(m *Manager) {
		m.capture = ctrl
	}
}

// WithJournal wires the audit journal.
func WithJournal(journal JournalRecorder) ManagerOption {
	return func(m *Manager) {
		m.journal = journal
	}
}

func WithLogger(logger *log.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func NewManager(client Validator, checkins *CheckinService, clk clock.Clock, opts ...ManagerOption) *Manager {
	m := &Manager{
		client:   client,
		checkins: checkins,
		clock:    clk,
		logger:   log.Default(),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create registers a new session in scan mode.
func (m *Manager) Create() *Session {
	s := &Session{
		id:       uuid.NewString(),
		checkins: m.checkins,
		client:   m.client,
		capture:  m.capture,
		journal:  m.journal,
		clock:    m.clock,
		logger:   m.logger,
		mode:     ModeScan,
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Remove drops a session, stopping its capture and discarding its outcome.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	s.StopCapture()
	s.Clear()
	return nil
}
