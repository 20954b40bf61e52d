package exam

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lawqena/exam_portal/models"
)

// Sessions is the process-wide registry of live exam sessions.
var Sessions = NewManager()

// Manager owns at most one session per student. Starting a new session
// tears down any previous one first, so an orphaned countdown can never
// outlive the attempt it belonged to.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[uuid.UUID]*Session)}
}

// StartSession creates and activates a session for the user, replacing a
// prior session if one exists. The replaced session is closed, not
// completed: it leaves no attempt record.
func (m *Manager) StartSession(userID, subjectID uuid.UUID, examType string, questions []models.Question, duration time.Duration, onExpire func(Result)) (*Session, error) {
	s, err := NewSession(userID, subjectID, examType, questions, duration, onExpire)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if prev, ok := m.sessions[userID]; ok {
		prev.Close()
	}
	m.sessions[userID] = s
	m.mu.Unlock()

	s.Start()
	return s, nil
}

// Get returns the user's current session, live or completed-but-unreaped.
func (m *Manager) Get(userID uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// Remove closes and forgets the user's session.
func (m *Manager) Remove(userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		s.Close()
		delete(m.sessions, userID)
	}
}

// ReapFinished drops terminal sessions from the registry and returns how
// many were removed. Run periodically so completed sessions do not pile up.
func (m *Manager) ReapFinished() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	reaped := 0
	for userID, s := range m.sessions {
		if s.Done() {
			delete(m.sessions, userID)
			reaped++
		}
	}
	return reaped
}
