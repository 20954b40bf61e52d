package exam

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lawqena/exam_portal/models"
)

type SessionState string

const (
	StatePreparing SessionState = "preparing"
	StateActive    SessionState = "active"
	StateCompleted SessionState = "completed"
)

var (
	// ErrNoQuestions is returned when assembly produced an empty question
	// list; a session is never allowed to sit in "preparing" forever.
	ErrNoQuestions = errors.New("no questions available for this exam")

	// ErrNotActive is returned for answer/navigate/submit calls on a
	// session that already completed or was torn down.
	ErrNotActive = errors.New("exam session is not active")
)

// Result is the immutable outcome of a completed session, handed to the
// persistence layer. StartTime is back-computed from the elapsed countdown
// so it reflects "now minus elapsed" rather than the wall clock at click.
type Result struct {
	UserID    uuid.UUID
	SubjectID uuid.UUID
	ExamType  string
	Questions []models.Question
	Answers   map[uuid.UUID]string
	StartTime time.Time
	EndTime   time.Time
}

// Session is the live state machine for one attempt:
// preparing -> active -> completed. There is no paused or cancelled state;
// tearing a session down before completion persists nothing.
//
// Completion can be triggered by the countdown reaching zero or by a manual
// Submit, and exactly one of them wins: every transition runs under one
// mutex and the ticker is disabled the moment the session leaves active.
type Session struct {
	UserID    uuid.UUID
	SubjectID uuid.UUID
	ExamType  string

	mu           sync.Mutex
	state        SessionState
	questions    []models.Question
	currentIndex int
	answers      map[uuid.UUID]string
	timeLeft     int
	duration     int
	stopped      bool

	tickInterval time.Duration
	stop         chan struct{}

	// onExpire fires exactly once when the countdown auto-submits. Manual
	// submission returns its Result to the caller instead.
	onExpire func(Result)
}

// NewSession builds a session in the preparing state. It fails fast on an
// empty question list instead of showing a loading screen indefinitely.
func NewSession(userID, subjectID uuid.UUID, examType string, questions []models.Question, duration time.Duration, onExpire func(Result)) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return &Session{
		UserID:       userID,
		SubjectID:    subjectID,
		ExamType:     examType,
		state:        StatePreparing,
		questions:    questions,
		answers:      make(map[uuid.UUID]string),
		timeLeft:     int(duration / time.Second),
		duration:     int(duration / time.Second),
		tickInterval: time.Second,
		stop:         make(chan struct{}),
		onExpire:     onExpire,
	}, nil
}

// Start transitions to active and begins the once-per-second countdown.
func (s *Session) Start() {
	s.mu.Lock()
	if s.state != StatePreparing || s.stopped {
		s.mu.Unlock()
		return
	}
	s.state = StateActive
	s.mu.Unlock()
	go s.run()
}

func (s *Session) run() {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if s.tick() {
				return
			}
		}
	}
}

// tick decrements the countdown and auto-submits at zero with whatever
// answers exist at that instant. It reports whether the session reached a
// terminal state.
func (s *Session) tick() bool {
	s.mu.Lock()
	if s.state != StateActive || s.stopped {
		s.mu.Unlock()
		return true
	}
	s.timeLeft--
	if s.timeLeft > 0 {
		s.mu.Unlock()
		return false
	}
	s.timeLeft = 0
	res := s.completeLocked()
	s.mu.Unlock()

	if s.onExpire != nil {
		s.onExpire(res)
	}
	return true
}

// RecordAnswer upserts the chosen answer. It does not advance the question
// pointer and does not validate the answer against the options; an illegal
// value just never matches during scoring.
func (s *Session) RecordAnswer(questionID uuid.UUID, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive || s.stopped {
		return ErrNotActive
	}
	s.answers[questionID] = answer
	return nil
}

// Advance moves the question pointer by delta, clamped to the question list
// bounds. Moving past either end is a no-op, and the current question does
// not need to be answered.
func (s *Session) Advance(delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive || s.stopped {
		return ErrNotActive
	}
	next := s.currentIndex + delta
	if next < 0 {
		next = 0
	}
	if next > len(s.questions)-1 {
		next = len(s.questions) - 1
	}
	s.currentIndex = next
	return nil
}

// Submit completes the session immediately, from any question index,
// independent of the timer. The countdown is cancelled and the result is
// returned to the caller for persistence.
func (s *Session) Submit() (Result, error) {
	s.mu.Lock()
	if s.state != StateActive || s.stopped {
		s.mu.Unlock()
		return Result{}, ErrNotActive
	}
	res := s.completeLocked()
	s.mu.Unlock()
	return res, nil
}

// completeLocked performs the single transition into completed. Callers
// hold s.mu.
func (s *Session) completeLocked() Result {
	s.state = StateCompleted
	s.stopTickerLocked()

	answers := make(map[uuid.UUID]string, len(s.answers))
	for id, a := range s.answers {
		answers[id] = a
	}

	now := time.Now()
	elapsed := time.Duration(s.duration-s.timeLeft) * time.Second
	return Result{
		UserID:    s.UserID,
		SubjectID: s.SubjectID,
		ExamType:  s.ExamType,
		Questions: s.questions,
		Answers:   answers,
		StartTime: now.Add(-elapsed),
		EndTime:   now,
	}
}

// Close stops the countdown without completing the session. It is the
// teardown hook for a student leaving the exam screen: no attempt is
// written and the ticker goroutine must not keep mutating state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTickerLocked()
}

func (s *Session) stopTickerLocked() {
	if !s.stopped {
		s.stopped = true
		close(s.stop)
	}
}

// Done reports whether the session is terminal: completed, or torn down.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateCompleted || s.stopped
}

// Snapshot is a point-in-time copy of the live session for the API layer.
type Snapshot struct {
	SubjectID    uuid.UUID
	ExamType     string
	State        SessionState
	CurrentIndex int
	TimeLeft     int
	Questions    []models.Question
	Answers      map[uuid.UUID]string
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make(map[uuid.UUID]string, len(s.answers))
	for id, a := range s.answers {
		answers[id] = a
	}
	return Snapshot{
		SubjectID:    s.SubjectID,
		ExamType:     s.ExamType,
		State:        s.state,
		CurrentIndex: s.currentIndex,
		TimeLeft:     s.timeLeft,
		Questions:    s.questions,
		Answers:      answers,
	}
}
