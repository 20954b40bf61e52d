package exam

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawqena/exam_portal/models"
)

func newTestSession(t *testing.T, questionCount int, duration time.Duration, onExpire func(Result)) *Session {
	t.Helper()
	bank := makeBank(uuid.New(), questionCount, 0)
	s, err := NewSession(uuid.New(), bank[0].SubjectID, models.ExamTypeTrial, bank, duration, onExpire)
	require.NoError(t, err)
	return s
}

func TestNewSessionRejectsEmptyQuestionList(t *testing.T) {
	_, err := NewSession(uuid.New(), uuid.New(), models.ExamTypeTrial, nil, time.Minute, nil)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestRecordAnswerIdempotentAndOverwriting(t *testing.T) {
	s := newTestSession(t, 3, time.Minute, nil)
	s.Start()
	defer s.Close()

	qID := s.questions[0].ID
	require.NoError(t, s.RecordAnswer(qID, "1"))
	require.NoError(t, s.RecordAnswer(qID, "1"))
	snap := s.Snapshot()
	assert.Equal(t, map[uuid.UUID]string{qID: "1"}, snap.Answers)

	// A later answer for the same question replaces the earlier one.
	require.NoError(t, s.RecordAnswer(qID, "2"))
	assert.Equal(t, "2", s.Snapshot().Answers[qID])
}

func TestAdvanceClampsAtBoundaries(t *testing.T) {
	s := newTestSession(t, 3, time.Minute, nil)
	s.Start()
	defer s.Close()

	require.NoError(t, s.Advance(-1))
	assert.Equal(t, 0, s.Snapshot().CurrentIndex, "prev at first question is a no-op")

	require.NoError(t, s.Advance(1))
	require.NoError(t, s.Advance(1))
	require.NoError(t, s.Advance(1))
	assert.Equal(t, 2, s.Snapshot().CurrentIndex, "next at last question is a no-op")

	require.NoError(t, s.Advance(-1))
	assert.Equal(t, 1, s.Snapshot().CurrentIndex)
}

func TestTickCountsDownAndAutoSubmitsOnce(t *testing.T) {
	var expiries int32
	done := make(chan Result, 2)
	s := newTestSession(t, 2, 2*time.Second, func(r Result) {
		atomic.AddInt32(&expiries, 1)
		done <- r
	})
	s.tickInterval = time.Millisecond
	qID := s.questions[0].ID

	s.Start()
	require.NoError(t, s.RecordAnswer(qID, "0"))

	select {
	case res := <-done:
		assert.Equal(t, map[uuid.UUID]string{qID: "0"}, res.Answers)
		assert.Len(t, res.Questions, 2)
		assert.False(t, res.EndTime.Before(res.StartTime))
	case <-time.After(5 * time.Second):
		t.Fatal("countdown never expired")
	}

	// The ticker must be dead: no further expiry, and late calls fail.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&expiries))
	assert.ErrorIs(t, s.RecordAnswer(qID, "1"), ErrNotActive)
	_, err := s.Submit()
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestLastTickTriggersExpiry(t *testing.T) {
	// timeLeft = 1: a single tick reaches zero and completes the session.
	var expiries int32
	s := newTestSession(t, 1, time.Second, func(Result) {
		atomic.AddInt32(&expiries, 1)
	})
	s.state = StateActive // drive ticks by hand instead of the real ticker

	assert.True(t, s.tick())
	assert.Equal(t, int32(1), atomic.LoadInt32(&expiries))
	assert.Equal(t, 0, s.Snapshot().TimeLeft)
	assert.Equal(t, StateCompleted, s.Snapshot().State)
}

func TestManualSubmitWinsOverTimer(t *testing.T) {
	s := newTestSession(t, 2, time.Hour, nil)
	s.Start()

	res, err := s.Submit()
	require.NoError(t, err)
	assert.Len(t, res.Questions, 2)
	assert.Equal(t, StateCompleted, s.Snapshot().State)

	_, err = s.Submit()
	assert.ErrorIs(t, err, ErrNotActive, "submit is not repeatable")
}

func TestSubmitAndExpiryRaceProducesOneResult(t *testing.T) {
	for i := 0; i < 50; i++ {
		var completions int32
		s := newTestSession(t, 1, time.Second, func(Result) {
			atomic.AddInt32(&completions, 1)
		})
		s.state = StateActive

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.tick()
		}()
		go func() {
			defer wg.Done()
			if _, err := s.Submit(); err == nil {
				atomic.AddInt32(&completions, 1)
			}
		}()
		wg.Wait()

		assert.Equal(t, int32(1), atomic.LoadInt32(&completions),
			"exactly one of auto-submit and manual submit must win")
	}
}

func TestCloseStopsTimerWithoutCompleting(t *testing.T) {
	var expiries int32
	s := newTestSession(t, 1, 2*time.Second, func(Result) {
		atomic.AddInt32(&expiries, 1)
	})
	s.tickInterval = time.Millisecond
	s.Start()
	s.Close()

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&expiries), "a closed session must never auto-submit")
	assert.True(t, s.Done())
	assert.ErrorIs(t, s.Advance(1), ErrNotActive)
}

func TestStartTimeBackComputedFromElapsed(t *testing.T) {
	s := newTestSession(t, 1, 10*time.Second, nil)
	s.state = StateActive

	// Simulate three elapsed seconds, then submit.
	s.tick()
	s.tick()
	s.tick()
	res, err := s.Submit()
	require.NoError(t, err)
	assert.InDelta(t, 3.0, res.EndTime.Sub(res.StartTime).Seconds(), 0.5)
}
