package exam

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawqena/exam_portal/models"
)

func TestManagerOneSessionPerUser(t *testing.T) {
	m := NewManager()
	userID := uuid.New()
	bank := makeBank(uuid.New(), 3, 0)

	first, err := m.StartSession(userID, bank[0].SubjectID, models.ExamTypeTrial, bank, time.Hour, nil)
	require.NoError(t, err)

	second, err := m.StartSession(userID, bank[0].SubjectID, models.ExamTypeFinal, bank, time.Hour, nil)
	require.NoError(t, err)

	assert.True(t, first.Done(), "replaced session must be closed")
	got, ok := m.Get(userID)
	require.True(t, ok)
	assert.Same(t, second, got)
	second.Close()
}

func TestManagerRejectsEmptyAssembly(t *testing.T) {
	m := NewManager()
	_, err := m.StartSession(uuid.New(), uuid.New(), models.ExamTypeTrial, nil, time.Hour, nil)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func TestManagerRemoveClosesSession(t *testing.T) {
	m := NewManager()
	userID := uuid.New()
	bank := makeBank(uuid.New(), 2, 0)

	s, err := m.StartSession(userID, bank[0].SubjectID, models.ExamTypeTrial, bank, time.Hour, nil)
	require.NoError(t, err)

	m.Remove(userID)
	assert.True(t, s.Done())
	_, ok := m.Get(userID)
	assert.False(t, ok)
}

func TestManagerReapFinished(t *testing.T) {
	m := NewManager()
	bank := makeBank(uuid.New(), 2, 0)

	liveUser := uuid.New()
	live, err := m.StartSession(liveUser, bank[0].SubjectID, models.ExamTypeTrial, bank, time.Hour, nil)
	require.NoError(t, err)
	defer live.Close()

	doneUser := uuid.New()
	finished, err := m.StartSession(doneUser, bank[0].SubjectID, models.ExamTypeTrial, bank, time.Hour, nil)
	require.NoError(t, err)
	_, err = finished.Submit()
	require.NoError(t, err)

	assert.Equal(t, 1, m.ReapFinished())
	_, ok := m.Get(doneUser)
	assert.False(t, ok)
	_, ok = m.Get(liveUser)
	assert.True(t, ok, "live sessions survive the reaper")
}
