package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lawqena/exam_portal/models"
)

func TestQuotaFor(t *testing.T) {
	t.Run("FinalDeniedAfterTwoAttempts", func(t *testing.T) {
		status := QuotaFor(models.ExamTypeFinal, 2)
		assert.False(t, status.Allowed)
		assert.Equal(t, models.ExamTypeFinal, status.ExamType)
		assert.Equal(t, 2, status.AttemptsUsed)
		assert.Equal(t, MaxFinalAttempts, status.MaxAttempts)
	})

	t.Run("TrialStillAllowedForSameStudent", func(t *testing.T) {
		// Two prior final attempts say nothing about the trial quota.
		status := QuotaFor(models.ExamTypeTrial, 0)
		assert.True(t, status.Allowed)
		assert.Equal(t, MaxTrialAttempts, status.MaxAttempts)
	})

	t.Run("TrialDeniedAtFour", func(t *testing.T) {
		assert.True(t, QuotaFor(models.ExamTypeTrial, 3).Allowed)
		assert.False(t, QuotaFor(models.ExamTypeTrial, 4).Allowed)
	})

	t.Run("FinalAllowedUnderLimit", func(t *testing.T) {
		assert.True(t, QuotaFor(models.ExamTypeFinal, 1).Allowed)
	})
}
