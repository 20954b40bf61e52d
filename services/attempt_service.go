package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lawqena/exam_portal/database"
	"github.com/lawqena/exam_portal/exam"
	"github.com/lawqena/exam_portal/models"
)

// Per-mode attempt quotas for one (student, subject) pair.
const (
	MaxTrialAttempts = 4
	MaxFinalAttempts = 2
)

// QuotaStatus tells the caller not just whether another attempt is allowed
// but why not, so the client can render the reason.
type QuotaStatus struct {
	ExamType     string `json:"exam_type"`
	AttemptsUsed int    `json:"attempts_used"`
	MaxAttempts  int    `json:"max_attempts"`
	Allowed      bool   `json:"allowed"`
}

func MaxAttempts(examType string) int {
	if examType == models.ExamTypeFinal {
		return MaxFinalAttempts
	}
	return MaxTrialAttempts
}

// QuotaFor evaluates the quota gate for a known prior-attempt count.
func QuotaFor(examType string, attemptsUsed int) QuotaStatus {
	max := MaxAttempts(examType)
	return QuotaStatus{
		ExamType:     examType,
		AttemptsUsed: attemptsUsed,
		MaxAttempts:  max,
		Allowed:      attemptsUsed < max,
	}
}

func CountAttempts(userID, subjectID uuid.UUID, examType string) (int64, error) {
	var count int64
	err := database.DB.Model(&models.ExamAttempt{}).
		Where("user_id = ? AND subject_id = ? AND exam_type = ?", userID, subjectID, examType).
		Count(&count).Error
	return count, err
}

// CheckQuota loads the user's prior attempt count for (subject, mode) and
// applies the quota gate.
func CheckQuota(userID, subjectID uuid.UUID, examType string) (QuotaStatus, error) {
	count, err := CountAttempts(userID, subjectID, examType)
	if err != nil {
		return QuotaStatus{}, err
	}
	return QuotaFor(examType, int(count)), nil
}

// RecordAttempt scores a finished session and appends the attempt record.
// The attempt row, its ordered question list and its answer rows are
// written in one transaction: either the whole attempt exists or nothing
// does. Attempts are never updated afterwards.
func RecordAttempt(result exam.Result) (models.ExamAttempt, error) {
	score, total := exam.Score(result.Questions, result.Answers)

	attempt := models.ExamAttempt{
		UserID:         result.UserID,
		SubjectID:      result.SubjectID,
		ExamType:       result.ExamType,
		StartTime:      result.StartTime,
		EndTime:        result.EndTime,
		Score:          score,
		TotalQuestions: total,
		Status:         models.AttemptStatusCompleted,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&attempt).Error; err != nil {
			return err
		}

		attemptQuestions := make([]models.AttemptQuestion, len(result.Questions))
		for i, q := range result.Questions {
			attemptQuestions[i] = models.AttemptQuestion{
				AttemptID:  attempt.ID,
				QuestionID: q.ID,
				Position:   i,
			}
		}
		if len(attemptQuestions) > 0 {
			if err := tx.Create(&attemptQuestions).Error; err != nil {
				return err
			}
		}

		var attemptAnswers []models.AttemptAnswer
		for _, q := range result.Questions {
			selected, answered := result.Answers[q.ID]
			if !answered {
				continue
			}
			attemptAnswers = append(attemptAnswers, models.AttemptAnswer{
				AttemptID:      attempt.ID,
				QuestionID:     q.ID,
				SelectedAnswer: selected,
				IsCorrect:      selected == q.CorrectAnswer,
			})
		}
		if len(attemptAnswers) > 0 {
			if err := tx.Create(&attemptAnswers).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.ExamAttempt{}, err
	}
	return attempt, nil
}

// ReconstructQuestions resolves an attempt's presented question list, in
// the original order, against the current bank. Records predating the
// ordered question list fall back to the answered-question ids. Questions
// since deleted from the bank are dropped silently.
func ReconstructQuestions(attempt models.ExamAttempt) ([]models.Question, error) {
	var questionIDs []uuid.UUID

	var attemptQuestions []models.AttemptQuestion
	if err := database.DB.
		Where("attempt_id = ?", attempt.ID).
		Order("position ASC").
		Find(&attemptQuestions).Error; err != nil {
		return nil, err
	}

	if len(attemptQuestions) > 0 {
		for _, aq := range attemptQuestions {
			questionIDs = append(questionIDs, aq.QuestionID)
		}
	} else {
		// Legacy attempt without an ordered question list.
		var attemptAnswers []models.AttemptAnswer
		if err := database.DB.
			Where("attempt_id = ?", attempt.ID).
			Find(&attemptAnswers).Error; err != nil {
			return nil, err
		}
		for _, aa := range attemptAnswers {
			questionIDs = append(questionIDs, aa.QuestionID)
		}
	}

	if len(questionIDs) == 0 {
		return nil, nil
	}

	var bankQuestions []models.Question
	if err := database.DB.Where("id IN ?", questionIDs).Find(&bankQuestions).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Question, len(bankQuestions))
	for _, q := range bankQuestions {
		byID[q.ID] = q
	}

	questions := make([]models.Question, 0, len(questionIDs))
	for _, id := range questionIDs {
		if q, ok := byID[id]; ok {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

// AttemptAnswers loads the frozen answer rows for an attempt, keyed by
// question id.
func AttemptAnswers(attemptID uuid.UUID) (map[uuid.UUID]models.AttemptAnswer, error) {
	var rows []models.AttemptAnswer
	if err := database.DB.Where("attempt_id = ?", attemptID).Find(&rows).Error; err != nil {
		return nil, err
	}
	byQuestion := make(map[uuid.UUID]models.AttemptAnswer, len(rows))
	for _, row := range rows {
		byQuestion[row.QuestionID] = row
	}
	return byQuestion, nil
}
