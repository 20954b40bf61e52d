package exam

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/lawqena/exam_portal/models"
)

func TestScore(t *testing.T) {
	q1 := models.Question{ID: uuid.New(), Type: models.QuestionTypeMCQ, CorrectAnswer: "0"}
	q2 := models.Question{ID: uuid.New(), Type: models.QuestionTypeTrueFalse, CorrectAnswer: "true"}
	questions := []models.Question{q1, q2}

	t.Run("HalfCorrect", func(t *testing.T) {
		answers := map[uuid.UUID]string{q1.ID: "0"}
		score, total := Score(questions, answers)
		assert.Equal(t, 1, score)
		assert.Equal(t, 2, total)
		assert.Equal(t, GradePass, GradeFor(score, total))
	})

	t.Run("UnansweredCountsAsWrong", func(t *testing.T) {
		score, total := Score(questions, map[uuid.UUID]string{})
		assert.Equal(t, 0, score)
		assert.Equal(t, 2, total)
	})

	t.Run("MalformedAnswerNeverMatches", func(t *testing.T) {
		answers := map[uuid.UUID]string{q1.ID: "banana", q2.ID: "TRUE"}
		score, _ := Score(questions, answers)
		assert.Equal(t, 0, score)
	})

	t.Run("ScoreNeverExceedsTotal", func(t *testing.T) {
		answers := map[uuid.UUID]string{
			q1.ID:      "0",
			q2.ID:      "true",
			uuid.New(): "0", // answer for a question not in the set
		}
		score, total := Score(questions, answers)
		assert.Equal(t, 2, score)
		assert.Equal(t, 2, total)
	})
}

func TestGradeForBoundaries(t *testing.T) {
	cases := []struct {
		name  string
		score int
		total int
		want  Grade
	}{
		{"JustBelowFifty", 49999, 100000, GradeFail},
		{"ExactlyFifty", 50, 100, GradePass},
		{"JustBelowSixtyFive", 64999, 100000, GradePass},
		{"ExactlySixtyFive", 65, 100, GradeGood},
		{"JustBelowEighty", 79999, 100000, GradeGood},
		{"ExactlyEighty", 80, 100, GradeVeryGood},
		{"JustBelowNinety", 89999, 100000, GradeVeryGood},
		{"ExactlyNinety", 90, 100, GradeExcellent},
		{"Perfect", 60, 60, GradeExcellent},
		{"Zero", 0, 60, GradeFail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GradeFor(tc.score, tc.total))
		})
	}
}

func TestGradeForEmptyAttempt(t *testing.T) {
	assert.Equal(t, GradeNA, GradeFor(0, 0))
}

func TestFinalScore20(t *testing.T) {
	assert.InDelta(t, 10.0, FinalScore20(30, 60), 0.001)
	assert.InDelta(t, 20.0, FinalScore20(60, 60), 0.001)
	assert.Zero(t, FinalScore20(0, 0))
}

func TestGradeArabicLabels(t *testing.T) {
	assert.Equal(t, "امتياز", GradeExcellent.Arabic())
	assert.Equal(t, "ساقط", GradeFail.Arabic())
	assert.NotEmpty(t, GradeNA.Arabic())
}
