package exam

import (
	"github.com/google/uuid"

	"github.com/lawqena/exam_portal/models"
)

type Grade string

const (
	GradeFail      Grade = "fail"
	GradePass      Grade = "pass"
	GradeGood      Grade = "good"
	GradeVeryGood  Grade = "very_good"
	GradeExcellent Grade = "excellent"
	GradeNA        Grade = "n/a"
)

// Arabic returns the grade label printed on result certificates.
func (g Grade) Arabic() string {
	switch g {
	case GradeFail:
		return "ساقط"
	case GradePass:
		return "مقبول"
	case GradeGood:
		return "جيد"
	case GradeVeryGood:
		return "جيد جداً"
	case GradeExcellent:
		return "امتياز"
	default:
		return "غير متاح"
	}
}

// Score counts answers that match the canonical correct answer by string
// equality. Unanswered questions count as wrong; a malformed answer simply
// never matches. The total is the assembled set size, which may be smaller
// than the configured target when the bank ran short.
func Score(questions []models.Question, answers map[uuid.UUID]string) (score, total int) {
	for _, q := range questions {
		if answers[q.ID] == q.CorrectAnswer {
			score++
		}
	}
	return score, len(questions)
}

// GradeFor maps a raw score to a grade band by percentage:
// <50 fail, 50-64 pass, 65-79 good, 80-89 very good, >=90 excellent.
// A zero-question attempt grades as n/a rather than erroring.
func GradeFor(score, total int) Grade {
	if total == 0 {
		return GradeNA
	}
	percentage := float64(score) / float64(total) * 100
	switch {
	case percentage < 50:
		return GradeFail
	case percentage < 65:
		return GradePass
	case percentage < 80:
		return GradeGood
	case percentage < 90:
		return GradeVeryGood
	default:
		return GradeExcellent
	}
}

// FinalScore20 normalizes a raw score to the faculty's 20-point scale. This
// is presentation only; the stored attempt keeps the raw count.
func FinalScore20(score, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(score) / float64(total) * 20
}
