package exam

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawqena/exam_portal/models"
)

func makeBank(subjectID uuid.UUID, mcq, trueFalse int) []models.Question {
	bank := make([]models.Question, 0, mcq+trueFalse)
	for i := 0; i < mcq; i++ {
		bank = append(bank, models.Question{
			ID:            uuid.New(),
			SubjectID:     subjectID,
			Type:          models.QuestionTypeMCQ,
			Text:          "mcq question",
			Options:       `["a","b","c","d"]`,
			CorrectAnswer: "0",
		})
	}
	for i := 0; i < trueFalse; i++ {
		bank = append(bank, models.Question{
			ID:            uuid.New(),
			SubjectID:     subjectID,
			Type:          models.QuestionTypeTrueFalse,
			Text:          "true/false question",
			CorrectAnswer: "true",
		})
	}
	return bank
}

func idSet(questions []models.Question) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(questions))
	for _, q := range questions {
		set[q.ID] = true
	}
	return set
}

func TestAssembleTrialSmallPool(t *testing.T) {
	// 4 MCQ + 2 true/false, trial requests up to 40: all 6 come back,
	// MCQ first.
	subjectID := uuid.New()
	bank := makeBank(subjectID, 4, 2)
	rng := rand.New(rand.NewSource(1))

	result := Assemble(rng, bank, models.DefaultExamSettings(subjectID), models.ExamTypeTrial)

	require.Len(t, result, 6)
	assert.Len(t, idSet(result), 6, "no duplicate ids")
	for i, q := range result {
		if i < 4 {
			assert.Equal(t, models.QuestionTypeMCQ, q.Type, "index %d", i)
		} else {
			assert.Equal(t, models.QuestionTypeTrueFalse, q.Type, "index %d", i)
		}
	}
}

func TestAssembleTrialTruncatesToCap(t *testing.T) {
	subjectID := uuid.New()
	bank := makeBank(subjectID, 50, 30)
	rng := rand.New(rand.NewSource(2))

	result := Assemble(rng, bank, models.DefaultExamSettings(subjectID), models.ExamTypeTrial)

	require.Len(t, result, TrialQuestionCount)
	assert.Len(t, idSet(result), TrialQuestionCount)

	bankIDs := idSet(bank)
	lastMCQ := -1
	firstTF := len(result)
	for i, q := range result {
		assert.True(t, bankIDs[q.ID], "result must be a subset of the bank")
		if q.Type == models.QuestionTypeMCQ && i > lastMCQ {
			lastMCQ = i
		}
		if q.Type == models.QuestionTypeTrueFalse && i < firstTF {
			firstTF = i
		}
	}
	assert.Less(t, lastMCQ, firstTF, "all MCQ must precede all true/false")
}

func TestAssembleFinalUsesFullPool(t *testing.T) {
	subjectID := uuid.New()
	bank := makeBank(subjectID, 48, 12)
	rng := rand.New(rand.NewSource(3))

	result := Assemble(rng, bank, models.DefaultExamSettings(subjectID), models.ExamTypeFinal)

	require.Len(t, result, len(bank), "final mode must not truncate")
	assert.Equal(t, idSet(bank), idSet(result))
	for i, q := range result {
		if i < 48 {
			assert.Equal(t, models.QuestionTypeMCQ, q.Type)
		} else {
			assert.Equal(t, models.QuestionTypeTrueFalse, q.Type)
		}
	}
}

func TestAssembleSectionFilter(t *testing.T) {
	subjectID := uuid.New()
	bank := makeBank(subjectID, 6, 4)
	for i := range bank[:5] {
		bank[i].Section = "criminology"
	}
	settings := models.DefaultExamSettings(subjectID)
	settings.Section = "criminology"
	rng := rand.New(rand.NewSource(4))

	result := Assemble(rng, bank, settings, models.ExamTypeFinal)

	require.Len(t, result, 5)
	for _, q := range result {
		assert.Equal(t, "criminology", q.Section)
	}

	t.Run("SectionAllKeepsEverything", func(t *testing.T) {
		settings.Section = models.SectionAll
		result := Assemble(rng, bank, settings, models.ExamTypeFinal)
		assert.Len(t, result, len(bank))
	})
}

func TestAssembleEmptyPool(t *testing.T) {
	subjectID := uuid.New()
	rng := rand.New(rand.NewSource(5))

	result := Assemble(rng, nil, models.DefaultExamSettings(subjectID), models.ExamTypeTrial)
	assert.Empty(t, result)
}

func TestAssembleShuffleVariesOrder(t *testing.T) {
	// Not a uniformity proof, just a guard against a shuffle that leaves
	// the pool untouched.
	subjectID := uuid.New()
	bank := makeBank(subjectID, 30, 0)

	first := Assemble(rand.New(rand.NewSource(6)), bank, models.DefaultExamSettings(subjectID), models.ExamTypeFinal)
	second := Assemble(rand.New(rand.NewSource(7)), bank, models.DefaultExamSettings(subjectID), models.ExamTypeFinal)

	same := true
	for i := range first {
		if first[i].ID != second[i].ID {
			same = false
			break
		}
	}
	assert.False(t, same, "two differently seeded assemblies should not agree on order")
}
