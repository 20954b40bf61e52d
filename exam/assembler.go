package exam

import (
	"math/rand"

	"github.com/lawqena/exam_portal/models"
)

// TrialQuestionCount caps how many questions a trial-mode attempt samples
// from the filtered pool. Final mode always uses the full pool.
const TrialQuestionCount = 40

// Assemble builds the ordered question list for one attempt. The caller
// passes the subject's bank; Assemble applies the settings' section filter,
// shuffles with the provided source and orders multiple-choice questions
// before true/false ones. The returned order is canonical: it is shown to
// the student and persisted verbatim for review.
//
// If the filtered pool is smaller than the requested count, all available
// questions are returned.
func Assemble(rng *rand.Rand, bank []models.Question, settings models.ExamSettings, examType string) []models.Question {
	pool := filterBySection(bank, settings.Section)

	if examType == models.ExamTypeTrial {
		return assembleTrial(rng, pool)
	}
	return assembleFinal(rng, pool)
}

// assembleTrial shuffles the combined pool, samples up to TrialQuestionCount
// and then groups MCQ before true/false, keeping the post-shuffle order
// within each group.
func assembleTrial(rng *rand.Rand, pool []models.Question) []models.Question {
	sample := shuffled(rng, pool)
	if len(sample) > TrialQuestionCount {
		sample = sample[:TrialQuestionCount]
	}

	result := make([]models.Question, 0, len(sample))
	for _, q := range sample {
		if q.Type == models.QuestionTypeMCQ {
			result = append(result, q)
		}
	}
	for _, q := range sample {
		if q.Type != models.QuestionTypeMCQ {
			result = append(result, q)
		}
	}
	return result
}

// assembleFinal uses the whole filtered pool: each type partition is
// shuffled independently, then MCQ precede true/false. No truncation.
func assembleFinal(rng *rand.Rand, pool []models.Question) []models.Question {
	var mcq, trueFalse []models.Question
	for _, q := range pool {
		if q.Type == models.QuestionTypeMCQ {
			mcq = append(mcq, q)
		} else {
			trueFalse = append(trueFalse, q)
		}
	}

	result := make([]models.Question, 0, len(pool))
	result = append(result, shuffled(rng, mcq)...)
	result = append(result, shuffled(rng, trueFalse)...)
	return result
}

func filterBySection(bank []models.Question, section string) []models.Question {
	if section == "" || section == models.SectionAll {
		return bank
	}
	filtered := make([]models.Question, 0, len(bank))
	for _, q := range bank {
		if q.Section == section {
			filtered = append(filtered, q)
		}
	}
	return filtered
}

// shuffled returns a Fisher-Yates shuffled copy, leaving the input intact.
func shuffled(rng *rand.Rand, questions []models.Question) []models.Question {
	out := make([]models.Question, len(questions))
	copy(out, questions)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
