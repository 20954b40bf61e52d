package handlers

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lawqena/exam_portal/database"
	"github.com/lawqena/exam_portal/models"
)

type QuestionRequest struct {
	SubjectID     string   `json:"subject_id" validate:"required,uuid4"`
	Type          string   `json:"type" validate:"required,oneof=mcq true_false"`
	Text          string   `json:"text" validate:"required"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	Explanation   string   `json:"explanation"`
	Section       string   `json:"section"`
}

// validateAnswerKey enforces the bank invariants: MCQ questions carry 2+
// options and a correct answer that indexes into them; true/false carry
// exactly "true" or "false".
func validateAnswerKey(questionType string, options []string, correctAnswer string) error {
	switch questionType {
	case models.QuestionTypeMCQ:
		if len(options) < 2 {
			return fmt.Errorf("mcq questions need at least 2 options")
		}
		index, err := strconv.Atoi(correctAnswer)
		if err != nil || index < 0 || index >= len(options) {
			return fmt.Errorf("correct_answer must be an option index between 0 and %d", len(options)-1)
		}
	case models.QuestionTypeTrueFalse:
		if correctAnswer != "true" && correctAnswer != "false" {
			return fmt.Errorf("correct_answer must be \"true\" or \"false\"")
		}
	}
	return nil
}

func questionFromRequest(req QuestionRequest) (models.Question, error) {
	if err := validateAnswerKey(req.Type, req.Options, req.CorrectAnswer); err != nil {
		return models.Question{}, err
	}

	subjectID, err := uuid.Parse(req.SubjectID)
	if err != nil {
		return models.Question{}, fmt.Errorf("invalid subject_id")
	}

	options := ""
	if req.Type == models.QuestionTypeMCQ {
		encoded, err := json.Marshal(req.Options)
		if err != nil {
			return models.Question{}, err
		}
		options = string(encoded)
	}

	return models.Question{
		SubjectID:     subjectID,
		Type:          req.Type,
		Text:          req.Text,
		Options:       options,
		CorrectAnswer: req.CorrectAnswer,
		Explanation:   req.Explanation,
		Section:       req.Section,
	}, nil
}

func CreateQuestion(c *fiber.Ctx) error {
	var req QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	question, err := questionFromRequest(req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := database.DB.Create(&question).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create question"})
	}

	return c.Status(fiber.StatusCreated).JSON(question)
}

func ListQuestions(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Question{})
	if subjectID := c.Query("subject_id"); subjectID != "" {
		query = query.Where("subject_id = ?", subjectID)
	}
	if section := c.Query("section"); section != "" && section != models.SectionAll {
		query = query.Where("section = ?", section)
	}

	var questions []models.Question
	query.Find(&questions)
	return c.JSON(questions)
}

func GetQuestion(c *fiber.Ctx) error {
	questionID := c.Params("questionId")
	var question models.Question
	if err := database.DB.First(&question, "id = ?", questionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	return c.JSON(question)
}

// UpdateQuestion edits a bank entry in place. Attempts already taken keep
// their frozen answer rows, so grading history is unaffected; only the
// review view resolves the new text.
func UpdateQuestion(c *fiber.Ctx) error {
	questionID := c.Params("questionId")
	var question models.Question
	if err := database.DB.First(&question, "id = ?", questionID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}

	var req QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	updated, err := questionFromRequest(req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	question.SubjectID = updated.SubjectID
	question.Type = updated.Type
	question.Text = updated.Text
	question.Options = updated.Options
	question.CorrectAnswer = updated.CorrectAnswer
	question.Explanation = updated.Explanation
	question.Section = updated.Section
	database.DB.Save(&question)

	return c.JSON(question)
}

func DeleteQuestion(c *fiber.Ctx) error {
	questionID := c.Params("questionId")
	result := database.DB.Delete(&models.Question{}, "id = ?", questionID)

	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete question"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type BulkQuestionsRequest struct {
	SubjectID string `json:"subject_id" validate:"required,uuid4"`
	Questions []struct {
		Type          string   `json:"type" validate:"required,oneof=mcq true_false"`
		Text          string   `json:"text" validate:"required"`
		Options       []string `json:"options"`
		CorrectAnswer string   `json:"correct_answer" validate:"required"`
		Explanation   string   `json:"explanation"`
		Section       string   `json:"section"`
	} `json:"questions" validate:"required,min=1,dive"`
}

// BulkCreateQuestions imports a JSON batch into one subject's bank; the
// whole batch is validated first and written in a single transaction.
func BulkCreateQuestions(c *fiber.Ctx) error {
	var req BulkQuestionsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	questions := make([]models.Question, 0, len(req.Questions))
	for i, item := range req.Questions {
		question, err := questionFromRequest(QuestionRequest{
			SubjectID:     req.SubjectID,
			Type:          item.Type,
			Text:          item.Text,
			Options:       item.Options,
			CorrectAnswer: item.CorrectAnswer,
			Explanation:   item.Explanation,
			Section:       item.Section,
		})
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("question %d: %v", i+1, err)})
		}
		questions = append(questions, question)
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&questions).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to import questions"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Questions imported successfully",
		"imported": len(questions),
	})
}
