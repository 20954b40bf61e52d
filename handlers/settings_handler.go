package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lawqena/exam_portal/database"
	"github.com/lawqena/exam_portal/models"
)

type SettingsRequest struct {
	IsOpen          *bool   `json:"is_open"`
	QuestionCount   *int    `json:"question_count" validate:"omitempty,min=1,max=500"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,min=1,max=480"`
	Section         *string `json:"section"`
}

// settingsFor loads a subject's settings row, falling back to defaults
// when none exists yet.
func settingsFor(subjectID uuid.UUID) models.ExamSettings {
	var settings models.ExamSettings
	err := database.DB.Where("subject_id = ?", subjectID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultExamSettings(subjectID)
	}
	return settings
}

func ListExamSettings(c *fiber.Ctx) error {
	var subjects []models.Subject
	database.DB.Order("name ASC").Find(&subjects)

	type subjectSettings struct {
		Subject  models.Subject      `json:"subject"`
		Settings models.ExamSettings `json:"settings"`
	}

	out := make([]subjectSettings, 0, len(subjects))
	for _, subject := range subjects {
		out = append(out, subjectSettings{Subject: subject, Settings: settingsFor(subject.ID)})
	}
	return c.JSON(out)
}

func GetExamSettings(c *fiber.Ctx) error {
	subjectID, err := uuid.Parse(c.Params("subjectId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subject id"})
	}

	var subject models.Subject
	if err := database.DB.First(&subject, "id = ?", subjectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
	}

	return c.JSON(settingsFor(subjectID))
}

// UpdateExamSettings patches the subject's exam configuration. Omitted
// fields keep their current value; a missing row is created first.
func UpdateExamSettings(c *fiber.Ctx) error {
	subjectID, err := uuid.Parse(c.Params("subjectId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subject id"})
	}

	var subject models.Subject
	if err := database.DB.First(&subject, "id = ?", subjectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
	}

	var req SettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var settings models.ExamSettings
	err = database.DB.Where("subject_id = ?", subjectID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.DefaultExamSettings(subjectID)
		if err := database.DB.Create(&settings).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create settings"})
		}
	} else if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load settings"})
	}

	if req.IsOpen != nil {
		settings.IsOpen = *req.IsOpen
	}
	if req.QuestionCount != nil {
		settings.QuestionCount = *req.QuestionCount
	}
	if req.DurationMinutes != nil {
		settings.DurationMinutes = *req.DurationMinutes
	}
	if req.Section != nil {
		settings.Section = *req.Section
	}

	if err := database.DB.Save(&settings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update settings"})
	}
	return c.JSON(settings)
}

// ResetStudentAttempts wipes one student's attempt history for a subject,
// restoring their full trial and final quotas. Certificates issued from
// those attempts are removed with them.
func ResetStudentAttempts(c *fiber.Ctx) error {
	type Request struct {
		UserID    string `json:"user_id" validate:"required,uuid4"`
		SubjectID string `json:"subject_id" validate:"required,uuid4"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	userID := uuid.MustParse(req.UserID)
	subjectID := uuid.MustParse(req.SubjectID)

	var attemptIDs []uuid.UUID
	if err := database.DB.Model(&models.ExamAttempt{}).
		Where("user_id = ? AND subject_id = ?", userID, subjectID).
		Pluck("id", &attemptIDs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load attempts"})
	}

	if len(attemptIDs) == 0 {
		return c.JSON(fiber.Map{"message": "No attempts to reset", "removed": 0})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Certificate{}, "attempt_id IN ?", attemptIDs).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.AttemptAnswer{}, "attempt_id IN ?", attemptIDs).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.AttemptQuestion{}, "attempt_id IN ?", attemptIDs).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ExamAttempt{}, "id IN ?", attemptIDs).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reset attempts"})
	}

	return c.JSON(fiber.Map{"message": "Attempts reset successfully", "removed": len(attemptIDs)})
}
