package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/lawqena/exam_portal/database"
	"github.com/lawqena/exam_portal/models"
)

type SubjectRequest struct {
	Name string `json:"name" validate:"required,min=2"`
}

func CreateSubject(c *fiber.Ctx) error {
	var req SubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	subject := models.Subject{Name: req.Name}
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&subject).Error; err != nil {
			return err
		}
		// A new subject starts with closed exams and default settings.
		settings := models.DefaultExamSettings(subject.ID)
		return tx.Create(&settings).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Subject already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create subject"})
	}

	return c.Status(fiber.StatusCreated).JSON(subject)
}

func ListSubjects(c *fiber.Ctx) error {
	var subjects []models.Subject
	database.DB.Order("name ASC").Find(&subjects)
	return c.JSON(subjects)
}

func GetSubject(c *fiber.Ctx) error {
	subjectID := c.Params("subjectId")
	var subject models.Subject
	if err := database.DB.First(&subject, "id = ?", subjectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
	}
	return c.JSON(subject)
}

func UpdateSubject(c *fiber.Ctx) error {
	subjectID := c.Params("subjectId")
	var subject models.Subject
	if err := database.DB.First(&subject, "id = ?", subjectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
	}

	var req SubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	subject.Name = req.Name
	if err := database.DB.Save(&subject).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Subject already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update subject"})
	}
	return c.JSON(subject)
}

// DeleteSubject removes a subject with its question bank and settings.
// Attempt records stay: students keep their history even for retired
// subjects, review just drops the deleted questions.
func DeleteSubject(c *fiber.Ctx) error {
	subjectID := c.Params("subjectId")

	var subject models.Subject
	if err := database.DB.First(&subject, "id = ?", subjectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Question{}, "subject_id = ?", subject.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ExamSettings{}, "subject_id = ?", subject.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&subject).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete subject"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
