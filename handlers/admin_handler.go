package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/lawqena/exam_portal/database"
	"github.com/lawqena/exam_portal/exam"
	"github.com/lawqena/exam_portal/models"
	ws "github.com/lawqena/exam_portal/websocket"
)

// GetSubjectResults lists every attempt for a subject sorted by raw score
// descending, with the /20 presentation score and grade attached.
func GetSubjectResults(c *fiber.Ctx) error {
	subjectID, err := uuid.Parse(c.Params("subjectId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subject id"})
	}

	var subject models.Subject
	if err := database.DB.First(&subject, "id = ?", subjectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
	}

	examType := c.Query("exam_type", models.ExamTypeFinal)

	var attempts []models.ExamAttempt
	if err := database.DB.
		Preload("User").
		Where("subject_id = ? AND exam_type = ?", subjectID, examType).
		Order("score DESC, end_time ASC").
		Find(&attempts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load results"})
	}

	type resultRow struct {
		AttemptID      uuid.UUID `json:"attempt_id"`
		StudentName    string    `json:"student_name"`
		StudentNumber  string    `json:"student_number"`
		Score          int       `json:"score"`
		TotalQuestions int       `json:"total_questions"`
		FinalScore     float64   `json:"final_score"`
		Grade          string    `json:"grade"`
		GradeLabel     string    `json:"grade_label"`
		EndTime        string    `json:"end_time"`
	}

	rows := make([]resultRow, len(attempts))
	for i, attempt := range attempts {
		grade := exam.GradeFor(attempt.Score, attempt.TotalQuestions)
		rows[i] = resultRow{
			AttemptID:      attempt.ID,
			StudentName:    attempt.User.FullName,
			StudentNumber:  attempt.User.Username,
			Score:          attempt.Score,
			TotalQuestions: attempt.TotalQuestions,
			FinalScore:     exam.FinalScore20(attempt.Score, attempt.TotalQuestions),
			Grade:          string(grade),
			GradeLabel:     grade.Arabic(),
			EndTime:        attempt.EndTime.Format("2006-01-02 15:04"),
		}
	}

	return c.JSON(fiber.Map{
		"subject":   subject,
		"exam_type": examType,
		"results":   rows,
	})
}

func ListStudents(c *fiber.Ctx) error {
	var students []models.User
	query := database.DB.Where("role = ?", models.RoleStudent)
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("full_name ILIKE ? OR email ILIKE ? OR username LIKE ?", like, like, like)
	}
	if err := query.Order("username ASC").Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load students"})
	}
	return c.JSON(students)
}

// AdminResetStudentPassword sets a new password and clears the login
// lockout in one step.
func AdminResetStudentPassword(c *fiber.Ctx) error {
	type Request struct {
		NewPassword string `json:"new_password" validate:"required,min=6"`
	}

	var student models.User
	if err := database.DB.First(&student, "id = ? AND role = ?", c.Params("userId"), models.RoleStudent).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	student.Password = string(hashedPassword)
	student.FailedLoginAttempts = 0
	student.IsLocked = false
	if err := database.DB.Save(&student).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reset password"})
	}
	return c.JSON(fiber.Map{"message": "Password reset successfully"})
}

// UnlockStudent clears the failed-login lockout without touching the
// password.
func UnlockStudent(c *fiber.Ctx) error {
	var student models.User
	if err := database.DB.First(&student, "id = ? AND role = ?", c.Params("userId"), models.RoleStudent).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	student.FailedLoginAttempts = 0
	student.IsLocked = false
	if err := database.DB.Save(&student).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to unlock account"})
	}
	return c.JSON(fiber.Map{"message": "Account unlocked"})
}

// DeleteStudent removes a student together with their attempt history and
// certificates. Any live session is torn down first.
func DeleteStudent(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var student models.User
	if err := database.DB.First(&student, "id = ? AND role = ?", userID, models.RoleStudent).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	exam.Sessions.Remove(userID)

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var attemptIDs []uuid.UUID
		if err := tx.Model(&models.ExamAttempt{}).
			Where("user_id = ?", userID).
			Pluck("id", &attemptIDs).Error; err != nil {
			return err
		}
		if len(attemptIDs) > 0 {
			if err := tx.Delete(&models.Certificate{}, "attempt_id IN ?", attemptIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.AttemptAnswer{}, "attempt_id IN ?", attemptIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.AttemptQuestion{}, "attempt_id IN ?", attemptIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.ExamAttempt{}, "id IN ?", attemptIDs).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&student).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete student"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// MonitorUpgrade gates the websocket upgrade to admins before the protocol
// switch happens.
func MonitorUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	adminID, err := uuid.Parse(claims["user_id"].(string))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	c.Locals("admin_id", adminID)
	return c.Next()
}

// MonitorSocket streams live exam events to a connected admin dashboard.
var MonitorSocket = websocket.New(func(conn *websocket.Conn) {
	adminID := conn.Locals("admin_id").(uuid.UUID)

	client := &ws.Client{AdminID: adminID, Conn: conn}
	ws.Register <- client
	defer func() {
		ws.Unregister <- client
		conn.Close()
	}()

	// The monitor stream is one-way; reads only detect disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
})
