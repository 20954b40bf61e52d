package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/lawqena/exam_portal/database"
	"github.com/lawqena/exam_portal/exam"
	"github.com/lawqena/exam_portal/models"
	"github.com/lawqena/exam_portal/notifications"
	"github.com/lawqena/exam_portal/services"
	"github.com/lawqena/exam_portal/websocket"
)

func currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	return uuid.Parse(claims["user_id"].(string))
}

// questionView is a Question stripped of its answer key, for delivery to a
// student mid-exam.
type questionView struct {
	ID      uuid.UUID `json:"id"`
	Type    string    `json:"type"`
	Text    string    `json:"text"`
	Options []string  `json:"options"`
}

func toQuestionView(q models.Question) questionView {
	var options []string
	if q.Options != "" {
		if err := json.Unmarshal([]byte(q.Options), &options); err != nil {
			log.Printf("🔥 Malformed options for question %s: %v", q.ID, err)
		}
	}
	return questionView{ID: q.ID, Type: q.Type, Text: q.Text, Options: options}
}

// GetExamDashboard lists every subject with its open state and the caller's
// remaining quota per exam mode, so the client can render why a mode is
// unavailable rather than just disabling the button.
func GetExamDashboard(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var subjects []models.Subject
	database.DB.Order("name ASC").Find(&subjects)

	type subjectDashboard struct {
		Subject       models.Subject       `json:"subject"`
		IsOpen        bool                 `json:"is_open"`
		QuestionCount int                  `json:"question_count"`
		Duration      int                  `json:"duration_minutes"`
		TrialQuota    services.QuotaStatus `json:"trial_quota"`
		FinalQuota    services.QuotaStatus `json:"final_quota"`
	}

	out := make([]subjectDashboard, 0, len(subjects))
	for _, subject := range subjects {
		settings := settingsFor(subject.ID)

		trialQuota, err := services.CheckQuota(userID, subject.ID, models.ExamTypeTrial)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load attempts"})
		}
		finalQuota, err := services.CheckQuota(userID, subject.ID, models.ExamTypeFinal)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load attempts"})
		}

		out = append(out, subjectDashboard{
			Subject:       subject,
			IsOpen:        settings.IsOpen,
			QuestionCount: settings.QuestionCount,
			Duration:      settings.DurationMinutes,
			TrialQuota:    trialQuota,
			FinalQuota:    finalQuota,
		})
	}
	return c.JSON(out)
}

type StartExamRequest struct {
	ExamType string `json:"exam_type" validate:"required,oneof=trial final"`
}

// finishExpiredSession is the countdown-expiry callback. It runs on the
// session's ticker goroutine, so all it does is persist and notify.
func finishExpiredSession(result exam.Result) {
	attempt, err := services.RecordAttempt(result)
	if err != nil {
		log.Printf("🔥 Failed to record auto-submitted attempt for user %s: %v", result.UserID, err)
		return
	}
	log.Printf("✅ Auto-submitted exam for user %s: %d/%d", result.UserID, attempt.Score, attempt.TotalQuestions)
	notifyAttemptFinished("session_expired", attempt)
}

// notifyAttemptFinished pushes a monitor event and, for finals, emails the
// student their result.
func notifyAttemptFinished(eventType string, attempt models.ExamAttempt) {
	var user models.User
	if err := database.DB.First(&user, "id = ?", attempt.UserID).Error; err != nil {
		return
	}

	websocket.Publish(websocket.MonitorEvent{
		Type:          eventType,
		UserID:        attempt.UserID,
		StudentName:   user.FullName,
		StudentNumber: user.Username,
		SubjectID:     attempt.SubjectID,
		ExamType:      attempt.ExamType,
		Score:         &attempt.Score,
		Total:         &attempt.TotalQuestions,
	})

	if attempt.ExamType == models.ExamTypeFinal {
		var subject models.Subject
		if err := database.DB.First(&subject, "id = ?", attempt.SubjectID).Error; err != nil {
			return
		}
		grade := exam.GradeFor(attempt.Score, attempt.TotalQuestions)
		go notifications.SendResultEmail(user.FullName, user.Email, subject.Name, attempt.Score, attempt.TotalQuestions, grade.Arabic())
	}
}

// StartExam assembles a question list for the subject and mode, checks the
// quota and open gates, and activates a countdown session. Any prior live
// session for the student is torn down without a record.
func StartExam(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	subjectID, err := uuid.Parse(c.Params("subjectId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid subject id"})
	}

	var req StartExamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var subject models.Subject
	if err := database.DB.First(&subject, "id = ?", subjectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
	}

	settings := settingsFor(subjectID)

	// Finals are gated by the admin's open flag; trials are practice and
	// stay available while the exam is closed.
	if req.ExamType == models.ExamTypeFinal && !settings.IsOpen {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This exam is not open yet"})
	}

	quota, err := services.CheckQuota(userID, subjectID, req.ExamType)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check attempt quota"})
	}
	if !quota.Allowed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":         "Attempt limit reached for this exam",
			"exam_type":     quota.ExamType,
			"attempts_used": quota.AttemptsUsed,
			"max_attempts":  quota.MaxAttempts,
		})
	}

	var bank []models.Question
	if err := database.DB.Where("subject_id = ?", subjectID).Find(&bank).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load question bank"})
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	questions := exam.Assemble(rng, bank, settings, req.ExamType)

	duration := time.Duration(settings.DurationMinutes) * time.Minute
	session, err := exam.Sessions.StartSession(userID, subjectID, req.ExamType, questions, duration, finishExpiredSession)
	if err != nil {
		if errors.Is(err, exam.ErrNoQuestions) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "No questions available for this exam"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to start exam"})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err == nil {
		websocket.Publish(websocket.MonitorEvent{
			Type:          "exam_started",
			UserID:        userID,
			StudentName:   user.FullName,
			StudentNumber: user.Username,
			SubjectID:     subjectID,
			ExamType:      req.ExamType,
		})
	}

	snapshot := session.Snapshot()
	views := make([]questionView, len(snapshot.Questions))
	for i, q := range snapshot.Questions {
		views[i] = toQuestionView(q)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"subject_id":     subjectID,
		"exam_type":      req.ExamType,
		"state":          snapshot.State,
		"time_left":      snapshot.TimeLeft,
		"current_index":  snapshot.CurrentIndex,
		"question_count": len(views),
		"questions":      views,
	})
}

// GetExamSession returns the live session snapshot for resuming the exam
// screen after a reload.
func GetExamSession(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	session, ok := exam.Sessions.Get(userID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No active exam session"})
	}

	snapshot := session.Snapshot()
	views := make([]questionView, len(snapshot.Questions))
	for i, q := range snapshot.Questions {
		views[i] = toQuestionView(q)
	}

	return c.JSON(fiber.Map{
		"subject_id":     snapshot.SubjectID,
		"exam_type":      snapshot.ExamType,
		"state":          snapshot.State,
		"time_left":      snapshot.TimeLeft,
		"current_index":  snapshot.CurrentIndex,
		"question_count": len(views),
		"questions":      views,
		"answers":        snapshot.Answers,
	})
}

type AnswerRequest struct {
	QuestionID string `json:"question_id" validate:"required,uuid4"`
	Answer     string `json:"answer" validate:"required"`
}

// AnswerQuestion records or overwrites the student's answer for one
// question. It never advances the question pointer.
func AnswerQuestion(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	session, ok := exam.Sessions.Get(userID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No active exam session"})
	}

	questionID := uuid.MustParse(req.QuestionID)
	if err := session.RecordAnswer(questionID, req.Answer); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Exam session is not active"})
	}
	return c.JSON(fiber.Map{"message": "Answer recorded"})
}

type NavigateRequest struct {
	Direction string `json:"direction" validate:"required,oneof=next prev"`
}

// NavigateExam moves the question pointer one step; moving past either end
// is a no-op.
func NavigateExam(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req NavigateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	session, ok := exam.Sessions.Get(userID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No active exam session"})
	}

	delta := 1
	if req.Direction == "prev" {
		delta = -1
	}
	if err := session.Advance(delta); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Exam session is not active"})
	}

	snapshot := session.Snapshot()
	return c.JSON(fiber.Map{"current_index": snapshot.CurrentIndex})
}

// SubmitExam completes the session from any question index and persists the
// attempt. If the countdown won the race first, the manual submit gets a
// conflict and the auto-submitted attempt stands.
func SubmitExam(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	session, ok := exam.Sessions.Get(userID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No active exam session"})
	}

	result, err := session.Submit()
	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Exam session already completed"})
	}

	attempt, err := services.RecordAttempt(result)
	if err != nil {
		log.Printf("🔥 Failed to record attempt for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save exam attempt"})
	}

	exam.Sessions.Remove(userID)
	notifyAttemptFinished("exam_submitted", attempt)

	grade := exam.GradeFor(attempt.Score, attempt.TotalQuestions)
	return c.JSON(fiber.Map{
		"attempt_id":      attempt.ID,
		"score":           attempt.Score,
		"total_questions": attempt.TotalQuestions,
		"final_score":     exam.FinalScore20(attempt.Score, attempt.TotalQuestions),
		"grade":           grade,
		"grade_label":     grade.Arabic(),
	})
}

// AbandonExam tears the session down without writing an attempt. The spent
// quota is not refunded only when the attempt was recorded; abandoning
// records nothing.
func AbandonExam(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	session, ok := exam.Sessions.Get(userID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No active exam session"})
	}

	snapshot := session.Snapshot()
	exam.Sessions.Remove(userID)

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err == nil {
		websocket.Publish(websocket.MonitorEvent{
			Type:          "exam_abandoned",
			UserID:        userID,
			StudentName:   user.FullName,
			StudentNumber: user.Username,
			SubjectID:     snapshot.SubjectID,
			ExamType:      snapshot.ExamType,
		})
	}

	return c.JSON(fiber.Map{"message": "Exam session closed"})
}

// ListMyAttempts returns the caller's attempt history, newest first.
func ListMyAttempts(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var attempts []models.ExamAttempt
	if err := database.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&attempts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load attempts"})
	}

	type attemptView struct {
		models.ExamAttempt
		FinalScore float64 `json:"final_score"`
		Grade      string  `json:"grade"`
		GradeLabel string  `json:"grade_label"`
	}

	out := make([]attemptView, len(attempts))
	for i, attempt := range attempts {
		grade := exam.GradeFor(attempt.Score, attempt.TotalQuestions)
		out[i] = attemptView{
			ExamAttempt: attempt,
			FinalScore:  exam.FinalScore20(attempt.Score, attempt.TotalQuestions),
			Grade:       string(grade),
			GradeLabel:  grade.Arabic(),
		}
	}
	return c.JSON(out)
}

// ReviewAttempt reconstructs the attempt's question list in presentation
// order with the student's answers and frozen correctness. Question text and
// explanation resolve against the current bank; deleted questions drop out.
func ReviewAttempt(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	attemptID, err := uuid.Parse(c.Params("attemptId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid attempt id"})
	}

	var attempt models.ExamAttempt
	if err := database.DB.First(&attempt, "id = ? AND user_id = ?", attemptID, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Attempt not found"})
	}

	questions, err := services.ReconstructQuestions(attempt)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reconstruct attempt"})
	}
	answers, err := services.AttemptAnswers(attempt.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load answers"})
	}

	type reviewItem struct {
		Question       questionView `json:"question"`
		CorrectAnswer  string       `json:"correct_answer"`
		Explanation    string       `json:"explanation"`
		SelectedAnswer *string      `json:"selected_answer"`
		IsCorrect      *bool        `json:"is_correct"`
	}

	items := make([]reviewItem, len(questions))
	for i, q := range questions {
		item := reviewItem{
			Question:      toQuestionView(q),
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
		if answer, ok := answers[q.ID]; ok {
			selected := answer.SelectedAnswer
			correct := answer.IsCorrect
			item.SelectedAnswer = &selected
			item.IsCorrect = &correct
		}
		items[i] = item
	}

	grade := exam.GradeFor(attempt.Score, attempt.TotalQuestions)
	return c.JSON(fiber.Map{
		"attempt":     attempt,
		"final_score": exam.FinalScore20(attempt.Score, attempt.TotalQuestions),
		"grade":       grade,
		"grade_label": grade.Arabic(),
		"items":       items,
	})
}

// GenerateAttemptCertificate issues (or re-returns) the PDF certificate for
// one of the caller's attempts.
func GenerateAttemptCertificate(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	attemptID, err := uuid.Parse(c.Params("attemptId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid attempt id"})
	}

	var attempt models.ExamAttempt
	if err := database.DB.First(&attempt, "id = ? AND user_id = ?", attemptID, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Attempt not found"})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load user"})
	}
	var subject models.Subject
	if err := database.DB.First(&subject, "id = ?", attempt.SubjectID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Subject not found"})
	}

	certificate, err := services.GenerateResultCertificate(attempt, user, subject)
	if err != nil {
		log.Printf("🔥 Failed to generate certificate for attempt %s: %v", attempt.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate certificate"})
	}

	return c.JSON(certificate)
}
